package service

import (
	"context"
	"errors"
	"testing"

	"removals_crm_backend/internal/events"
	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/internal/leads/transport"
	"removals_crm_backend/platform/apperr"
	"removals_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads      map[uuid.UUID]repository.Lead
	activities []repository.CreateActivityParams
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeStore) addLead(status domain.Status) repository.Lead {
	lead := repository.Lead{ID: uuid.New(), FirstName: "Jane", Status: status}
	f.leads[lead.ID] = lead
	return lead
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) FindByEmail(context.Context, string) (*repository.Lead, error) { return nil, nil }
func (f *fakeStore) FindByPhone(context.Context, string) (*repository.Lead, error) { return nil, nil }

func (f *fakeStore) List(context.Context, repository.ListParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) Create(context.Context, repository.CreateLeadParams) (repository.Lead, error) {
	return repository.Lead{}, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) (repository.Lead, error) {
	lead := f.leads[id]
	lead.Status = status
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) SetOwner(_ context.Context, id uuid.UUID, ownerID *uuid.UUID) (repository.Lead, error) {
	lead := f.leads[id]
	lead.AssignedTo = ownerID
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) CreateActivity(_ context.Context, params repository.CreateActivityParams) (repository.Activity, error) {
	f.activities = append(f.activities, params)
	return repository.Activity{ID: uuid.New(), LeadID: params.LeadID}, nil
}

func (f *fakeStore) ListActivities(context.Context, uuid.UUID) ([]repository.Activity, error) {
	return nil, nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func newTestService(store *fakeStore, bus *fakeBus) *Service {
	return New(store, bus, logger.New("development"))
}

func TestAccept_MovesPendingToNew(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	lead := store.addLead(domain.StatusPending)
	acceptedBy := uuid.New()

	svc := newTestService(store, bus)

	resp, err := svc.Accept(context.Background(), lead.ID, transport.AcceptLeadRequest{AcceptedBy: acceptedBy})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != string(domain.StatusNew) {
		t.Fatalf("expected NEW status, got %q", resp.Status)
	}

	if len(store.activities) != 1 || store.activities[0].Description != "Lead accepted" {
		t.Fatalf("expected accept activity, got %+v", store.activities)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	accepted, ok := bus.published[0].(events.LeadAccepted)
	if !ok {
		t.Fatalf("expected LeadAccepted, got %T", bus.published[0])
	}
	if accepted.LeadID != lead.ID || accepted.AcceptedBy != acceptedBy {
		t.Fatalf("unexpected event payload: %+v", accepted)
	}
}

func TestAccept_RejectedLeadConflicts(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	lead := store.addLead(domain.StatusRejected)

	svc := newTestService(store, bus)

	_, err := svc.Accept(context.Background(), lead.ID, transport.AcceptLeadRequest{AcceptedBy: uuid.New()})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatal("no event should be published on a failed transition")
	}
}

func TestReject_RecordsReason(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	lead := store.addLead(domain.StatusPending)

	svc := newTestService(store, bus)

	resp, err := svc.Reject(context.Background(), lead.ID, transport.RejectLeadRequest{
		RejectedBy: uuid.New(),
		Reason:     "out of service area",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != string(domain.StatusRejected) {
		t.Fatalf("expected REJECTED status, got %q", resp.Status)
	}

	if len(store.activities) != 1 {
		t.Fatalf("expected one activity, got %d", len(store.activities))
	}
	if store.activities[0].Metadata["reason"] != "out of service area" {
		t.Fatalf("expected rejection reason in metadata, got %v", store.activities[0].Metadata)
	}
}

func TestAccept_UnknownLead(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})

	_, err := svc.Accept(context.Background(), uuid.New(), transport.AcceptLeadRequest{AcceptedBy: uuid.New()})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAccept_AlreadyNewConflicts(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StatusNew)

	svc := newTestService(store, &fakeBus{})

	_, err := svc.Accept(context.Background(), lead.ID, transport.AcceptLeadRequest{AcceptedBy: uuid.New()})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
