package assignment

import (
	"context"
	"sort"
	"testing"

	"removals_crm_backend/internal/events"
	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads      map[uuid.UUID]repository.Lead
	staff      []repository.Staff
	newCounts  map[uuid.UUID]int
	activities []repository.CreateActivityParams
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:     make(map[uuid.UUID]repository.Lead),
		newCounts: make(map[uuid.UUID]int),
	}
}

func (f *fakeStore) addStaff(name string, active bool, newLeads int) repository.Staff {
	s := repository.Staff{ID: uuid.New(), Name: name, IsActive: active}
	f.staff = append(f.staff, s)
	f.newCounts[s.ID] = newLeads
	return s
}

func (f *fakeStore) addLead(lead repository.Lead) repository.Lead {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
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
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.AssignedTo = ownerID
	f.leads[id] = lead
	if ownerID != nil && lead.Status == domain.StatusNew {
		f.newCounts[*ownerID]++
	}
	return lead, nil
}

func (f *fakeStore) CreateActivity(_ context.Context, params repository.CreateActivityParams) (repository.Activity, error) {
	f.activities = append(f.activities, params)
	return repository.Activity{ID: uuid.New(), LeadID: params.LeadID}, nil
}

func (f *fakeStore) ListActivities(context.Context, uuid.UUID) ([]repository.Activity, error) {
	return nil, nil
}

func (f *fakeStore) CountByOwnerAndStatus(_ context.Context, ownerID uuid.UUID, _ domain.Status) (int, error) {
	return f.newCounts[ownerID], nil
}

func (f *fakeStore) CountByOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	return f.newCounts[ownerID], nil
}

func (f *fakeStore) FindActiveStaff(context.Context) ([]repository.Staff, error) {
	var out []repository.Staff
	for _, s := range f.staff {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetStaff(_ context.Context, id uuid.UUID) (repository.Staff, error) {
	for _, s := range f.staff {
		if s.ID == id {
			return s, nil
		}
	}
	return repository.Staff{}, repository.ErrNotFound
}

func newTestEngine(store *fakeStore) (*Engine, *RuleStore) {
	rules := NewRuleStore()
	return NewEngine(store, rules, &fakeBus{}, logger.New("development")), rules
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func newLead(source domain.Source, postcode string, bedrooms *int) repository.Lead {
	return repository.Lead{
		ID:           uuid.New(),
		Source:       source,
		Status:       domain.StatusNew,
		FromPostcode: postcode,
		Bedrooms:     bedrooms,
	}
}

func intPtr(n int) *int { return &n }

func TestAssignLead_AlreadyAssignedIsNoOp(t *testing.T) {
	store := newFakeStore()
	owner := store.addStaff("Alice", true, 0)
	lead := store.addLead(repository.Lead{AssignedTo: &owner.ID})

	engine, _ := newTestEngine(store)

	result, err := engine.AssignLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != "already_assigned" {
		t.Fatalf("expected already_assigned, got %q", result.Reason)
	}
	if len(store.activities) != 0 {
		t.Fatal("no activity should be recorded for a no-op")
	}
}

func TestAssignLead_FirstMatchingRuleWins(t *testing.T) {
	store := newFakeStore()
	alice := store.addStaff("Alice", true, 0)
	bob := store.addStaff("Bob", true, 0)
	lead := store.addLead(newLead(domain.SourceCompareMyMove, "NN1 1AA", intPtr(3)))

	engine, rules := newTestEngine(store)
	rules.Create(Rule{Name: "northampton", Priority: 1, PostcodePrefixes: []string{"nn"}, TargetStaffID: alice.ID, Enabled: true})
	rules.Create(Rule{Name: "catch-all", Priority: 2, TargetStaffID: bob.ID, Enabled: true})

	result, err := engine.AssignLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedTo == nil || *result.AssignedTo != alice.ID {
		t.Fatalf("expected higher-priority rule target Alice, got %v", result.AssignedTo)
	}
	if result.Reason != "rule" || result.RuleName != "northampton" {
		t.Fatalf("expected rule reason, got %+v", result)
	}
}

func TestAssignLead_DisabledRuleSkipped(t *testing.T) {
	store := newFakeStore()
	alice := store.addStaff("Alice", true, 5)
	bob := store.addStaff("Bob", true, 0)
	lead := store.addLead(newLead(domain.SourceWebsite, "NN1 1AA", nil))

	engine, rules := newTestEngine(store)
	rules.Create(Rule{Name: "disabled", Priority: 1, TargetStaffID: alice.ID, Enabled: false})

	result, err := engine.AssignLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != "round_robin" {
		t.Fatalf("expected round robin fallback, got %q", result.Reason)
	}
	if *result.AssignedTo != bob.ID {
		t.Fatal("expected least-loaded staff member")
	}
}

func TestAssignLead_InactiveTargetSkipsRule(t *testing.T) {
	store := newFakeStore()
	gone := store.addStaff("Gone", false, 0)
	bob := store.addStaff("Bob", true, 0)
	lead := store.addLead(newLead(domain.SourceWebsite, "", nil))

	engine, rules := newTestEngine(store)
	rules.Create(Rule{Name: "stale", Priority: 1, TargetStaffID: gone.ID, Enabled: true})

	result, err := engine.AssignLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != "round_robin" || *result.AssignedTo != bob.ID {
		t.Fatalf("expected fallback past the misconfigured rule, got %+v", result)
	}
}

func TestAssignLead_UnknownBedroomsNeverSatisfyBounds(t *testing.T) {
	store := newFakeStore()
	alice := store.addStaff("Alice", true, 3)
	bob := store.addStaff("Bob", true, 7)
	lead := store.addLead(newLead(domain.SourceCompareMyMove, "", nil))

	engine, rules := newTestEngine(store)
	rules.Create(Rule{Name: "big-moves", Priority: 1, MinBedrooms: intPtr(4), TargetStaffID: bob.ID, Enabled: true})

	result, err := engine.AssignLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != "round_robin" || *result.AssignedTo != alice.ID {
		t.Fatalf("expected bedroom-bounded rule not to match unknown bedrooms, got %+v", result)
	}
}

func TestAssignLead_RoundRobinPrefersLowestNewCount(t *testing.T) {
	store := newFakeStore()
	store.addStaff("Alice", true, 4)
	carol := store.addStaff("Carol", true, 1)
	store.addStaff("Bob", true, 2)
	lead := store.addLead(newLead(domain.SourceWebsite, "", nil))

	engine, _ := newTestEngine(store)

	result, err := engine.AssignLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *result.AssignedTo != carol.ID {
		t.Fatalf("expected Carol with the fewest NEW leads, got %v", result.AssignedTo)
	}
}

func TestAssignLead_TieBreaksAlphabetically(t *testing.T) {
	store := newFakeStore()
	store.addStaff("Zoe", true, 2)
	bob := store.addStaff("Bob", true, 2)
	lead := store.addLead(newLead(domain.SourceWebsite, "", nil))

	engine, _ := newTestEngine(store)

	result, err := engine.AssignLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *result.AssignedTo != bob.ID {
		t.Fatal("expected alphabetical tie-break to pick Bob")
	}
}

func TestAssignLead_FairnessOverSequence(t *testing.T) {
	store := newFakeStore()
	alice := store.addStaff("Alice", true, 0)
	bob := store.addStaff("Bob", true, 0)

	engine, _ := newTestEngine(store)

	// Six accepted leads in a row: counts stay balanced within one.
	for i := 0; i < 6; i++ {
		lead := store.addLead(newLead(domain.SourceWebsite, "", nil))
		if _, err := engine.AssignLead(context.Background(), lead.ID); err != nil {
			t.Fatalf("assignment %d failed: %v", i, err)
		}
	}

	if store.newCounts[alice.ID] != 3 || store.newCounts[bob.ID] != 3 {
		t.Fatalf("expected 3/3 split, got alice=%d bob=%d", store.newCounts[alice.ID], store.newCounts[bob.ID])
	}
}

func TestAssignLead_NoActiveStaff(t *testing.T) {
	store := newFakeStore()
	store.addStaff("Gone", false, 0)
	lead := store.addLead(newLead(domain.SourceWebsite, "", nil))

	engine, _ := newTestEngine(store)

	if _, err := engine.AssignLead(context.Background(), lead.ID); err == nil {
		t.Fatal("expected error with no active staff")
	}
}

func TestManualAssign_Reassigns(t *testing.T) {
	store := newFakeStore()
	alice := store.addStaff("Alice", true, 0)
	bob := store.addStaff("Bob", true, 0)
	lead := store.addLead(repository.Lead{AssignedTo: &alice.ID, Status: domain.StatusNew})
	actingUser := uuid.New()

	engine, _ := newTestEngine(store)

	result, err := engine.ManualAssign(context.Background(), lead.ID, bob.ID, &actingUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *result.AssignedTo != bob.ID {
		t.Fatal("expected manual target to own the lead")
	}
	if result.PreviousOwner == nil || *result.PreviousOwner != alice.ID {
		t.Fatalf("expected previous owner captured, got %v", result.PreviousOwner)
	}

	if len(store.activities) != 1 {
		t.Fatalf("expected one activity, got %d", len(store.activities))
	}
	activity := store.activities[0]
	if activity.Description != "Lead reassigned to Bob" {
		t.Fatalf("expected reassignment description, got %q", activity.Description)
	}
	if activity.Metadata["previousOwner"] != alice.ID.String() {
		t.Fatalf("expected previous owner in metadata, got %v", activity.Metadata)
	}
	if activity.Metadata["assignedBy"] != actingUser.String() {
		t.Fatalf("expected acting user in metadata, got %v", activity.Metadata)
	}
}

func TestManualAssign_WithoutActingUser(t *testing.T) {
	store := newFakeStore()
	bob := store.addStaff("Bob", true, 0)
	lead := store.addLead(newLead(domain.SourceWebsite, "", nil))

	engine, _ := newTestEngine(store)

	if _, err := engine.ManualAssign(context.Background(), lead.ID, bob.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.activities[0].Metadata["assignedBy"]; ok {
		t.Fatal("expected no assignedBy metadata when the acting user is unknown")
	}
}

func TestManualAssign_InactiveStaffRejected(t *testing.T) {
	store := newFakeStore()
	gone := store.addStaff("Gone", false, 0)
	lead := store.addLead(newLead(domain.SourceWebsite, "", nil))

	engine, _ := newTestEngine(store)

	if _, err := engine.ManualAssign(context.Background(), lead.ID, gone.ID, nil); err == nil {
		t.Fatal("expected error assigning to inactive staff")
	}
}

func TestStaffWorkload_ActiveOnlyOrderedByName(t *testing.T) {
	store := newFakeStore()
	store.addStaff("Zoe", true, 2)
	store.addStaff("Alice", true, 5)
	store.addStaff("Gone", false, 9)

	engine, _ := newTestEngine(store)

	entries, err := engine.StaffWorkload(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two active staff, got %d", len(entries))
	}
	if entries[0].Name != "Alice" || entries[1].Name != "Zoe" {
		t.Fatalf("expected name order, got %q then %q", entries[0].Name, entries[1].Name)
	}
	if entries[0].NewLeads != 5 {
		t.Fatalf("expected Alice's count, got %d", entries[0].NewLeads)
	}
}
