package ingest

import (
	"testing"
	"time"
)

const rmSubject = "Removal enquiry RM-482910: John Smith, 3 bed, 42.5 miles"

const rmBody = `Customer name: John A Smith
Email: john.smith@example.org
Phone: 07700 900123
Moving from: 10 Abbey Road, Northampton NN1 1AA
Moving to: 22 Castle Street, Leicester LE1 5WR
Packing required: Yes
Storage required: No
Move size: 4 bedroom house
Move date: 15/08/2026
Notes: Piano on the first floor
`

func TestReallyMoving_SubjectThenBodyOverrides(t *testing.T) {
	candidate, err := NewReallyMoving().Extract(rmSubject, rmBody, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if candidate.ExternalRef != "RM-482910" {
		t.Fatalf("expected reference from subject, got %q", candidate.ExternalRef)
	}
	// Body carries the fuller name and the larger move size; it wins over
	// the subject for both.
	if candidate.FirstName != "John" || candidate.LastName != "A Smith" {
		t.Fatalf("expected body name to override subject, got %q %q", candidate.FirstName, candidate.LastName)
	}
	if candidate.Bedrooms == nil || *candidate.Bedrooms != 4 {
		t.Fatalf("expected body move size to override subject bedrooms, got %v", candidate.Bedrooms)
	}
	if candidate.DistanceMiles == nil || *candidate.DistanceMiles != 42.5 {
		t.Fatalf("expected distance 42.5 from subject, got %v", candidate.DistanceMiles)
	}
	if candidate.Email != "john.smith@example.org" {
		t.Fatalf("expected email, got %q", candidate.Email)
	}
	if candidate.Phone != "07700900123" {
		t.Fatalf("expected cleaned phone, got %q", candidate.Phone)
	}
	if candidate.FromPostcode != "NN1 1AA" || candidate.ToPostcode != "LE1 5WR" {
		t.Fatalf("expected postcodes from addresses, got %q / %q", candidate.FromPostcode, candidate.ToPostcode)
	}
	if !candidate.NeedsPacking {
		t.Fatal("expected packing flag set")
	}
	if candidate.NeedsStorage {
		t.Fatal("expected storage flag unset")
	}
	if candidate.PropertyType != "4 bedroom house" {
		t.Fatalf("expected property type from move size, got %q", candidate.PropertyType)
	}
	if candidate.MoveDate == nil || !candidate.MoveDate.Equal(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected move date 15/08/2026, got %v", candidate.MoveDate)
	}
	if candidate.Notes != "Piano on the first floor" {
		t.Fatalf("expected notes line, got %q", candidate.Notes)
	}
}

func TestReallyMoving_SubjectOnly(t *testing.T) {
	candidate, err := NewReallyMoving().Extract(rmSubject, "Thank you for using reallymoving.", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if candidate.FirstName != "John" || candidate.LastName != "Smith" {
		t.Fatalf("expected name from subject, got %q %q", candidate.FirstName, candidate.LastName)
	}
	if candidate.Bedrooms == nil || *candidate.Bedrooms != 3 {
		t.Fatalf("expected 3 bedrooms from subject, got %v", candidate.Bedrooms)
	}
	if candidate.DistanceMiles == nil || *candidate.DistanceMiles != 42.5 {
		t.Fatalf("expected distance from subject, got %v", candidate.DistanceMiles)
	}
}

func TestReallyMoving_StorageKeyDoesNotHitAddressCase(t *testing.T) {
	// "storage" contains the substring "to"; it must land on the storage
	// flag, not the destination address.
	body := "Storage: yes\n"

	candidate, err := NewReallyMoving().Extract("Removal enquiry X-1: A B, 2 bed, 5 miles", body, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !candidate.NeedsStorage {
		t.Fatal("expected storage flag set")
	}
	if candidate.ToAddress != "" {
		t.Fatalf("expected no destination address, got %q", candidate.ToAddress)
	}
}

func TestReallyMoving_ShortFromToKeys(t *testing.T) {
	body := "From: NN1 1AA\nTo: LE2 3BB\n"

	candidate, err := NewReallyMoving().Extract("misc", body, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.FromPostcode != "NN1 1AA" || candidate.ToPostcode != "LE2 3BB" {
		t.Fatalf("expected bare from/to keys to map, got %q / %q", candidate.FromPostcode, candidate.ToPostcode)
	}
}

func TestReallyMoving_UnknownKeysIgnored(t *testing.T) {
	body := "Quote ID: 99\nBudget: 1200\nEmail: a@b.com\n"

	candidate, err := NewReallyMoving().Extract("misc", body, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Email != "a@b.com" {
		t.Fatalf("expected email applied, got %q", candidate.Email)
	}
}

func TestReallyMoving_CanHandle(t *testing.T) {
	ex := NewReallyMoving()
	if !ex.CanHandle("enquiries@reallymoving.com", "") {
		t.Fatal("expected reallymoving.com sender to be handled")
	}
	if ex.CanHandle("jane@gmail.com", "Removal enquiry") {
		t.Fatal("expected subject alone not to qualify")
	}
}
