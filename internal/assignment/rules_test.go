package assignment

import (
	"testing"

	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
)

func TestRuleMatches(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		lead repository.Lead
		want bool
	}{
		{
			name: "empty rule matches everything",
			rule: Rule{},
			lead: repository.Lead{Source: domain.SourceWebsite},
			want: true,
		},
		{
			name: "source condition matches",
			rule: Rule{Sources: []domain.Source{domain.SourceCompareMyMove, domain.SourceReallyMoving}},
			lead: repository.Lead{Source: domain.SourceReallyMoving},
			want: true,
		},
		{
			name: "source condition rejects",
			rule: Rule{Sources: []domain.Source{domain.SourceCompareMyMove}},
			lead: repository.Lead{Source: domain.SourceWebsite},
			want: false,
		},
		{
			name: "postcode prefix is case-insensitive",
			rule: Rule{PostcodePrefixes: []string{"nn"}},
			lead: repository.Lead{FromPostcode: "NN1 1AA"},
			want: true,
		},
		{
			name: "postcode prefix rejects other areas",
			rule: Rule{PostcodePrefixes: []string{"NN", "LE"}},
			lead: repository.Lead{FromPostcode: "SW1A 1AA"},
			want: false,
		},
		{
			name: "postcode condition rejects leads without a postcode",
			rule: Rule{PostcodePrefixes: []string{"NN"}},
			lead: repository.Lead{},
			want: false,
		},
		{
			name: "bedroom range satisfied",
			rule: Rule{MinBedrooms: intPtr(2), MaxBedrooms: intPtr(4)},
			lead: repository.Lead{Bedrooms: intPtr(3)},
			want: true,
		},
		{
			name: "below minimum bedrooms",
			rule: Rule{MinBedrooms: intPtr(4)},
			lead: repository.Lead{Bedrooms: intPtr(2)},
			want: false,
		},
		{
			name: "above maximum bedrooms",
			rule: Rule{MaxBedrooms: intPtr(2)},
			lead: repository.Lead{Bedrooms: intPtr(5)},
			want: false,
		},
		{
			name: "unknown bedrooms never satisfy a bound",
			rule: Rule{MinBedrooms: intPtr(1)},
			lead: repository.Lead{},
			want: false,
		},
		{
			name: "all conditions must hold",
			rule: Rule{Sources: []domain.Source{domain.SourceWebsite}, PostcodePrefixes: []string{"NN"}},
			lead: repository.Lead{Source: domain.SourceWebsite, FromPostcode: "LE2 3BB"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Matches(tt.lead); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleStore_ListOrdersByPriorityThenName(t *testing.T) {
	store := NewRuleStore()
	store.Create(Rule{Name: "beta", Priority: 2})
	store.Create(Rule{Name: "alpha", Priority: 2})
	store.Create(Rule{Name: "zulu", Priority: 1})

	rules := store.List()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	got := []string{rules[0].Name, rules[1].Name, rules[2].Name}
	want := []string{"zulu", "alpha", "beta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestRuleStore_UpdateKeepsID(t *testing.T) {
	store := NewRuleStore()
	created := store.Create(Rule{Name: "before", Priority: 1})

	updated, err := store.Update(created.ID, Rule{Name: "after", Priority: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatal("update must keep the rule ID")
	}
	if updated.Name != "after" || updated.Priority != 5 {
		t.Fatalf("unexpected updated rule: %+v", updated)
	}
}

func TestRuleStore_UnknownIDErrors(t *testing.T) {
	store := NewRuleStore()

	if _, err := store.Get(uuid.New()); err == nil {
		t.Fatal("expected error for unknown rule")
	}
	if _, err := store.Update(uuid.New(), Rule{}); err == nil {
		t.Fatal("expected error updating unknown rule")
	}
	if err := store.Delete(uuid.New()); err == nil {
		t.Fatal("expected error deleting unknown rule")
	}
}

func TestRuleStore_Delete(t *testing.T) {
	store := NewRuleStore()
	created := store.Create(Rule{Name: "temp"})

	if err := store.Delete(created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(created.ID); err == nil {
		t.Fatal("expected rule to be gone")
	}
}
