// Package assignment decides which staff member owns an accepted lead:
// priority rules first, load-balanced round robin as the fallback.
package assignment

import (
	"sort"
	"strings"
	"sync"

	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Rule routes matching leads to a specific staff member. All present
// conditions must hold; an empty condition matches everything.
type Rule struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Priority         int             `json:"priority"` // lower runs first
	Sources          []domain.Source `json:"sources,omitempty"`
	PostcodePrefixes []string        `json:"postcodePrefixes,omitempty"`
	MinBedrooms      *int            `json:"minBedrooms,omitempty"`
	MaxBedrooms      *int            `json:"maxBedrooms,omitempty"`
	TargetStaffID    uuid.UUID       `json:"targetStaffId"`
	Enabled          bool            `json:"enabled"`
}

// Matches reports whether the lead satisfies every condition the rule
// carries. A lead with unknown bedrooms never satisfies a bedroom bound.
func (r Rule) Matches(lead repository.Lead) bool {
	if len(r.Sources) > 0 {
		found := false
		for _, src := range r.Sources {
			if src == lead.Source {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(r.PostcodePrefixes) > 0 {
		postcode := strings.ToUpper(strings.TrimSpace(lead.FromPostcode))
		if postcode == "" {
			return false
		}
		found := false
		for _, prefix := range r.PostcodePrefixes {
			if strings.HasPrefix(postcode, strings.ToUpper(strings.TrimSpace(prefix))) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if r.MinBedrooms != nil || r.MaxBedrooms != nil {
		if lead.Bedrooms == nil {
			return false
		}
		if r.MinBedrooms != nil && *lead.Bedrooms < *r.MinBedrooms {
			return false
		}
		if r.MaxBedrooms != nil && *lead.Bedrooms > *r.MaxBedrooms {
			return false
		}
	}

	return true
}

// RuleStore holds assignment rules in memory. Rules are operational
// configuration, tuned at runtime; they do not survive a restart.
type RuleStore struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]Rule
}

func NewRuleStore() *RuleStore {
	return &RuleStore{rules: make(map[uuid.UUID]Rule)}
}

// List returns all rules ordered by priority, then name for stability.
func (s *RuleStore) List() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].Name < rules[j].Name
	})
	return rules
}

// Get retrieves one rule.
func (s *RuleStore) Get(id uuid.UUID) (Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[id]
	if !ok {
		return Rule{}, apperr.NotFound("rule not found")
	}
	return rule, nil
}

// Create stores a new rule and assigns its ID.
func (s *RuleStore) Create(rule Rule) Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule.ID = uuid.New()
	s.rules[rule.ID] = rule
	return rule
}

// Update replaces an existing rule, keeping its ID.
func (s *RuleStore) Update(id uuid.UUID, rule Rule) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return Rule{}, apperr.NotFound("rule not found")
	}
	rule.ID = id
	s.rules[id] = rule
	return rule, nil
}

// Delete removes a rule.
func (s *RuleStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return apperr.NotFound("rule not found")
	}
	delete(s.rules, id)
	return nil
}
