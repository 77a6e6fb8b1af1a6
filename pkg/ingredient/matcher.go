package ingredient

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusVegan    Status = "vegan"
	StatusNonVegan Status = "non_vegan"
	StatusUnknown  Status = "unknown"
)

// UnknownSource is the source reported for items no key matched.
const UnknownSource = "Unknown"

// UnknownPolicy decides what Match does with items no key matched.
type UnknownPolicy string

const (
	// UnknownOmit drops unmatched items from the result.
	UnknownOmit UnknownPolicy = "omit"
	// UnknownReport emits an explicit unknown result for unmatched items.
	UnknownReport UnknownPolicy = "report"
)

func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch UnknownPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case UnknownOmit:
		return UnknownOmit, nil
	case UnknownReport:
		return UnknownReport, nil
	default:
		return "", fmt.Errorf("unknown ingredient policy %q (want omit or report)", s)
	}
}

// Result is one matched (or explicitly unknown) ingredient.
type Result struct {
	Ingredient string    `json:"ingredient"`
	Key        string    `json:"matched_key,omitempty"`
	Status     Status    `json:"status"`
	IsVegan    bool      `json:"is_vegan"`
	Source     string    `json:"source"`
	Risk       RiskLevel `json:"risk_level,omitempty"`
}

// Matcher runs first-match substring lookups against a table.
type Matcher struct {
	table  *Table
	policy UnknownPolicy
}

func NewMatcher(table *Table, policy UnknownPolicy) *Matcher {
	if policy == "" {
		policy = UnknownOmit
	}
	return &Matcher{table: table, policy: policy}
}

func (m *Matcher) Policy() UnknownPolicy {
	return m.policy
}

func (m *Matcher) Table() *Table {
	return m.table
}

// Match looks up every item in input order. The first table key contained
// in the normalized item wins; blank items are skipped.
func (m *Matcher) Match(items []string) []Result {
	return m.MatchWith(items, m.policy)
}

// MatchWith is Match with a per-call policy override.
func (m *Matcher) MatchWith(items []string, policy UnknownPolicy) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		norm := normalize(item)
		if norm == "" {
			continue
		}
		if entry, ok := m.first(norm); ok {
			results = append(results, Result{
				Ingredient: item,
				Key:        entry.Key,
				Status:     statusOf(entry.Record),
				IsVegan:    entry.Record.IsVegan,
				Source:     entry.Record.Source,
				Risk:       entry.Record.Risk,
			})
			continue
		}
		if policy == UnknownReport {
			results = append(results, Result{
				Ingredient: item,
				Status:     StatusUnknown,
				Source:     UnknownSource,
			})
		}
	}
	return results
}

func (m *Matcher) first(norm string) (Entry, bool) {
	for _, e := range m.table.entries {
		if strings.Contains(norm, e.Key) {
			return e, true
		}
	}
	return Entry{}, false
}

func statusOf(r Record) Status {
	if r.IsVegan {
		return StatusVegan
	}
	return StatusNonVegan
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitIngredients breaks a label string into individual ingredient
// phrases on commas, semicolons, newlines and parentheses.
func SplitIngredients(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '(', ')', '[', ']':
			return true
		}
		return false
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(f), "."))
		// "Ingredients: sugar" -> "sugar"
		if i := strings.Index(f, ":"); i >= 0 {
			f = strings.TrimSpace(f[i+1:])
		}
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
