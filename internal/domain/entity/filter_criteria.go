package entity

import "time"

// SelectAll is the wildcard selector value.
const SelectAll Selector = "all"

// Selector is either the wildcard or an exact value a field must equal.
type Selector string

// IsWildcard reports whether the selector lets every value through.
// The empty selector is treated as the wildcard as well.
func (s Selector) IsWildcard() bool {
	return s == "" || s == SelectAll
}

// Matches reports whether value satisfies the selector. Comparison is exact and case-sensitive.
func (s Selector) Matches(value string) bool {
	return s.IsWildcard() || string(s) == value
}

// FilterCriteria is the user-selected filter set. It is replaced wholesale on every edit.
// DateStart and DateEnd are calendar dates; only their year, month and day are used.
type FilterCriteria struct {
	DateStart time.Time
	DateEnd   time.Time
	Doctor    Selector
	City      Selector
	Status    Selector
	Procedure Selector
	Insurance Selector
}

// DefaultFilterCriteria returns the criteria used on load and after an explicit clear:
// every selector at the wildcard and a date range from one year before today up to today.
func DefaultFilterCriteria(today time.Time) FilterCriteria {
	return FilterCriteria{
		DateStart: today.AddDate(-1, 0, 0),
		DateEnd:   today,
		Doctor:    SelectAll,
		City:      SelectAll,
		Status:    SelectAll,
		Procedure: SelectAll,
		Insurance: SelectAll,
	}
}

// HasActiveSelectors reports whether any field selector narrows the set.
func (c FilterCriteria) HasActiveSelectors() bool {
	for _, s := range []Selector{c.Doctor, c.City, c.Status, c.Procedure, c.Insurance} {
		if !s.IsWildcard() {
			return true
		}
	}
	return false
}

// FilterOptions is the sorted set of distinct non-empty values per filterable field.
type FilterOptions struct {
	Doctors    []string `json:"doctors"`
	Cities     []string `json:"cities"`
	Statuses   []string `json:"statuses"`
	Procedures []string `json:"procedures"`
	Insurances []string `json:"insurances"`
}
