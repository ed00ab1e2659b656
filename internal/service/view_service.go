package service

import (
	"sort"
	"strings"
	"time"

	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/pkg/textfold"
)

// Page is one slice of an ordered record set.
type Page struct {
	Items       []entity.Appointment `json:"items"`
	TotalItems  int                  `json:"total_items"`
	TotalPages  int                  `json:"total_pages"`
	CurrentPage int                  `json:"current_page"`
	PageSize    int                  `json:"page_size"`
	RangeStart  int                  `json:"range_start"`
	RangeEnd    int                  `json:"range_end"`
}

// sortKey is a precomputed comparison key. present is false for values that always sort last.
type sortKey struct {
	text    string
	instant time.Time
	present bool
}

// SortAppointments returns a stably ordered copy of records. Date fields compare as instants,
// text fields case-insensitively. Missing values go last in either direction.
func SortAppointments(records []entity.Appointment, state entity.SortState) []entity.Appointment {
	type keyed struct {
		record entity.Appointment
		key    sortKey
	}

	rows := make([]keyed, len(records))
	for i, record := range records {
		rows[i] = keyed{record: record, key: keyFor(record, state.Field)}
	}

	descending := state.Direction == entity.SortDescending
	isDate := state.Field.IsDate()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].key, rows[j].key
		if !a.present || !b.present {
			return a.present && !b.present
		}
		var c int
		if isDate {
			c = a.instant.Compare(b.instant)
		} else {
			c = strings.Compare(a.text, b.text)
		}
		if descending {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]entity.Appointment, len(rows))
	for i, row := range rows {
		sorted[i] = row.record
	}
	return sorted
}

func keyFor(a entity.Appointment, field entity.SortField) sortKey {
	switch field {
	case entity.SortByAppointmentDate:
		return instantKey(a.AppointmentDate)
	case entity.SortByCreatedAt:
		return instantKey(a.CreatedAt)
	case entity.SortByUpdatedAt:
		return instantKey(a.UpdatedAt)
	}
	return sortKey{text: textfold.Fold(fieldText(a, field)), present: true}
}

func instantKey(t time.Time) sortKey {
	return sortKey{instant: t, present: !t.IsZero()}
}

func fieldText(a entity.Appointment, field entity.SortField) string {
	switch field {
	case entity.SortByID:
		return a.ID
	case entity.SortByOpportunityID:
		return a.OpportunityID
	case entity.SortByPatientName:
		return a.PatientName
	case entity.SortByDoctor:
		return a.Doctor
	case entity.SortByCity:
		return a.City
	case entity.SortByProcedure:
		return a.Procedure
	case entity.SortByInsurance:
		return a.Insurance
	case entity.SortByStatus:
		return string(a.Status)
	case entity.SortByPhone:
		return a.Phone
	case entity.SortByEmail:
		return a.Email
	case entity.SortByNotes:
		return a.Notes
	}
	return ""
}

// Paginate clamps the requested page and slices records into it.
func Paginate(records []entity.Appointment, state entity.PageState) Page {
	total := len(records)
	state = state.Clamp(total)

	start := state.PageSize * (state.CurrentPage - 1)
	end := start + state.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := records[start:end:end]
	if items == nil {
		items = []entity.Appointment{}
	}

	page := Page{
		Items:       items,
		TotalItems:  total,
		TotalPages:  state.TotalPages(total),
		CurrentPage: state.CurrentPage,
		PageSize:    state.PageSize,
	}
	if end > start {
		page.RangeStart = start + 1
		page.RangeEnd = end
	}
	return page
}

// View orders records and returns the requested page.
func View(records []entity.Appointment, sortState entity.SortState, pageState entity.PageState) Page {
	return Paginate(SortAppointments(records, sortState), pageState)
}
