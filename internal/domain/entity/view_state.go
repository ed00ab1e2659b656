package entity

// DefaultPageSize is the fixed number of rows per page.
const DefaultPageSize = 10

// SortField names an Appointment field the table can be ordered by.
type SortField string

const (
	SortByID              SortField = "id"
	SortByOpportunityID   SortField = "opportunity_id"
	SortByPatientName     SortField = "patient_name"
	SortByDoctor          SortField = "doctor"
	SortByCity            SortField = "city"
	SortByProcedure       SortField = "procedure"
	SortByInsurance       SortField = "insurance"
	SortByStatus          SortField = "appointment_status"
	SortByAppointmentDate SortField = "appointment_date"
	SortByCreatedAt       SortField = "created_at"
	SortByUpdatedAt       SortField = "updated_at"
	SortByPhone           SortField = "phone"
	SortByEmail           SortField = "email"
	SortByNotes           SortField = "notes"
)

// IsDate reports whether the field holds an instant rather than text.
func (f SortField) IsDate() bool {
	switch f {
	case SortByAppointmentDate, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortState is the table ordering chosen by the user.
type SortState struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSortState orders the most recently created appointments first.
func DefaultSortState() SortState {
	return SortState{Field: SortByCreatedAt, Direction: SortDescending}
}

// Select returns the state after the user picks field. Picking the current field flips the
// direction; picking another field starts it descending. resetPage is true when the caller
// must send pagination back to the first page.
func (s SortState) Select(field SortField) (next SortState, resetPage bool) {
	if field == s.Field {
		if s.Direction == SortAscending {
			return SortState{Field: field, Direction: SortDescending}, false
		}
		return SortState{Field: field, Direction: SortAscending}, false
	}
	return SortState{Field: field, Direction: SortDescending}, true
}

// PageState tracks the visible page of the table.
type PageState struct {
	PageSize    int
	CurrentPage int
}

// NewPageState returns the first page with the fixed page size.
func NewPageState() PageState {
	return PageState{PageSize: DefaultPageSize, CurrentPage: 1}
}

// TotalPages is max(1, ceil(count / PageSize)).
func (p PageState) TotalPages(count int) int {
	size := p.size()
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp keeps CurrentPage within [1, TotalPages(count)].
func (p PageState) Clamp(count int) PageState {
	total := p.TotalPages(count)
	page := p.CurrentPage
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	return PageState{PageSize: p.size(), CurrentPage: page}
}

func (p PageState) size() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}
