package entity

import "time"

// AppointmentStatus is one value of the closed status vocabulary used by the clinic.
type AppointmentStatus string

const (
	StatusUnconfirmed AppointmentStatus = "Não Confirmada"
	StatusConfirmed   AppointmentStatus = "Confirmada"
	StatusCompleted   AppointmentStatus = "Concluída - Compareceu"
	StatusCanceled    AppointmentStatus = "Cancelada"
	StatusNoShow      AppointmentStatus = "Não Compareceu"
	StatusPostSurgery AppointmentStatus = "Pós Cirurgia"

	// StatusDefault is assigned when the feed omits the status or sends one outside the closed set.
	StatusDefault = StatusUnconfirmed
)

// Statuses lists the closed status set in display order.
var Statuses = []AppointmentStatus{
	StatusUnconfirmed,
	StatusConfirmed,
	StatusCompleted,
	StatusCanceled,
	StatusNoShow,
	StatusPostSurgery,
}

// IsValid reports whether s belongs to the closed status set.
func (s AppointmentStatus) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Defaults substituted for fields the feed leaves empty.
const (
	DefaultOpportunityID = "-"
	DefaultPatientName   = "Paciente não informado"
	DefaultDoctor        = "Médico não definido"
	DefaultCity          = "Cidade não informada"
	DefaultProcedure     = "Procedimento não informado"
	DefaultInsurance     = "Convênio não informado"
)

// Appointment is the canonical, default-filled representation of one feed item.
// Every string field is set after normalization and Status is always a member of Statuses.
type Appointment struct {
	ID              string            `json:"id"`
	OpportunityID   string            `json:"opportunity_id"`
	PatientName     string            `json:"patient_name"`
	Doctor          string            `json:"doctor"`
	City            string            `json:"city"`
	Procedure       string            `json:"procedure"`
	Insurance       string            `json:"insurance"`
	Status          AppointmentStatus `json:"appointment_status"`
	AppointmentDate time.Time         `json:"appointment_date"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Notes           string            `json:"notes"`
}

// HasAppointmentDate reports whether the record carries a usable scheduled instant.
func (a *Appointment) HasAppointmentDate() bool {
	return !a.AppointmentDate.IsZero()
}
