package service

import (
	"time"

	"appointment-dashboard/internal/domain/entity"
)

func appointment(id string, status entity.AppointmentStatus, appointmentDate time.Time) entity.Appointment {
	return entity.Appointment{
		ID:              id,
		OpportunityID:   "opp-" + id,
		PatientName:     "Paciente " + id,
		Doctor:          entity.DefaultDoctor,
		City:            entity.DefaultCity,
		Procedure:       entity.DefaultProcedure,
		Insurance:       entity.DefaultInsurance,
		Status:          status,
		AppointmentDate: appointmentDate,
		CreatedAt:       appointmentDate,
		UpdatedAt:       appointmentDate,
	}
}

func ids(records []entity.Appointment) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
