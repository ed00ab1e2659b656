package service

import (
	"appointment-dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Metrics summarizes a record set. Rates are percentages rounded to one decimal place.
type Metrics struct {
	Total            int     `json:"total"`
	Confirmed        int     `json:"confirmed"`
	Completed        int     `json:"completed"`
	Canceled         int     `json:"canceled"`
	NoShow           int     `json:"no_show"`
	Pending          int     `json:"pending"`
	RealizationRate  float64 `json:"realization_rate"`
	NoShowRate       float64 `json:"no_show_rate"`
	ConfirmationRate float64 `json:"confirmation_rate"`
	CancellationRate float64 `json:"cancellation_rate"`
}

// MetricsAggregator counts statuses over a record set.
type MetricsAggregator struct {
	// CompletedIncludesPostSurgery also counts "Pós Cirurgia" records as completed.
	CompletedIncludesPostSurgery bool
}

func NewMetricsAggregator(completedIncludesPostSurgery bool) *MetricsAggregator {
	return &MetricsAggregator{CompletedIncludesPostSurgery: completedIncludesPostSurgery}
}

// Aggregate returns all zeros for an empty set.
func (a *MetricsAggregator) Aggregate(records []entity.Appointment) Metrics {
	total := len(records)
	if total == 0 {
		return Metrics{}
	}

	m := Metrics{Total: total}
	for _, record := range records {
		switch record.Status {
		case entity.StatusConfirmed:
			m.Confirmed++
		case entity.StatusCompleted:
			m.Completed++
		case entity.StatusPostSurgery:
			if a.CompletedIncludesPostSurgery {
				m.Completed++
			}
		case entity.StatusCanceled:
			m.Canceled++
		case entity.StatusNoShow:
			m.NoShow++
		case entity.StatusUnconfirmed:
			m.Pending++
		}
	}

	m.RealizationRate = Percentage(m.Completed, total)
	m.NoShowRate = Percentage(m.NoShow, total)
	m.ConfirmationRate = Percentage(m.Confirmed, total)
	m.CancellationRate = Percentage(m.Canceled, total)
	return m
}

// Percentage is 100*count/total rounded half away from zero to one decimal, or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}
