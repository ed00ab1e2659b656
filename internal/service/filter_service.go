package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"appointment-dashboard/internal/domain/entity"

	"github.com/jinzhu/now"
)

// FilterDateLayout is the only accepted format for date boundaries.
const FilterDateLayout = "2006-01-02"

var ErrInvalidFilterDate = errors.New("invalid filter date format, use YYYY-MM-DD")

// ParseFilterDate reads a YYYY-MM-DD boundary as a calendar date in loc.
func ParseFilterDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(FilterDateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, ErrInvalidFilterDate
	}
	return date, nil
}

// FilterWindow returns the inclusive instant range covered by the criteria dates:
// DateStart at 00:00:00.000 and DateEnd at 23:59:59.999, in each date's own location.
// A zero boundary leaves that side open.
func FilterWindow(criteria entity.FilterCriteria) (start, end time.Time) {
	if !criteria.DateStart.IsZero() {
		start = now.With(criteria.DateStart).BeginningOfDay()
	}
	if !criteria.DateEnd.IsZero() {
		end = now.With(criteria.DateEnd).BeginningOfDay().AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return start, end
}

// FilterAppointments returns the records matching every active criterion, in input order.
func FilterAppointments(records []entity.Appointment, criteria entity.FilterCriteria) []entity.Appointment {
	start, end := FilterWindow(criteria)

	matched := make([]entity.Appointment, 0, len(records))
	for _, record := range records {
		if record.HasAppointmentDate() {
			if !start.IsZero() && record.AppointmentDate.Before(start) {
				continue
			}
			if !end.IsZero() && record.AppointmentDate.After(end) {
				continue
			}
		}
		if !criteria.Doctor.Matches(record.Doctor) ||
			!criteria.City.Matches(record.City) ||
			!criteria.Status.Matches(string(record.Status)) ||
			!criteria.Procedure.Matches(record.Procedure) ||
			!criteria.Insurance.Matches(record.Insurance) {
			continue
		}
		matched = append(matched, record)
	}
	return matched
}

// BuildFilterOptions projects the sorted distinct non-empty values of every filterable field.
func BuildFilterOptions(records []entity.Appointment) entity.FilterOptions {
	doctors := make(map[string]struct{})
	cities := make(map[string]struct{})
	statuses := make(map[string]struct{})
	procedures := make(map[string]struct{})
	insurances := make(map[string]struct{})

	for _, record := range records {
		addOption(doctors, record.Doctor)
		addOption(cities, record.City)
		addOption(statuses, string(record.Status))
		addOption(procedures, record.Procedure)
		addOption(insurances, record.Insurance)
	}

	return entity.FilterOptions{
		Doctors:    sortedOptions(doctors),
		Cities:     sortedOptions(cities),
		Statuses:   sortedOptions(statuses),
		Procedures: sortedOptions(procedures),
		Insurances: sortedOptions(insurances),
	}
}

func addOption(set map[string]struct{}, value string) {
	if value != "" {
		set[value] = struct{}{}
	}
}

func sortedOptions(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}
