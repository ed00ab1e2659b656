package service

import (
	"sort"
	"strings"
	"time"

	"appointment-dashboard/internal/domain/entity"

	"github.com/jinzhu/now"
)

const (
	// DailyWindowDays is the length of the daily evolution series, ending today.
	DailyWindowDays = 30

	// RankingLimit caps the doctor and procedure rankings.
	RankingLimit = 8

	// ProcedureLabelLimit is the number of runes kept in a procedure label before the ellipsis.
	ProcedureLabelLimit = 20
)

var doctorHonorifics = []string{"Dr. ", "Dra. "}

// DailyBucket counts the records created on one calendar day.
type DailyBucket struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatusSlice is one status share of the record set.
type StatusSlice struct {
	Status     entity.AppointmentStatus `json:"status"`
	Count      int                      `json:"count"`
	Percentage float64                  `json:"percentage"`
}

// RankingEntry is one row of a count ranking. Label is the display form of Name.
type RankingEntry struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DailyEvolution returns DailyWindowDays buckets, oldest first, ending on the calendar day of
// today in loc. A record lands in the bucket of its createdAt day in loc; days without records count 0.
func DailyEvolution(records []entity.Appointment, today time.Time, loc *time.Location) []DailyBucket {
	if loc == nil {
		loc = time.UTC
	}
	first := now.With(today.In(loc)).BeginningOfDay().AddDate(0, 0, -(DailyWindowDays - 1))

	buckets := make([]DailyBucket, DailyWindowDays)
	index := make(map[string]int, DailyWindowDays)
	for i := range buckets {
		day := first.AddDate(0, 0, i)
		key := day.Format(FilterDateLayout)
		buckets[i] = DailyBucket{Date: key, Label: day.Format("02/01")}
		index[key] = i
	}

	for _, record := range records {
		if record.CreatedAt.IsZero() {
			continue
		}
		if i, ok := index[record.CreatedAt.In(loc).Format(FilterDateLayout)]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// StatusDistribution counts records per status in first-seen order.
func StatusDistribution(records []entity.Appointment) []StatusSlice {
	groups := groupCounts(records, func(a entity.Appointment) string { return string(a.Status) })

	slices := make([]StatusSlice, len(groups))
	for i, g := range groups {
		slices[i] = StatusSlice{
			Status:     entity.AppointmentStatus(g.key),
			Count:      g.count,
			Percentage: Percentage(g.count, len(records)),
		}
	}
	return slices
}

// DoctorRanking returns the RankingLimit doctors with most records. Equal counts keep
// first-appearance order. Labels drop a leading "Dr. " or "Dra. ".
func DoctorRanking(records []entity.Appointment) []RankingEntry {
	return rank(records, func(a entity.Appointment) string { return a.Doctor }, DoctorLabel, RankingLimit)
}

// ProcedureRanking returns the RankingLimit procedures with most records. Equal counts keep
// first-appearance order. Labels longer than ProcedureLabelLimit runes are cut and suffixed "...".
func ProcedureRanking(records []entity.Appointment) []RankingEntry {
	return rank(records, func(a entity.Appointment) string { return a.Procedure }, ProcedureLabel, RankingLimit)
}

// CityDistribution ranks every city by record count.
func CityDistribution(records []entity.Appointment) []RankingEntry {
	return rank(records, func(a entity.Appointment) string { return a.City }, identityLabel, 0)
}

// InsuranceDistribution ranks every insurance plan by record count.
func InsuranceDistribution(records []entity.Appointment) []RankingEntry {
	return rank(records, func(a entity.Appointment) string { return a.Insurance }, identityLabel, 0)
}

// DoctorLabel strips a leading honorific.
func DoctorLabel(name string) string {
	for _, prefix := range doctorHonorifics {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// ProcedureLabel truncates long procedure names for chart axes.
func ProcedureLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= ProcedureLabelLimit {
		return name
	}
	return string(runes[:ProcedureLabelLimit]) + "..."
}

func identityLabel(name string) string {
	return name
}

type keyCount struct {
	key   string
	count int
}

// groupCounts counts records per key, keeping the order in which keys first appear.
func groupCounts(records []entity.Appointment, keyOf func(entity.Appointment) string) []keyCount {
	positions := make(map[string]int)
	var groups []keyCount
	for _, record := range records {
		key := keyOf(record)
		if i, ok := positions[key]; ok {
			groups[i].count++
			continue
		}
		positions[key] = len(groups)
		groups = append(groups, keyCount{key: key, count: 1})
	}
	return groups
}

// rank sorts groups by count descending, stable on first appearance, and keeps at most limit
// entries (all when limit is 0).
func rank(records []entity.Appointment, keyOf func(entity.Appointment) string, label func(string) string, limit int) []RankingEntry {
	groups := groupCounts(records, keyOf)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	entries := make([]RankingEntry, len(groups))
	for i, g := range groups {
		entries[i] = RankingEntry{
			Name:       g.key,
			Label:      label(g.key),
			Count:      g.count,
			Percentage: Percentage(g.count, len(records)),
		}
	}
	return entries
}
