package converter

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/pkg/textfold"
)

// envelopeKey is the field under which the feed may wrap an item one level deep.
const envelopeKey = "json"

// Accepted source names per canonical field, newest or most specific first.
var (
	idFields              = []string{"id", "appointment_id", "appointmentId", "_id"}
	opportunityIDFields   = []string{"opportunity_id", "opportunityId", "id_oportunidade", "oportunidade"}
	patientNameFields     = []string{"patient_name", "patientName", "nome_paciente", "paciente", "name"}
	doctorFields          = []string{"doctor", "doctor_name", "medico", "médico"}
	cityFields            = []string{"city", "cidade"}
	stateFields           = []string{"state", "estado", "uf"}
	procedureFields       = []string{"procedure", "procedimento"}
	insuranceFields       = []string{"insurance", "convenio", "convênio"}
	statusFields          = []string{"appointment_status", "appointmentStatus", "status_agendamento", "status"}
	appointmentDateFields = []string{"appointment_date", "appointmentDate", "data_agendamento", "scheduled_at"}
	createdAtFields       = []string{"created_at", "createdAt", "data_criacao", "dateAdded"}
	updatedAtFields       = []string{"updated_at", "updatedAt", "data_atualizacao", "dateUpdated"}
	phoneFields           = []string{"phone", "telefone", "contact_phone"}
	emailFields           = []string{"email", "e_mail"}
	notesFields           = []string{"notes", "observacoes", "observações"}
)

// Layouts carrying their own offset.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02T15:04:05Z07",
}

// Layouts read in the normalizer's location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006, 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// statusVocabulary maps folded spellings, including the legacy vocabulary of older feed
// revisions, onto the closed status set.
var statusVocabulary = buildStatusVocabulary(map[string]entity.AppointmentStatus{
	"Agendado":       entity.StatusUnconfirmed,
	"Agendada":       entity.StatusUnconfirmed,
	"Pendente":       entity.StatusUnconfirmed,
	"Confirmado":     entity.StatusConfirmed,
	"Realizado":      entity.StatusCompleted,
	"Realizada":      entity.StatusCompleted,
	"Concluída":      entity.StatusCompleted,
	"Compareceu":     entity.StatusCompleted,
	"Cancelado":      entity.StatusCanceled,
	"No-show":        entity.StatusNoShow,
	"No show":        entity.StatusNoShow,
	"Faltou":         entity.StatusNoShow,
	"Pós-operatório": entity.StatusPostSurgery,
	"Pós-Cirurgia":   entity.StatusPostSurgery,
	"Pós Operatório": entity.StatusPostSurgery,
})

func buildStatusVocabulary(legacy map[string]entity.AppointmentStatus) map[string]entity.AppointmentStatus {
	vocabulary := make(map[string]entity.AppointmentStatus, len(legacy)+len(entity.Statuses))
	for spelling, status := range legacy {
		vocabulary[textfold.Key(spelling)] = status
	}
	for _, status := range entity.Statuses {
		vocabulary[textfold.Key(string(status))] = status
	}
	return vocabulary
}

// Normalizer maps loosely shaped feed items onto entity.Appointment.
type Normalizer struct {
	location *time.Location
	now      func() time.Time
}

// NewNormalizer creates a Normalizer reading zone-less timestamps in loc (UTC when nil).
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{
		location: loc,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for the normalization instant.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// NormalizeAll normalizes every item with a single normalization instant.
func (n *Normalizer) NormalizeAll(items []any) []entity.Appointment {
	at := n.now().In(n.location)
	appointments := make([]entity.Appointment, len(items))
	for i, item := range items {
		appointments[i] = n.normalizeAt(item, at)
	}
	return appointments
}

// Normalize never fails: every missing or malformed field resolves to its default.
func (n *Normalizer) Normalize(raw any) entity.Appointment {
	return n.normalizeAt(raw, n.now().In(n.location))
}

func (n *Normalizer) normalizeAt(raw any, at time.Time) entity.Appointment {
	item := unwrap(toObject(raw))

	opportunityID := firstString(item, opportunityIDFields)
	id := firstString(item, idFields)
	if id == "" {
		id = opportunityID
	}

	createdAt, ok := n.firstTime(item, createdAtFields)
	if !ok {
		createdAt = at
	}
	updatedAt, ok := n.firstTime(item, updatedAtFields)
	if !ok {
		updatedAt = createdAt
	}
	appointmentDate, ok := n.firstTime(item, appointmentDateFields)
	if !ok {
		appointmentDate = createdAt
	}

	return entity.Appointment{
		ID:              id,
		OpportunityID:   orDefault(opportunityID, entity.DefaultOpportunityID),
		PatientName:     orDefault(firstString(item, patientNameFields), entity.DefaultPatientName),
		Doctor:          orDefault(firstString(item, doctorFields), entity.DefaultDoctor),
		City:            composeCity(firstString(item, cityFields), firstString(item, stateFields)),
		Procedure:       orDefault(firstString(item, procedureFields), entity.DefaultProcedure),
		Insurance:       orDefault(firstString(item, insuranceFields), entity.DefaultInsurance),
		Status:          NormalizeStatus(firstString(item, statusFields)),
		AppointmentDate: appointmentDate,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Phone:           firstString(item, phoneFields),
		Email:           firstString(item, emailFields),
		Notes:           firstString(item, notesFields),
	}
}

// NormalizeStatus resolves a raw status onto the closed set. Unknown values become entity.StatusDefault.
func NormalizeStatus(raw string) entity.AppointmentStatus {
	status := entity.AppointmentStatus(strings.TrimSpace(raw))
	if status.IsValid() {
		return status
	}
	if known, ok := statusVocabulary[textfold.Key(raw)]; ok {
		return known
	}
	return entity.StatusDefault
}

func composeCity(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + " - " + state
	case city != "":
		return city
	case state != "":
		return state
	default:
		return entity.DefaultCity
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func toObject(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	case string:
		return decodeObject([]byte(v))
	}
	return nil
}

func decodeObject(data []byte) map[string]any {
	var object map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&object); err != nil {
		return nil
	}
	return object
}

// unwrap prefers the object nested under the envelope key and falls back to the item itself.
func unwrap(item map[string]any) map[string]any {
	if inner, ok := item[envelopeKey].(map[string]any); ok {
		return inner
	}
	return item
}

func firstString(item map[string]any, keys []string) string {
	for _, key := range keys {
		if value, ok := scalarString(item[key]); ok {
			return value
		}
	}
	return ""
}

func scalarString(v any) (string, bool) {
	var s string
	switch value := v.(type) {
	case string:
		s = value
	case json.Number:
		s = value.String()
	case float64:
		s = strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		s = strconv.Itoa(value)
	case int64:
		s = strconv.FormatInt(value, 10)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// firstTime returns the first alias holding a parseable instant.
func (n *Normalizer) firstTime(item map[string]any, keys []string) (time.Time, bool) {
	for _, key := range keys {
		if t, ok := n.parseTime(item[key]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) parseTime(v any) (time.Time, bool) {
	switch value := v.(type) {
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return epoch(f)
		}
	case float64:
		return epoch(value)
	case int64:
		return epoch(float64(value))
	case int:
		return epoch(float64(value))
	case string:
		return n.parseTimeString(strings.TrimSpace(value))
	}
	return time.Time{}, false
}

func (n *Normalizer) parseTimeString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if isDigits(s) && len(s) >= 9 {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epoch(f)
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, n.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// epoch reads seconds, or milliseconds once the value is past 1e12. Non-positive values are absent.
func epoch(f float64) (time.Time, bool) {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f > 1e12 {
		return time.UnixMilli(int64(math.Round(f))).UTC(), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
