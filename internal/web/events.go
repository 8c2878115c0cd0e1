package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/seamosgenios/classcal/internal/calendar"
	"github.com/seamosgenios/classcal/internal/subjects"
	gcal "google.golang.org/api/calendar/v3"
)

const (
	defaultListLimit = 50
	defaultWeeks     = 4
	untitled         = "(Sin título)"
)

// attendeeJSON is the reshaped attendee sent to the UI.
type attendeeJSON struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// eventJSON is the reshaped event sent to the UI.
type eventJSON struct {
	ID               string               `json:"id"`
	RecurringEventID string               `json:"recurringEventId,omitempty"`
	Summary          string               `json:"summary"`
	Description      string               `json:"description,omitempty"`
	Start            *gcal.EventDateTime  `json:"start,omitempty"`
	End              *gcal.EventDateTime  `json:"end,omitempty"`
	HangoutLink      string               `json:"hangoutLink,omitempty"`
	HTMLLink         string               `json:"htmlLink,omitempty"`
	Location         string               `json:"location,omitempty"`
	Status           string               `json:"status,omitempty"`
	IsRecurring      bool                 `json:"isRecurring"`
	Attendees        []attendeeJSON       `json:"attendees,omitempty"`
	ConferenceData   *gcal.ConferenceData `json:"conferenceData,omitempty"`
}

func shapeEvent(evt *gcal.Event) eventJSON {
	out := eventJSON{
		ID:               evt.Id,
		RecurringEventID: evt.RecurringEventId,
		Summary:          evt.Summary,
		Description:      evt.Description,
		Start:            evt.Start,
		End:              evt.End,
		HangoutLink:      evt.HangoutLink,
		HTMLLink:         evt.HtmlLink,
		Location:         evt.Location,
		Status:           evt.Status,
		IsRecurring:      evt.RecurringEventId != "",
	}
	if out.Summary == "" {
		out.Summary = untitled
	}
	for _, a := range evt.Attendees {
		out.Attendees = append(out.Attendees, attendeeJSON{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return out
}

// subjectParam validates the subject key against the registry before any
// external call. A false return means the 400 was already written.
func (s *Server) subjectParam(w http.ResponseWriter, key string) (subjects.Subject, bool) {
	subject, ok := s.registry.Lookup(key)
	if !ok {
		fail(w, http.StatusBadRequest, "Materia inválida o no especificada")
		return subjects.Subject{}, false
	}
	return subject, true
}

// bogota is the display location of every class calendar.
func bogota() *time.Location {
	loc, err := time.LoadLocation(calendar.DefaultTimeZone)
	if err != nil {
		return time.FixedZone("-05", -5*60*60)
	}
	return loc
}

// parseISO accepts RFC3339 and zone-less local timestamps, interpreting
// the latter in the calendar's timezone.
func parseISO(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, bogota()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, bogota()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// handleListEvents serves GET /api/events/list?subject&date: all events
// of one calendar for one day in [00:00, 24:00).
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	subject, ok := s.subjectParam(w, r.URL.Query().Get("subject"))
	if !ok {
		return
	}

	loc := bogota()
	day := time.Now().In(loc)
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateParam, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "Fecha inválida, se espera YYYY-MM-DD")
			return
		}
		day = parsed
	}
	timeMin := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	timeMax := timeMin.AddDate(0, 0, 1)

	gw, err := s.gateway(r.Context())
	if err != nil {
		failFromError(w, err)
		return
	}

	events, err := gw.ListEvents(r.Context(), subject.CalendarID, timeMin, timeMax, defaultListLimit)
	if err != nil {
		failFromError(w, err)
		return
	}

	shaped := make([]eventJSON, 0, len(events))
	for _, evt := range events {
		shaped = append(shaped, shapeEvent(evt))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"subject": subject.DisplayName,
		"date":    timeMin.Format("2006-01-02"),
		"count":   len(shaped),
		"events":  shaped,
	})
}

// handleListInstances serves GET /api/events/instances?subject&weeks&direction:
// every event of the subject calendar in a multi-week window, future or
// past, plus the Meet link of the running series.
func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	subject, ok := s.subjectParam(w, r.URL.Query().Get("subject"))
	if !ok {
		return
	}

	weeks := defaultWeeks
	if weeksParam := r.URL.Query().Get("weeks"); weeksParam != "" {
		parsed, err := strconv.Atoi(weeksParam)
		if err != nil || parsed <= 0 {
			fail(w, http.StatusBadRequest, "weeks debe ser un entero positivo")
			return
		}
		weeks = parsed
	}

	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "future"
	}
	if direction != "future" && direction != "past" {
		fail(w, http.StatusBadRequest, "direction debe ser 'future' o 'past'")
		return
	}

	loc := bogota()
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var timeMin, timeMax time.Time
	if direction == "past" {
		timeMin = today.AddDate(0, 0, -7*weeks)
		timeMax = today.AddDate(0, 0, 1)
	} else {
		timeMin = today
		timeMax = today.AddDate(0, 0, 7*weeks+1)
	}

	gw, err := s.gateway(r.Context())
	if err != nil {
		failFromError(w, err)
		return
	}

	events, err := gw.ListEvents(r.Context(), subject.CalendarID, timeMin, timeMax, 0)
	if err != nil {
		failFromError(w, err)
		return
	}

	// Surface the Meet link of the first recurring event, falling back to
	// the first event with one.
	meetLink := ""
	for _, evt := range events {
		if evt.RecurringEventId != "" && evt.HangoutLink != "" {
			meetLink = evt.HangoutLink
			break
		}
	}
	if meetLink == "" && len(events) > 0 {
		meetLink = events[0].HangoutLink
	}

	shaped := make([]eventJSON, 0, len(events))
	for _, evt := range events {
		shaped = append(shaped, shapeEvent(evt))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"subject":    subject.DisplayName,
		"calendarId": subject.CalendarID,
		"meetLink":   meetLink,
		"weeks":      weeks,
		"direction":  direction,
		"count":      len(shaped),
		"instances":  shaped,
	})
}

// handleGetEvent serves GET /api/events/get?subject&eventId.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	subject, ok := s.subjectParam(w, r.URL.Query().Get("subject"))
	if !ok {
		return
	}
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		fail(w, http.StatusBadRequest, "eventId es requerido")
		return
	}

	gw, err := s.gateway(r.Context())
	if err != nil {
		failFromError(w, err)
		return
	}

	event, err := gw.GetEvent(r.Context(), subject.CalendarID, eventID)
	if err != nil {
		failFromError(w, err)
		return
	}

	shaped := shapeEvent(event)
	shaped.ConferenceData = event.ConferenceData

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"event":   shaped,
	})
}

type createRequest struct {
	Subject  string  `json:"subject"`
	Title    string  `json:"title"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Duration float64 `json:"duration"`
}

// handleCreateEvent serves POST /api/events/create: composes the payload
// with the subject's professors as attendees and inserts it, allocating a
// Meet link.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	subject, ok := s.subjectParam(w, req.Subject)
	if !ok {
		return
	}
	if req.Date == "" || req.Time == "" {
		fail(w, http.StatusBadRequest, "date y time son requeridos")
		return
	}

	start, err := time.ParseInLocation("2006-01-02T15:04", req.Date+"T"+req.Time, bogota())
	if err != nil {
		fail(w, http.StatusBadRequest, "fecha u hora inválida")
		return
	}
	duration := req.Duration
	if duration <= 0 {
		duration = 1
	}
	end := start.Add(time.Duration(duration * float64(time.Hour)))

	title := req.Title
	if title == "" {
		title = "Clase de " + subject.DisplayName
	}
	description := classDescription(subject)

	gw, err := s.gateway(r.Context())
	if err != nil {
		failFromError(w, err)
		return
	}

	payload := s.composer.Compose(title, start, end, subject.Professors, description)
	created, err := gw.InsertEvent(r.Context(), subject.CalendarID, payload)
	if err != nil {
		failFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"eventId":  created.Id,
		"link":     created.HtmlLink,
		"meetLink": created.HangoutLink,
		"message":  "Evento creado exitosamente",
	})
}

func classDescription(subject subjects.Subject) string {
	return fmt.Sprintf(
		"<b>Clase de %s</b><br/><b>Configuración:</b><br/>- Grabación: Activada<br/>- Asistencia: Activada<br/>- Notas AI: Activadas (Español)<br/>- Tutores: %s",
		subject.DisplayName,
		strings.Join(subject.Professors, ", "),
	)
}

type editRequest struct {
	Subject     string  `json:"subject"`
	EventID     string  `json:"eventId"`
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
}

// handleEditEvent serves PATCH /api/events/edit: a sparse update that
// leaves absent fields untouched on the remote event.
func (s *Server) handleEditEvent(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	subject, ok := s.subjectParam(w, req.Subject)
	if !ok {
		return
	}
	if req.EventID == "" {
		fail(w, http.StatusBadRequest, "eventId es requerido")
		return
	}

	patch := calendar.EventPatch{
		Summary:     req.Summary,
		Description: req.Description,
	}
	if req.Start != nil {
		start, err := parseISO(*req.Start)
		if err != nil {
			fail(w, http.StatusBadRequest, "start inválido")
			return
		}
		patch.Start = &start
	}
	if req.End != nil {
		end, err := parseISO(*req.End)
		if err != nil {
			fail(w, http.StatusBadRequest, "end inválido")
			return
		}
		patch.End = &end
	}
	if patch.IsZero() {
		fail(w, http.StatusBadRequest, "nada que actualizar")
		return
	}

	gw, err := s.gateway(r.Context())
	if err != nil {
		failFromError(w, err)
		return
	}

	updated, err := gw.PatchSafe(r.Context(), subject.CalendarID, req.EventID, patch)
	if err != nil {
		failFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Evento actualizado correctamente. Meet y configuración intactos.",
		"event":   shapeEvent(updated),
	})
}

type instanceRequest struct {
	Subject       string  `json:"subject"`
	InstanceID    string  `json:"instanceId"`
	OriginalStart *string `json:"originalStart"`
	OriginalEnd   *string `json:"originalEnd"`
}

// handleCancelInstance serves DELETE /api/events/instance: the provider
// marks the recurring instance cancelled, keeping it restorable.
func (s *Server) handleCancelInstance(w http.ResponseWriter, r *http.Request) {
	var req instanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	subject, ok := s.subjectParam(w, req.Subject)
	if !ok {
		return
	}
	if req.InstanceID == "" {
		fail(w, http.StatusBadRequest, "instanceId es requerido")
		return
	}

	gw, err := s.gateway(r.Context())
	if err != nil {
		failFromError(w, err)
		return
	}

	if err := gw.DeleteEvent(r.Context(), subject.CalendarID, req.InstanceID); err != nil {
		failFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Instancia cancelada. Puede ser restaurada si es necesario.",
	})
}

// handleRestoreInstance serves PUT /api/events/instance: flips the
// cancelled instance back to confirmed, optionally restoring the original
// start and end. If the provider hard-deleted the instance, the patch
// comes back not-found and restore is reported as impossible.
func (s *Server) handleRestoreInstance(w http.ResponseWriter, r *http.Request) {
	var req instanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	subject, ok := s.subjectParam(w, req.Subject)
	if !ok {
		return
	}
	if req.InstanceID == "" {
		fail(w, http.StatusBadRequest, "instanceId es requerido")
		return
	}

	confirmed := "confirmed"
	patch := calendar.EventPatch{Status: &confirmed}
	if req.OriginalStart != nil {
		start, err := parseISO(*req.OriginalStart)
		if err != nil {
			fail(w, http.StatusBadRequest, "originalStart inválido")
			return
		}
		patch.Start = &start
	}
	if req.OriginalEnd != nil {
		end, err := parseISO(*req.OriginalEnd)
		if err != nil {
			fail(w, http.StatusBadRequest, "originalEnd inválido")
			return
		}
		patch.End = &end
	}

	gw, err := s.gateway(r.Context())
	if err != nil {
		failFromError(w, err)
		return
	}

	restored, err := gw.PatchSafe(r.Context(), subject.CalendarID, req.InstanceID, patch)
	if err != nil {
		if errors.Is(err, calendar.ErrEventNotFound) {
			fail(w, http.StatusNotFound, "La instancia ya no existe y no puede ser restaurada")
			return
		}
		failFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Instancia restaurada correctamente.",
		"event":   shapeEvent(restored),
	})
}
