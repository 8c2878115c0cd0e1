// Package googlecaltest provides a mock Google Calendar API server for
// testing. It implements the subset of the Google Calendar API v3 Events
// endpoints this application depends on, including merge-semantics PATCH
// and recurring-instance cancellation.
package googlecaltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/calendar/v3"
)

// WriteCall records the provider-facing flags of one mutating request, so
// tests can assert that every write preserves conferencing data and fans
// out notifications.
type WriteCall struct {
	Method                string
	CalendarID            string
	EventID               string
	ConferenceDataVersion string
	SendUpdates           string
}

// Server is a mock Google Calendar API server for testing.
type Server struct {
	*httptest.Server
	mu       sync.RWMutex
	events   map[string]map[string]*calendar.Event // calendarID -> eventID -> event
	nextID   int
	requests int
	writes   []WriteCall
}

// NewServer creates a new mock Google Calendar API server.
func NewServer() *Server {
	s := &Server{
		events: make(map[string]map[string]*calendar.Event),
		nextID: 1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.Server = httptest.NewServer(mux)
	return s
}

// handleRequest routes all requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	if !strings.Contains(r.URL.Path, "/calendars/") || !strings.Contains(r.URL.Path, "/events") {
		http.Error(w, "unsupported endpoint", http.StatusNotFound)
		return
	}
	s.handleCalendars(w, r)
}

// handleCalendars routes calendar-related requests.
func (s *Server) handleCalendars(w http.ResponseWriter, r *http.Request) {
	// Parse URL: /calendar/v3/calendars/{calendarId}/events[/{eventId}[/instances]]
	path := r.URL.Path

	idx := strings.Index(path, "/calendars/")
	if idx == -1 {
		http.Error(w, "invalid path: missing /calendars/", http.StatusBadRequest)
		return
	}

	path = path[idx+len("/calendars/"):]
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) < 2 || parts[1] != "events" {
		http.Error(w, fmt.Sprintf("unsupported resource path %v", parts), http.StatusNotImplemented)
		return
	}

	calendarID := parts[0]

	switch {
	case len(parts) == 2:
		// /calendars/{calendarId}/events
		switch r.Method {
		case http.MethodGet:
			s.listEvents(w, r, calendarID)
		case http.MethodPost:
			s.insertEvent(w, r, calendarID)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 3:
		// /calendars/{calendarId}/events/{eventId}
		eventID := parts[2]
		switch r.Method {
		case http.MethodGet:
			s.getEvent(w, calendarID, eventID)
		case http.MethodPut:
			s.replaceEvent(w, r, calendarID, eventID)
		case http.MethodPatch:
			s.patchEvent(w, r, calendarID, eventID)
		case http.MethodDelete:
			s.deleteEvent(w, r, calendarID, eventID)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 4 && parts[3] == "instances":
		// /calendars/{calendarId}/events/{eventId}/instances
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.listInstances(w, r, calendarID, parts[2])
	default:
		http.Error(w, "invalid path", http.StatusBadRequest)
	}
}

// recordWrite captures the flags of a mutating request. Callers must hold
// the write lock.
func (s *Server) recordWrite(r *http.Request, calendarID, eventID string) {
	s.writes = append(s.writes, WriteCall{
		Method:                r.Method,
		CalendarID:            calendarID,
		EventID:               eventID,
		ConferenceDataVersion: r.URL.Query().Get("conferenceDataVersion"),
		SendUpdates:           r.URL.Query().Get("sendUpdates"),
	})
}

// insertEvent handles POST /calendars/{calendarId}/events
func (s *Server) insertEvent(w http.ResponseWriter, r *http.Request, calendarID string) {
	var event calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordWrite(r, calendarID, "")

	event.Id = fmt.Sprintf("event%d", s.nextID)
	s.nextID++

	event.Status = "confirmed"
	event.Created = time.Now().Format(time.RFC3339)
	event.Updated = event.Created
	event.HtmlLink = fmt.Sprintf("https://calendar.google.com/event?eid=%s", event.Id)

	// A conference create request with version 1 allocates a Meet link.
	if r.URL.Query().Get("conferenceDataVersion") == "1" && event.ConferenceData != nil && event.ConferenceData.CreateRequest != nil {
		event.HangoutLink = fmt.Sprintf("https://meet.google.com/%s", event.Id)
		event.ConferenceData = &calendar.ConferenceData{
			ConferenceId: event.Id,
			EntryPoints: []*calendar.EntryPoint{
				{EntryPointType: "video", Uri: event.HangoutLink},
			},
		}
	}

	if s.events[calendarID] == nil {
		s.events[calendarID] = make(map[string]*calendar.Event)
	}
	s.events[calendarID][event.Id] = &event

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

func eventStartKey(evt *calendar.Event) string {
	if evt.Start == nil {
		return ""
	}
	if evt.Start.DateTime != "" {
		return evt.Start.DateTime
	}
	return evt.Start.Date
}

// listEvents handles GET /calendars/{calendarId}/events
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, calendarID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := r.URL.Query()
	timeMin := query.Get("timeMin")
	timeMax := query.Get("timeMax")
	maxResults := query.Get("maxResults")
	pageToken := query.Get("pageToken")
	singleEvents := query.Get("singleEvents")
	orderBy := query.Get("orderBy")
	showDeleted := query.Get("showDeleted") == "true"

	var events []*calendar.Event
	for _, evt := range s.events[calendarID] {
		if evt.Status == "cancelled" && !showDeleted {
			continue
		}
		start := eventStartKey(evt)
		// Half-open window on start time.
		if timeMin != "" && start != "" && start < timeMin {
			continue
		}
		if timeMax != "" && start != "" && start >= timeMax {
			continue
		}
		events = append(events, evt)
	}

	if orderBy == "startTime" && singleEvents == "true" {
		sort.Slice(events, func(i, j int) bool {
			return eventStartKey(events[i]) < eventStartKey(events[j])
		})
	}

	startIdx := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "%d", &startIdx)
	}

	maxRes := len(events)
	if maxResults != "" {
		fmt.Sscanf(maxResults, "%d", &maxRes)
	}

	endIdx := startIdx + maxRes
	if endIdx > len(events) {
		endIdx = len(events)
	}

	resp := &calendar.Events{
		Kind:    "calendar#events",
		Summary: calendarID,
		Items:   events[startIdx:endIdx],
	}
	if endIdx < len(events) {
		resp.NextPageToken = fmt.Sprintf("%d", endIdx)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// listInstances handles GET /calendars/{calendarId}/events/{eventId}/instances
func (s *Server) listInstances(w http.ResponseWriter, r *http.Request, calendarID, eventID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lookupLocked(calendarID, eventID) == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	timeMin := query.Get("timeMin")
	timeMax := query.Get("timeMax")
	maxResults := query.Get("maxResults")

	// Instances are other stored events whose RecurringEventId points at
	// the series. Cancelled instances are included, matching the real
	// instances endpoint.
	var instances []*calendar.Event
	for _, evt := range s.events[calendarID] {
		if evt.RecurringEventId != eventID {
			continue
		}
		start := eventStartKey(evt)
		if timeMin != "" && start != "" && start < timeMin {
			continue
		}
		if timeMax != "" && start != "" && start >= timeMax {
			continue
		}
		instances = append(instances, evt)
	}

	sort.Slice(instances, func(i, j int) bool {
		return eventStartKey(instances[i]) < eventStartKey(instances[j])
	})

	if maxResults != "" {
		maxRes := len(instances)
		fmt.Sscanf(maxResults, "%d", &maxRes)
		if maxRes < len(instances) {
			instances = instances[:maxRes]
		}
	}

	resp := &calendar.Events{
		Kind:  "calendar#events",
		Items: instances,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// getEvent handles GET /calendars/{calendarId}/events/{eventId}
func (s *Server) getEvent(w http.ResponseWriter, calendarID, eventID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event := s.lookupLocked(calendarID, eventID)
	if event == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// replaceEvent handles PUT /calendars/{calendarId}/events/{eventId}
func (s *Server) replaceEvent(w http.ResponseWriter, r *http.Request, calendarID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.lookupLocked(calendarID, eventID)
	if existing == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	var updates calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	s.recordWrite(r, calendarID, eventID)

	updates.Id = eventID
	updates.Created = existing.Created
	updates.Updated = time.Now().Format(time.RFC3339)
	updates.HtmlLink = existing.HtmlLink

	s.events[calendarID][eventID] = &updates

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updates)
}

// patchEvent handles PATCH /calendars/{calendarId}/events/{eventId} with
// merge semantics: only the keys present in the request body overwrite
// the stored event. This mirrors the real API's partial-update behavior
// that the application's safe patch depends on.
func (s *Server) patchEvent(w http.ResponseWriter, r *http.Request, calendarID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.lookupLocked(calendarID, eventID)
	if existing == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	s.recordWrite(r, calendarID, eventID)

	// Merge by overlaying the provided keys on the stored event's JSON.
	merged := make(map[string]json.RawMessage)
	existingJSON, err := json.Marshal(existing)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.Unmarshal(existingJSON, &merged); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for key, raw := range body {
		merged[key] = raw
	}

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var updated calendar.Event
	if err := json.Unmarshal(mergedJSON, &updated); err != nil {
		http.Error(w, fmt.Sprintf("invalid merged event: %v", err), http.StatusBadRequest)
		return
	}

	updated.Id = eventID
	updated.Created = existing.Created
	updated.Updated = time.Now().Format(time.RFC3339)
	updated.HtmlLink = existing.HtmlLink

	s.events[calendarID][eventID] = &updated

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// deleteEvent handles DELETE /calendars/{calendarId}/events/{eventId}.
// Instances of a recurring series are cancelled in place; standalone
// events are removed.
func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request, calendarID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.lookupLocked(calendarID, eventID)
	if existing == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	s.recordWrite(r, calendarID, eventID)

	if existing.RecurringEventId != "" {
		existing.Status = "cancelled"
		existing.Updated = time.Now().Format(time.RFC3339)
	} else {
		delete(s.events[calendarID], eventID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupLocked(calendarID, eventID string) *calendar.Event {
	if s.events[calendarID] == nil {
		return nil
	}
	return s.events[calendarID][eventID]
}

// Reset clears all events and recorded calls from the server.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]map[string]*calendar.Event)
	s.nextID = 1
	s.requests = 0
	s.writes = nil
}

// RequestCount returns the number of requests the server has received.
func (s *Server) RequestCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

// WriteCalls returns the recorded mutating requests, in order.
func (s *Server) WriteCalls() []WriteCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WriteCall, len(s.writes))
	copy(out, s.writes)
	return out
}

// GetEvents returns all events for a calendar (for test assertions).
func (s *Server) GetEvents(calendarID string) []*calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*calendar.Event
	for _, evt := range s.events[calendarID] {
		events = append(events, evt)
	}
	return events
}

// GetEvent returns one stored event or nil (for test assertions).
func (s *Server) GetEvent(calendarID, eventID string) *calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(calendarID, eventID)
}

// AddEvent adds a pre-configured event to the server (for test setup).
func (s *Server) AddEvent(calendarID string, event *calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Id == "" {
		event.Id = fmt.Sprintf("event%d", s.nextID)
		s.nextID++
	}
	if event.Status == "" {
		event.Status = "confirmed"
	}

	if s.events[calendarID] == nil {
		s.events[calendarID] = make(map[string]*calendar.Event)
	}
	s.events[calendarID][event.Id] = event
}
