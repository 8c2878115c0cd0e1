// Package googlecaltest provides a mock Google Calendar API server for
// testing, covering the Events endpoints this application uses without
// authentication or network access.
//
// # Supported Operations
//
//   - Insert Event: POST /calendars/{calendarId}/events (allocates a Meet
//     link when conferenceDataVersion=1 and a create request is present)
//   - List Events: GET /calendars/{calendarId}/events (pagination, time
//     window on start, sorting, showDeleted)
//   - Get Event: GET /calendars/{calendarId}/events/{eventId}
//   - Update Event: PUT replaces; PATCH merges only the provided fields,
//     matching the real API's partial-update semantics
//   - Delete Event: DELETE /calendars/{calendarId}/events/{eventId}
//     (recurring instances are cancelled in place, standalone events are
//     removed)
//   - List Instances: GET /calendars/{calendarId}/events/{eventId}/instances
//
// # Basic Usage
//
//	server := googlecaltest.NewServer()
//	defer server.Close()
//
//	svc, err := calendar.NewService(ctx,
//	    option.WithHTTPClient(&http.Client{}),
//	    option.WithEndpoint(server.URL))
//
// # Test Helpers
//
//	// Pre-populate events for testing
//	server.AddEvent("primary", &calendar.Event{Id: "event1", Summary: "Clase"})
//
//	// Assertions
//	events := server.GetEvents("primary")
//	event := server.GetEvent("primary", "event1")
//	writes := server.WriteCalls() // recorded conferenceDataVersion/sendUpdates
//	n := server.RequestCount()
//
//	// Clear all data between tests
//	server.Reset()
package googlecaltest
