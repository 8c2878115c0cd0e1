// Package calendar wraps the Google Calendar API event operations behind
// a typed gateway. Every write re-asserts conferencing-data preservation
// (ConferenceDataVersion 1) and attendee notification (SendUpdates all),
// so editing an event never drops its Meet link.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultTimeZone is the display timezone of every class calendar.
const DefaultTimeZone = "America/Bogota"

// conferenceDataVersion 1 tells the API to honor conferenceData on writes,
// which both allocates Meet links on insert and preserves them on patch.
const conferenceDataVersion = 1

// sendUpdatesAll notifies every attendee of the change.
const sendUpdatesAll = "all"

// Client wraps the Google Calendar API service.
type Client struct {
	service *calendar.Service
}

// NewClient creates a new Google Calendar API client.
// Optionally accepts an endpoint URL for testing with mock servers.
func NewClient(ctx context.Context, httpClient *http.Client, endpoint ...string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if len(endpoint) > 0 && endpoint[0] != "" {
		opts = append(opts, option.WithEndpoint(endpoint[0]))
	}

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	return &Client{service: srv}, nil
}

// InsertEvent creates an event, requesting conferencing-link allocation
// and notifying all attendees. The returned event carries the allocated
// Meet link.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.service.Events.Insert(calendarID, event).
		ConferenceDataVersion(conferenceDataVersion).
		SendUpdates(sendUpdatesAll).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create event: %w", mapAPIError(err))
	}
	return created, nil
}

// ListEvents returns events whose start falls in [timeMin, timeMax),
// expanding recurring series into concrete instances, ordered by start
// time ascending.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, limit int64) ([]*calendar.Event, error) {
	call := c.service.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		Context(ctx)
	if limit > 0 {
		call = call.MaxResults(limit)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events: %w", mapAPIError(err))
	}
	return events.Items, nil
}

// GetEvent returns one event, or ErrEventNotFound.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	event, err := c.service.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get event: %w", mapAPIError(err))
	}
	return event, nil
}

// EventPatch is a sparse update: only non-nil fields are applied, and
// everything else on the remote event is left untouched.
type EventPatch struct {
	Summary     *string
	Description *string
	Start       *time.Time
	End         *time.Time
	Status      *string
}

// IsZero reports whether the patch carries no fields at all.
func (p EventPatch) IsZero() bool {
	return p.Summary == nil && p.Description == nil && p.Start == nil && p.End == nil && p.Status == nil
}

// PatchSafe applies only the fields present in the patch. Conferencing
// data is preserved and attendees are notified on every call, regardless
// of which fields change.
func (c *Client) PatchSafe(ctx context.Context, calendarID, eventID string, patch EventPatch) (*calendar.Event, error) {
	resource := &calendar.Event{}
	if patch.Summary != nil {
		resource.Summary = *patch.Summary
		if resource.Summary == "" {
			resource.ForceSendFields = append(resource.ForceSendFields, "Summary")
		}
	}
	if patch.Description != nil {
		resource.Description = *patch.Description
		if resource.Description == "" {
			resource.ForceSendFields = append(resource.ForceSendFields, "Description")
		}
	}
	if patch.Start != nil {
		resource.Start = DateTime(*patch.Start)
	}
	if patch.End != nil {
		resource.End = DateTime(*patch.End)
	}
	if patch.Status != nil {
		resource.Status = *patch.Status
	}

	updated, err := c.service.Events.Patch(calendarID, eventID, resource).
		ConferenceDataVersion(conferenceDataVersion).
		SendUpdates(sendUpdatesAll).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to patch event: %w", mapAPIError(err))
	}
	return updated, nil
}

// DeleteEvent removes the event and notifies attendees. For an instance
// of a recurring series the provider marks it cancelled rather than
// removing data, which is what makes restore possible.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.service.Events.Delete(calendarID, eventID).
		SendUpdates(sendUpdatesAll).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to delete event: %w", mapAPIError(err))
	}
	return nil
}

// ListInstances returns concrete occurrences of a recurring series,
// optionally windowed.
func (c *Client) ListInstances(ctx context.Context, calendarID, eventID string, timeMin, timeMax *time.Time, limit int64) ([]*calendar.Event, error) {
	call := c.service.Events.Instances(calendarID, eventID).Context(ctx)
	if timeMin != nil {
		call = call.TimeMin(timeMin.Format(time.RFC3339))
	}
	if timeMax != nil {
		call = call.TimeMax(timeMax.Format(time.RFC3339))
	}
	if limit > 0 {
		call = call.MaxResults(limit)
	}

	instances, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list event instances: %w", mapAPIError(err))
	}
	return instances.Items, nil
}

// DateTime wraps a time in the calendar's display timezone.
func DateTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: DefaultTimeZone,
	}
}
