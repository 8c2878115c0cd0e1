package calendar

import (
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// Defaults is the static event configuration applied to every created
// class.
type Defaults struct {
	// Attendees are email addresses invited to every event, ahead of the
	// per-request attendees.
	Attendees []string
	// ReminderOverrides replace the calendar's default reminders when
	// non-empty.
	ReminderOverrides []*calendar.EventReminder
}

// Composer builds outbound event payloads from the static defaults plus
// per-request parameters.
type Composer struct {
	defaults Defaults
}

// NewComposer creates a composer with the given defaults.
func NewComposer(defaults Defaults) *Composer {
	return &Composer{defaults: defaults}
}

// Compose builds a complete event payload. Default and request attendees
// are concatenated as-is; duplicate emails are passed through. Guest
// permissions are fixed policy: guests may modify the event and see other
// guests, but may not invite others.
func (c *Composer) Compose(title string, start, end time.Time, attendees []string, description string) *calendar.Event {
	all := make([]*calendar.EventAttendee, 0, len(c.defaults.Attendees)+len(attendees))
	for _, email := range c.defaults.Attendees {
		all = append(all, &calendar.EventAttendee{Email: email})
	}
	for _, email := range attendees {
		all = append(all, &calendar.EventAttendee{Email: email})
	}

	reminders := &calendar.EventReminders{UseDefault: true}
	if len(c.defaults.ReminderOverrides) > 0 {
		reminders = &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       c.defaults.ReminderOverrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}

	return &calendar.Event{
		Summary:                 title,
		Description:             description,
		Start:                   DateTime(start),
		End:                     DateTime(end),
		Attendees:               all,
		GuestsCanModify:         true,
		GuestsCanInviteOthers:   googleapiBool(false),
		GuestsCanSeeOtherGuests: googleapiBool(true),
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
		Reminders: reminders,
	}
}

func googleapiBool(v bool) *bool { return &v }
