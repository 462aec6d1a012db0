// Package calendar provides the Google Calendar client behind the engine's
// Calendar interface: freebusy lookup turned into a 30-minute free-slot grid,
// and event creation for confirmed bookings.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/handlers"
	"github.com/costcare-ai/agentcore/coreengine/observability"
	"github.com/costcare-ai/agentcore/logging"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const slotDuration = 30 * time.Minute

// Options configures the Google Calendar client.
type Options struct {
	CredentialsFile string
	CalendarID      string
	Timezone        string // IANA name, e.g. "Europe/Kyiv"
}

// Google implements handlers.Calendar against the Calendar v3 API.
type Google struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
	location   *time.Location
	logger     logging.Logger
}

// New creates a Google Calendar client using a service-account credentials
// file.
func New(ctx context.Context, opts Options, logger logging.Logger) (*Google, error) {
	if opts.CalendarID == "" {
		return nil, fmt.Errorf("calendar: missing calendar ID")
	}
	if opts.Timezone == "" {
		opts.Timezone = "Europe/Kyiv"
	}
	location, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar: load timezone %q: %w", opts.Timezone, err)
	}

	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(opts.CredentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}

	return &Google{
		svc:        svc,
		calendarID: opts.CalendarID,
		timezone:   opts.Timezone,
		location:   location,
		logger:     logger,
	}, nil
}

// Location returns the calendar's timezone, used to anchor slot resolution.
func (g *Google) Location() *time.Location { return g.location }

// CheckAvailability implements handlers.Calendar: queries busy periods within
// [start, end) and returns the free 30-minute windows between them.
func (g *Google) CheckAvailability(ctx context.Context, start, end time.Time) ([]handlers.Window, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin:  start.Format(time.RFC3339),
		TimeMax:  end.Format(time.RFC3339),
		TimeZone: g.timezone,
		Items:    []*gcal.FreeBusyRequestItem{{Id: g.calendarID}},
	}

	resp, err := g.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		observability.RecordCalendarCall("freebusy", "error")
		return nil, fmt.Errorf("calendar: freebusy query: %w", err)
	}
	observability.RecordCalendarCall("freebusy", "success")

	busy, err := g.busyPeriods(resp)
	if err != nil {
		return nil, err
	}

	windows := FreeWindows(start, end, busy, slotDuration)
	g.logger.Debug("calendar_availability",
		"busy_periods", len(busy), "free_windows", len(windows))
	return windows, nil
}

// Book implements handlers.Calendar: inserts the event and invites the user.
func (g *Google) Book(ctx context.Context, slot conversation.Slot, name, email string) (*handlers.BookingRecord, error) {
	event := &gcal.Event{
		Summary:     fmt.Sprintf("CostCare demo with %s", name),
		Description: fmt.Sprintf("Intro call booked via the CostCare assistant.\nAttendee: %s <%s>", name, email),
		Start: &gcal.EventDateTime{
			DateTime: slot.Start.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: slot.End.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		Attendees: []*gcal.EventAttendee{{Email: email, DisplayName: name}},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).
		SendUpdates("all").Context(ctx).Do()
	if err != nil {
		observability.RecordCalendarCall("insert", "error")
		return nil, fmt.Errorf("calendar: insert event: %w", err)
	}
	observability.RecordCalendarCall("insert", "success")

	g.logger.Info("calendar_event_created", "event_id", created.Id, "status", created.Status)
	return &handlers.BookingRecord{
		EventID: created.Id,
		Link:    created.HtmlLink,
		Status:  created.Status,
	}, nil
}

// busyPeriods parses the freebusy response for the configured calendar.
func (g *Google) busyPeriods(resp *gcal.FreeBusyResponse) ([]Period, error) {
	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar: freebusy response missing calendar %q", g.calendarID)
	}

	periods := make([]Period, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("calendar: parse busy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("calendar: parse busy end %q: %w", p.End, err)
		}
		periods = append(periods, Period{Start: start, End: end})
	}
	return periods, nil
}
