// Package testutil provides shared test doubles for the booking agent core.
//
// All mocks in this package are designed for testing the engine and handlers
// in isolation without external services.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/handlers"
	"github.com/costcare-ai/agentcore/logging"
)

// =============================================================================
// MOCK LLM
// =============================================================================

// MockLLM implements handlers.LLM. Configure responses by prompt substring
// or use DefaultResponse.
type MockLLM struct {
	// Responses maps prompt substrings to responses. First match wins.
	Responses map[string]string

	// DefaultResponse is returned when no substring matches.
	DefaultResponse string

	// Error causes Invoke to return this error.
	Error error

	// InvokeFunc allows custom logic. If set, it replaces everything above.
	InvokeFunc func(ctx context.Context, prompt string) (string, error)

	// Calls records all prompts for assertion.
	Calls []string

	mu sync.Mutex
}

// NewMockLLM creates a MockLLM with a bland default response.
func NewMockLLM() *MockLLM {
	return &MockLLM{
		Responses:       make(map[string]string),
		DefaultResponse: "Happy to help!",
	}
}

// Invoke implements handlers.LLM.
func (m *MockLLM) Invoke(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	custom := m.InvokeFunc
	m.mu.Unlock()

	if custom != nil {
		return custom(ctx, prompt)
	}
	if m.Error != nil {
		return "", m.Error
	}
	for substr, response := range m.Responses {
		if substr != "" && strings.Contains(prompt, substr) {
			return response, nil
		}
	}
	return m.DefaultResponse, nil
}

// WithResponse adds a substring-matched response.
func (m *MockLLM) WithResponse(substr, response string) *MockLLM {
	m.Responses[substr] = response
	return m
}

// WithError configures the mock to fail.
func (m *MockLLM) WithError(err error) *MockLLM {
	m.Error = err
	return m
}

// CallCount returns the number of Invoke calls (thread-safe).
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// =============================================================================
// MOCK KNOWLEDGE BASE
// =============================================================================

// MockKnowledge implements handlers.KnowledgeBase with a fixed result.
type MockKnowledge struct {
	Result string
	Error  error

	// Queries records all searches for assertion.
	Queries []string

	mu sync.Mutex
}

// NewMockKnowledge creates a MockKnowledge with a canned context block.
func NewMockKnowledge() *MockKnowledge {
	return &MockKnowledge{Result: "CostCare is a healthcare cost management platform."}
}

// Search implements handlers.KnowledgeBase.
func (m *MockKnowledge) Search(ctx context.Context, query string, topK int) (string, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Error != nil {
		return "", m.Error
	}
	return m.Result, nil
}

// =============================================================================
// MOCK CALENDAR
// =============================================================================

// MockCalendar implements handlers.Calendar with canned availability.
type MockCalendar struct {
	// Windows is returned by CheckAvailability.
	Windows []handlers.Window

	// AvailabilityError causes CheckAvailability to fail.
	AvailabilityError error

	// BookError causes Book to fail.
	BookError error

	// Record is returned by a successful Book.
	Record *handlers.BookingRecord

	// Booked records all successful bookings.
	Booked []conversation.Slot

	mu sync.Mutex
}

// NewMockCalendar creates a MockCalendar with n half-hour windows starting
// at the given time.
func NewMockCalendar(start time.Time, n int) *MockCalendar {
	windows := make([]handlers.Window, 0, n)
	for i := 0; i < n; i++ {
		s := start.Add(time.Duration(i) * 30 * time.Minute)
		windows = append(windows, handlers.Window{Start: s, End: s.Add(30 * time.Minute)})
	}
	return &MockCalendar{
		Windows: windows,
		Record:  &handlers.BookingRecord{EventID: "evt_test", Link: "https://calendar.example/evt_test", Status: "confirmed"},
	}
}

// CheckAvailability implements handlers.Calendar.
func (m *MockCalendar) CheckAvailability(ctx context.Context, start, end time.Time) ([]handlers.Window, error) {
	if m.AvailabilityError != nil {
		return nil, m.AvailabilityError
	}
	return m.Windows, nil
}

// Book implements handlers.Calendar.
func (m *MockCalendar) Book(ctx context.Context, slot conversation.Slot, name, email string) (*handlers.BookingRecord, error) {
	if m.BookError != nil {
		return nil, m.BookError
	}
	m.mu.Lock()
	m.Booked = append(m.Booked, slot)
	m.mu.Unlock()
	return m.Record, nil
}

// =============================================================================
// MOCK LOGGER
// =============================================================================

// MockLogger implements logging.Logger and captures entries for assertion.
type MockLogger struct {
	Logs []LogEntry

	mu sync.Mutex
}

// LogEntry represents a captured log entry.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// NewMockLogger creates a MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{Logs: make([]LogEntry, 0)}
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) { m.log("debug", msg, keysAndValues...) }
func (m *MockLogger) Info(msg string, keysAndValues ...any)  { m.log("info", msg, keysAndValues...) }
func (m *MockLogger) Warn(msg string, keysAndValues ...any)  { m.log("warn", msg, keysAndValues...) }
func (m *MockLogger) Error(msg string, keysAndValues ...any) { m.log("error", msg, keysAndValues...) }

func (m *MockLogger) Bind(fields ...any) logging.Logger { return m }

func (m *MockLogger) log(level, msg string, keysAndValues ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := make(map[string]any)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	m.Logs = append(m.Logs, LogEntry{Level: level, Message: msg, Fields: fields})
}

// HasLog checks if a log message exists at the given level.
func (m *MockLogger) HasLog(level, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.Logs {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

// =============================================================================
// SERVICE AND STATE BUILDERS
// =============================================================================

// NewServices bundles fresh mocks with a fixed clock for deterministic slot
// resolution. Individual mocks can be reconfigured before use.
func NewServices(now time.Time) (*handlers.Services, *MockLLM, *MockKnowledge, *MockCalendar) {
	llm := NewMockLLM()
	kb := NewMockKnowledge()
	cal := NewMockCalendar(now.AddDate(0, 0, 1).Truncate(time.Hour), 7)
	svc := &handlers.Services{
		LLM:       llm,
		Knowledge: kb,
		Calendar:  cal,
		Prompts:   handlers.NewPrompts("", NewMockLogger()),
		Logger:    NewMockLogger(),
		Now:       func() time.Time { return now },
	}
	return svc, llm, kb, cal
}

// StateWithSlots builds a state mid-proposal: fields collected, n slots
// offered, awaiting selection.
func StateWithSlots(n int, start time.Time) *conversation.State {
	s := conversation.New()
	s.UserName = "Denis"
	s.UserEmail = "denis@example.com"
	s.PreferredDate = "tomorrow afternoon"
	s.Stage = conversation.StageConfirmation
	s.AppendUser("tomorrow afternoon works")
	s.AppendAssistant("Here are the available times.")
	for i := 0; i < n; i++ {
		st := start.Add(time.Duration(i) * 30 * time.Minute)
		s.AvailableSlots = append(s.AvailableSlots, conversation.Slot{
			Index:        i,
			Start:        st,
			End:          st.Add(30 * time.Minute),
			StartDisplay: st.Format("03:04 PM"),
			EndDisplay:   st.Add(30 * time.Minute).Format("03:04 PM"),
		})
	}
	return s
}
