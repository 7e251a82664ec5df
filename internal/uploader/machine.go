package uploader

import (
	"errors"
	"sync"
	"time"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
)

type State string

const (
	StateIdle       State = "idle"
	StateChecking   State = "checking-existence"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Mode is the existence label shown on the upload action.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Status is a point-in-time view of the machine.
type Status struct {
	State     State     `json:"state"`
	Mode      Mode      `json:"mode,omitempty"`
	URL       string    `json:"url,omitempty"`
	PersonID  int64     `json:"person_id,omitempty"`
	CompanyID int64     `json:"company_id,omitempty"`
	Note      string    `json:"note,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusTopic is the event topic machine transitions are published on.
const StatusTopic = "status"

// Machine tracks the upload flow for the current profile:
// idle → checking-existence → ready(create|update) → submitting → success | failed,
// where failed falls straight back to ready with the mode it had before.
type Machine struct {
	mu      sync.Mutex
	status  Status
	publish func(Status)
	now     func() time.Time
}

// NewMachine starts idle. publish, if set, receives every transition.
func NewMachine(publish func(Status)) *Machine {
	m := &Machine{publish: publish, now: time.Now}
	m.status = Status{State: StateIdle, UpdatedAt: m.now()}
	return m
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// set must be called with mu held.
func (m *Machine) set(s Status) {
	s.UpdatedAt = m.now()
	m.status = s
	if m.publish != nil {
		m.publish(s)
	}
}

// Begin starts a new check for url from any state except submitting.
func (m *Machine) Begin(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status.State == StateSubmitting {
		return apperr.Validation("an upload is in progress")
	}
	m.set(Status{State: StateChecking, URL: url})
	return nil
}

// Ready records the existence outcome.
func (m *Machine) Ready(mode Mode, personID int64, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status.State != StateChecking {
		return apperr.Validation("ready requires checking-existence, state is " + string(m.status.State))
	}
	m.set(Status{State: StateReady, Mode: mode, URL: m.status.URL, PersonID: personID, Note: note})
	return nil
}

// Abort returns to idle after extraction failed.
func (m *Machine) Abort(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(Status{State: StateIdle, URL: m.status.URL, Error: errText(err), ErrorCode: apperr.CodeOf(err)})
}

// Reject notes a local validation failure without leaving ready.
func (m *Machine) Reject(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status
	s.Error = errText(err)
	s.ErrorCode = apperr.CodeOf(err)
	m.set(s)
}

// Submit enters submitting. Allowed from ready, and from success to re-send.
func (m *Machine) Submit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.status.State {
	case StateReady, StateSuccess:
	default:
		return apperr.Validation("nothing to upload, state is " + string(m.status.State))
	}
	s := m.status
	s.State = StateSubmitting
	s.Error, s.ErrorCode, s.Note = "", "", ""
	m.set(s)
	return nil
}

// Succeed records the CRM ids. The profile now exists, so the mode is update.
func (m *Machine) Succeed(personID, companyID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(Status{State: StateSuccess, Mode: ModeUpdate, URL: m.status.URL, PersonID: personID, CompanyID: companyID})
}

// Fail publishes failed and then ready, keeping the prior mode and ids.
func (m *Machine) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status
	s.State = StateFailed
	s.Error = errText(err)
	s.ErrorCode = apperr.CodeOf(err)
	m.set(s)
	s.State = StateReady
	m.set(s)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	var coded *apperr.CodedError
	if errors.As(err, &coded) {
		return coded.Message
	}
	return err.Error()
}
