package uploader

import (
	"errors"
	"testing"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
)

func TestMachineHappyPath(t *testing.T) {
	var seen []State
	m := NewMachine(func(s Status) { seen = append(seen, s.State) })

	if err := m.Begin("https://www.linkedin.com/in/ada"); err != nil {
		t.Fatalf("Begin() = %v", err)
	}
	if err := m.Ready(ModeCreate, 0, ""); err != nil {
		t.Fatalf("Ready() = %v", err)
	}
	if err := m.Submit(); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	m.Succeed(12, 3)

	st := m.Status()
	if st.State != StateSuccess || st.Mode != ModeUpdate || st.PersonID != 12 || st.CompanyID != 3 {
		t.Fatalf("Status() = %+v", st)
	}
	want := []State{StateChecking, StateReady, StateSubmitting, StateSuccess}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v; want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions = %v; want %v", seen, want)
		}
	}
}

func TestMachineFailReturnsToReadyWithSameMode(t *testing.T) {
	for _, mode := range []Mode{ModeCreate, ModeUpdate} {
		m := NewMachine(nil)
		_ = m.Begin("u")
		_ = m.Ready(mode, 7, "")
		_ = m.Submit()
		m.Fail(apperr.New(apperr.CodeConnection, "connection error", errors.New("dial tcp")))

		st := m.Status()
		if st.State != StateReady || st.Mode != mode || st.PersonID != 7 {
			t.Fatalf("after Fail(%s) Status() = %+v", mode, st)
		}
		if st.ErrorCode != apperr.CodeConnection || st.Error != "connection error" {
			t.Fatalf("error fields = %q %q", st.ErrorCode, st.Error)
		}
	}
}

func TestMachineRejectsOutOfOrderTransitions(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Submit(); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("Submit() from idle = %v; want VALIDATION", err)
	}
	if err := m.Ready(ModeCreate, 0, ""); err == nil {
		t.Fatalf("Ready() from idle = nil; want error")
	}
	_ = m.Begin("u")
	_ = m.Ready(ModeCreate, 0, "")
	_ = m.Submit()
	if err := m.Begin("v"); err == nil {
		t.Fatalf("Begin() while submitting = nil; want error")
	}
}

func TestMachineAbortAndReject(t *testing.T) {
	m := NewMachine(nil)
	_ = m.Begin("u")
	m.Abort(apperr.New(apperr.CodeScrapingFailed, "scraping failed", nil))
	if st := m.Status(); st.State != StateIdle || st.ErrorCode != apperr.CodeScrapingFailed {
		t.Fatalf("after Abort Status() = %+v", st)
	}

	_ = m.Begin("u")
	_ = m.Ready(ModeUpdate, 0, "")
	m.Reject(errors.New("plain"))
	if st := m.Status(); st.State != StateReady || st.Mode != ModeUpdate || st.Error != "plain" {
		t.Fatalf("after Reject Status() = %+v", st)
	}
}
