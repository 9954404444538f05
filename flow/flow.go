package flow

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/repository"
	"github.com/t-hirai03/webmaka/types"
	"github.com/t-hirai03/webmaka/util"
)

const (
	BusySending  = "Sending..."
	BusyRetrying = "Retrying..."

	// RateLimitPhrase is part of every rate limit message shown on CONFIRM
	RateLimitPhrase = "submission limit"

	RateLimitMessage = "You have reached the submission limit. Please wait a minute and try again."
	GenericFailure   = "Your inquiry could not be sent. Please try again later."
	InFlightMessage  = "Your inquiry is already being sent. Please wait."
)

// Submitter delivers a confirmed form to the contact endpoint
type Submitter interface {
	SubmitForm(ctx context.Context, clientID string, form *types.ContactFormData) (types.ContactOutcome, error)
}

type session struct {
	state    State
	inFlight bool
	failures int
	lastSeen time.Time
}

// Flow drives the INPUT -> CONFIRM -> THANKS screens of one browser session
// at a time. Snapshots live in the store; the current screen, the in-flight
// flag and the failure count live in process memory.
type Flow struct {
	store     repository.SnapshotStore
	submitter Submitter
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func New(store repository.SnapshotStore, submitter Submitter) *Flow {
	return &Flow{
		store:     store,
		submitter: submitter,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// SetClock replaces time.Now (tests)
func (f *Flow) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// InputView is the INPUT screen model
type InputView struct {
	Form   types.ContactFormData
	Errors types.FormErrors
	Error  string
}

// ConfirmView is the CONFIRM screen model
type ConfirmView struct {
	Form         types.ContactFormData
	InquiryLabel string
	// BusyLabel is shown on the submit control while a submission is running
	BusyLabel string
	Error     string
}

// SubmitResult is the outcome of a CONFIRM submit
type SubmitResult struct {
	State State
	// HTTP status of the endpoint call, 0 when it was not reached
	Status  int
	Message string
}

// must hold f.mu
func (f *Flow) sessionLocked(sessionID string) *session {
	s, ok := f.sessions[sessionID]
	if !ok {
		s = &session{}
		f.sessions[sessionID] = s
	}
	s.lastSeen = f.now()
	return s
}

// moveTo applies a transition from the state the session is known to be in.
// Sessions this process has not seen yet (e.g. after a restart with a shared
// store) start at from.
func (f *Flow) moveTo(sessionID string, from State, to State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessionLocked(sessionID)
	if s.state == 0 {
		s.state = from
	}
	next, err := Transition(s.state, to)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// open checks a screen entry against the entry table. Unknown sessions are on Input.
func (f *Flow) open(sessionID string, to State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessionLocked(sessionID)
	from := s.state
	if from == 0 {
		from = Input
	}
	next, err := Enter(from, to)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Current returns the screen the session is on (Input for unknown sessions)
func (f *Flow) Current(sessionID string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok && s.state != 0 {
		return s.state
	}
	return Input
}

func (f *Flow) BusyLabel(sessionID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok && s.failures > 0 {
		return BusyRetrying
	}
	return BusySending
}

// EnterInput opens INPUT, prefilled from the snapshot when there is one
func (f *Flow) EnterInput(ctx context.Context, sessionID string) *InputView {
	if err := f.open(sessionID, Input); err != nil {
		level.Warn(global.Logger).Log("msg", "input page entry rejected", "error", err)
	}
	view := &InputView{}
	snapshot, err := f.store.Get(ctx, sessionID)
	if err == nil {
		view.Form = *snapshot
	} else if !errors.Is(err, types.ErrNotFound) {
		level.Error(global.Logger).Log("msg", "failed to load snapshot", "error", err)
	}
	return view
}

// SubmitInput validates the form. A valid form is stored together with the
// page URL it was submitted from and the session moves to CONFIRM. A POST of
// the INPUT form means the user is on INPUT, whatever screen was recorded last
// (browser back, a second tab), so the session is first moved back to Input.
func (f *Flow) SubmitInput(ctx context.Context, sessionID string, form types.ContactFormData, pageURL string) (State, *InputView, error) {
	result := util.ValidateContactForm(form)
	if !result.Valid {
		return Input, &InputView{Form: form, Errors: result.Errors}, nil
	}
	if err := f.checkInputSubmit(sessionID); err != nil {
		view := &InputView{Form: form, Error: GenericFailure}
		if errors.Is(err, types.ErrSubmissionInFlight) {
			view.Error = InFlightMessage
		}
		return Input, view, err
	}

	form.SourceURL = pageURL
	if err := f.store.Save(ctx, sessionID, &form); err != nil {
		level.Error(global.Logger).Log("msg", "failed to save snapshot", "error", err)
		return Input, &InputView{Form: form, Error: GenericFailure}, err
	}

	f.mu.Lock()
	f.sessionLocked(sessionID).state = Confirm
	f.mu.Unlock()
	return Confirm, nil, nil
}

// checkInputSubmit runs the Input -> Confirm move (via Input when the session
// is elsewhere) without applying it. The snapshot can't change under a
// running submission.
func (f *Flow) checkInputSubmit(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessionLocked(sessionID)
	if s.inFlight {
		return types.ErrSubmissionInFlight
	}
	from := s.state
	if from == 0 {
		from = Input
	}
	if from != Input {
		var err error
		if from, err = Transition(from, Input); err != nil {
			return err
		}
	}
	_, err := Transition(from, Confirm)
	return err
}

// EnterConfirm opens CONFIRM. Without a snapshot it returns ErrMissingSnapshot
// and the caller sends the user back to INPUT. A finished inquiry can't be
// reopened (ErrIllegalTransition), so the stored snapshot is not sent twice.
func (f *Flow) EnterConfirm(ctx context.Context, sessionID string) (*ConfirmView, error) {
	snapshot, err := f.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrMissingSnapshot
		}
		return nil, err
	}
	if err := f.open(sessionID, Confirm); err != nil {
		return nil, err
	}
	return &ConfirmView{
		Form:         *snapshot,
		InquiryLabel: util.GetInquiryTypeLabel(snapshot.InquiryType),
		BusyLabel:    f.BusyLabel(sessionID),
	}, nil
}

// EnterThanks opens THANKS, which only a successful submit reaches
func (f *Flow) EnterThanks(sessionID string) error {
	return f.open(sessionID, Thanks)
}

// Back returns from CONFIRM to INPUT. The snapshot is kept for prefilling.
func (f *Flow) Back(ctx context.Context, sessionID string) (State, error) {
	if err := f.moveTo(sessionID, Confirm, Input); err != nil {
		return f.Current(sessionID), err
	}
	return Input, nil
}

func (f *Flow) beginSubmit(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessionLocked(sessionID)
	if s.state == 0 {
		s.state = Confirm
	}
	if s.inFlight {
		return types.ErrSubmissionInFlight
	}
	if _, err := Transition(s.state, Thanks); err != nil {
		return err
	}
	s.inFlight = true
	return nil
}

func (f *Flow) endSubmit(sessionID string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessionLocked(sessionID)
	s.inFlight = false
	if ok {
		s.state = Thanks
		s.failures = 0
		return
	}
	s.failures++
}

// Submit sends the stored snapshot. Only one submission per session may run
// at a time; a concurrent one fails with ErrSubmissionInFlight. On failure the
// session stays on CONFIRM with a message for the user.
func (f *Flow) Submit(ctx context.Context, sessionID string, clientID string) (*SubmitResult, error) {
	snapshot, err := f.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrMissingSnapshot
		}
		return nil, err
	}
	if err := f.beginSubmit(sessionID); err != nil {
		return nil, err
	}

	outcome, err := f.submitter.SubmitForm(ctx, clientID, snapshot)
	if err != nil {
		level.Error(global.Logger).Log("msg", "contact endpoint call failed", "error", err)
		f.endSubmit(sessionID, false)
		return &SubmitResult{State: Confirm, Message: GenericFailure}, nil
	}
	if outcome.Status == http.StatusOK && outcome.Response.Success {
		f.endSubmit(sessionID, true)
		return &SubmitResult{State: Thanks, Status: outcome.Status}, nil
	}

	f.endSubmit(sessionID, false)
	return &SubmitResult{State: Confirm, Status: outcome.Status, Message: FailureMessage(outcome)}, nil
}

// FailureMessage is the text shown on CONFIRM for a failed endpoint call
func FailureMessage(outcome types.ContactOutcome) string {
	if outcome.Status == http.StatusTooManyRequests {
		return RateLimitMessage
	}
	if outcome.Response.Error != "" {
		return outcome.Response.Error
	}
	return GenericFailure
}

// Sweep forgets sessions idle for longer than maxIdle and returns how many
func (f *Flow) Sweep(maxIdle time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := f.now().Add(-maxIdle)
	removed := 0
	for id, s := range f.sessions {
		if !s.inFlight && s.lastSeen.Before(cutoff) {
			delete(f.sessions, id)
			removed++
		}
	}
	return removed
}
