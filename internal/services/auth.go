package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"gepay-web/internal/models"
)

type AuthAPI interface {
	Authenticate(ctx context.Context, assertion *models.TelegramAuthData) (*models.AuthResponse, error)
}

type AuthState string

const (
	AuthIdle              AuthState = "idle"
	AuthAwaitingAssertion AuthState = "awaiting_assertion"
	AuthExchanging        AuthState = "exchanging"
	AuthAuthenticated     AuthState = "authenticated"
	AuthFailed            AuthState = "failed"
)

var authTransitions = map[AuthState][]AuthState{
	AuthIdle:              {AuthAwaitingAssertion},
	AuthAwaitingAssertion: {AuthExchanging, AuthFailed},
	AuthExchanging:        {AuthAuthenticated, AuthFailed},
}

// WidgetEvent is the single terminal event emitted by the login widget:
// either an assertion or the reason the widget failed.
type WidgetEvent struct {
	Assertion *models.TelegramAuthData
	Err       error
}

func AssertionReceived(assertion *models.TelegramAuthData) WidgetEvent {
	return WidgetEvent{Assertion: assertion}
}

func WidgetFailed(err error) WidgetEvent {
	return WidgetEvent{Err: err}
}

// AuthFlow tracks one login attempt.
type AuthFlow struct {
	state AuthState
	user  *models.User
	err   error
}

func NewAuthFlow() *AuthFlow {
	return &AuthFlow{state: AuthIdle}
}

func (f *AuthFlow) State() AuthState   { return f.state }
func (f *AuthFlow) User() *models.User { return f.user }
func (f *AuthFlow) Err() error         { return f.err }

// Begin moves the flow to awaiting the widget's assertion.
func (f *AuthFlow) Begin() error {
	return f.transition(AuthAwaitingAssertion)
}

func (f *AuthFlow) transition(to AuthState) error {
	for _, allowed := range authTransitions[f.state] {
		if allowed == to {
			f.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.state, to)
}

func (f *AuthFlow) fail(err error) error {
	f.err = err
	if terr := f.transition(AuthFailed); terr != nil {
		return terr
	}
	return err
}

// Authenticator exchanges widget assertions for an application session.
type Authenticator struct {
	api   AuthAPI
	store SessionStore
}

func NewAuthenticator(api AuthAPI, store SessionStore) *Authenticator {
	return &Authenticator{api: api, store: store}
}

// Handle consumes the widget event for a flow awaiting an assertion. On
// success the user is persisted under sessionID; every failure leaves the
// flow in the failed state with the cause available from Err.
func (a *Authenticator) Handle(ctx context.Context, flow *AuthFlow, sessionID string, event WidgetEvent) (*models.User, error) {
	if flow.State() != AuthAwaitingAssertion {
		return nil, fmt.Errorf("%w: cannot handle widget event in state %s", ErrInvalidTransition, flow.State())
	}

	if event.Err != nil {
		return nil, flow.fail(fmt.Errorf("%w: %w", ErrAuthFailed, event.Err))
	}
	if event.Assertion == nil || event.Assertion.ID == 0 {
		return nil, flow.fail(fmt.Errorf("%w: empty assertion", ErrInvalidAssertion))
	}

	if err := flow.transition(AuthExchanging); err != nil {
		return nil, err
	}

	resp, err := a.api.Authenticate(ctx, event.Assertion)
	if err != nil {
		return nil, flow.fail(fmt.Errorf("%w: %w", ErrAuthFailed, err))
	}
	if !resp.Success || resp.User == nil {
		return nil, flow.fail(fmt.Errorf("%w: remote rejected assertion: %s", ErrAuthFailed, resp.Error))
	}

	if err := a.store.Save(ctx, sessionID, resp.User); err != nil {
		return nil, flow.fail(fmt.Errorf("%w: %w", ErrAuthFailed, err))
	}

	flow.user = resp.User
	if err := flow.transition(AuthAuthenticated); err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", resp.User.ID).
		Int64("telegram_id", resp.User.TelegramID).
		Msg("User authenticated")

	return resp.User, nil
}

// Logout destroys the session. Loading it afterwards returns no user.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) error {
	if err := a.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
