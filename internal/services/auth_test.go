package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gepay-web/internal/models"
	"gepay-web/internal/services"
)

func newAuthenticator(api *fakeAPI) (*services.Authenticator, *services.MemorySessionStore) {
	store := services.NewMemorySessionStore(time.Hour)
	return services.NewAuthenticator(api, store), store
}

func TestAuthFlowSuccess(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{authResp: &models.AuthResponse{
		Success: true,
		User:    &models.User{ID: 42, TelegramID: 777, FirstName: "Ivan"},
	}}
	auth, store := newAuthenticator(api)

	flow := services.NewAuthFlow()
	if flow.State() != services.AuthIdle {
		t.Fatalf("new flow should be idle, got %s", flow.State())
	}
	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	user, err := auth.Handle(ctx, flow, "sid", services.AssertionReceived(&models.TelegramAuthData{ID: 777, Hash: "h"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if user.ID != 42 || flow.State() != services.AuthAuthenticated || flow.User() != user {
		t.Errorf("unexpected result: user=%+v state=%s", user, flow.State())
	}

	saved, _ := store.Load(ctx, "sid")
	if saved == nil || saved.ID != 42 {
		t.Errorf("session should hold the user, got %+v", saved)
	}

	if err := auth.Logout(ctx, "sid"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if user, _ := store.Load(ctx, "sid"); user != nil {
		t.Error("session should be empty after logout")
	}
}

func TestAuthFlowFailures(t *testing.T) {
	tests := []struct {
		name      string
		api       *fakeAPI
		event     services.WidgetEvent
		wantErr   error
		wantCalls int
	}{
		{
			name:      "widget error",
			api:       &fakeAPI{},
			event:     services.WidgetFailed(errors.New("popup closed")),
			wantErr:   services.ErrAuthFailed,
			wantCalls: 0,
		},
		{
			name:      "empty assertion",
			api:       &fakeAPI{},
			event:     services.AssertionReceived(&models.TelegramAuthData{}),
			wantErr:   services.ErrInvalidAssertion,
			wantCalls: 0,
		},
		{
			name:      "remote rejected",
			api:       &fakeAPI{authResp: &models.AuthResponse{Success: false, Error: "bad hash"}},
			event:     services.AssertionReceived(&models.TelegramAuthData{ID: 1}),
			wantErr:   services.ErrAuthFailed,
			wantCalls: 1,
		},
		{
			name:      "remote down",
			api:       &fakeAPI{authErr: errRemoteDown},
			event:     services.AssertionReceived(&models.TelegramAuthData{ID: 1}),
			wantErr:   errRemoteDown,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			auth, store := newAuthenticator(tt.api)

			flow := services.NewAuthFlow()
			flow.Begin()

			user, err := auth.Handle(ctx, flow, "sid", tt.event)
			if user != nil {
				t.Errorf("expected no user, got %+v", user)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if flow.State() != services.AuthFailed || flow.Err() == nil {
				t.Errorf("flow should be failed with a cause, got %s / %v", flow.State(), flow.Err())
			}
			if len(tt.api.authSeen) != tt.wantCalls {
				t.Errorf("expected %d auth calls, got %d", tt.wantCalls, len(tt.api.authSeen))
			}
			if saved, _ := store.Load(ctx, "sid"); saved != nil {
				t.Error("failed login must not create a session")
			}
		})
	}
}

func TestAuthFlowRejectsEventOutsideAwaiting(t *testing.T) {
	api := &fakeAPI{}
	auth, _ := newAuthenticator(api)

	flow := services.NewAuthFlow()
	_, err := auth.Handle(context.Background(), flow, "sid", services.AssertionReceived(&models.TelegramAuthData{ID: 1}))
	if !errors.Is(err, services.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if flow.State() != services.AuthIdle {
		t.Errorf("flow should stay idle, got %s", flow.State())
	}
	if len(api.authSeen) != 0 {
		t.Error("no remote call expected")
	}
}
