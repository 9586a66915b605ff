package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gepay-web/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Endpoints{
		Auth:         server.URL + "/auth",
		Transactions: server.URL + "/transactions",
		Support:      server.URL + "/support",
	}, 5*time.Second)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Endpoints{}, 0)
	if client.httpClient.Timeout != 15*time.Second {
		t.Errorf("default timeout = %s, want 15s", client.httpClient.Timeout)
	}
}

func TestAuthenticate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}

		var body struct {
			TelegramData map[string]interface{} `json:"telegram_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.TelegramData["id"] != float64(777) || body.TelegramData["hash"] != "abc" {
			t.Errorf("unexpected telegram_data: %v", body.TelegramData)
		}

		w.Write([]byte(`{"success":true,"user":{"id":42,"telegram_id":777,"username":"gamer","balance":12.5}}`))
	})

	resp, err := client.Authenticate(context.Background(), &models.TelegramAuthData{ID: 777, Hash: "abc", AuthDate: 1700000000})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !resp.Success || resp.User == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.User.ID != 42 || resp.User.Balance != 12.5 {
		t.Errorf("unexpected user: %+v", resp.User)
	}
}

func TestListTransactions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/transactions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "42" {
			t.Errorf("user_id = %s, want 42", got)
		}
		w.Write([]byte(`{"transactions":[{"id":1,"type":"topup","amount":500,"status":"pending","description":"d","created_at":"2024-01-01T00:00:00"}]}`))
	})

	resp, err := client.ListTransactions(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].Status != models.TransactionStatusPending {
		t.Errorf("unexpected transactions: %+v", resp.Transactions)
	}
}

func TestListTransactionsMissingField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	resp, err := client.ListTransactions(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if resp.Transactions != nil {
		t.Errorf("expected nil transactions, got %v", resp.Transactions)
	}
}

func TestCreateTransactionBodyAndIdempotencyKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if key := r.Header.Get(IdempotencyKeyHeader); key != "tx_key" {
			t.Errorf("idempotency key = %q", key)
		}

		data, _ := io.ReadAll(r.Body)
		want := `{"user_id":42,"type":"topup","amount":1000,"steam_login":"player1"}`
		if string(data) != want {
			t.Errorf("body = %s, want %s", data, want)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"transaction":{"id":9,"type":"topup","amount":1000,"status":"pending","description":"x","created_at":"2024-01-01T00:00:00"}}`))
	})

	amount := 1000.0
	resp, err := client.CreateTransaction(context.Background(), &models.CreateTransactionRequest{
		UserID:     42,
		Type:       models.TransactionTypeTopUp,
		Amount:     &amount,
		SteamLogin: "player1",
	}, "tx_key")
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if !resp.Success || resp.Transaction == nil || resp.Transaction.ID != 9 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSupportMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if got := r.URL.Query().Get("user_id"); got != "5" {
				t.Errorf("user_id = %s", got)
			}
			w.Write([]byte(`{"messages":[{"id":1,"message":"hi","is_admin":false,"created_at":"2024-01-01T00:00:00"}]}`))
		case http.MethodPost:
			var body models.SendSupportMessageRequest
			json.NewDecoder(r.Body).Decode(&body)
			if body.UserID != 5 || body.Message != "help" {
				t.Errorf("unexpected body: %+v", body)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"success":true,"message":{"id":2,"message":"help","is_admin":false,"created_at":"2024-01-01T00:00:01"}}`))
		}
	})

	list, err := client.ListSupportMessages(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListSupportMessages failed: %v", err)
	}
	if len(list.Messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(list.Messages))
	}

	sent, err := client.SendSupportMessage(context.Background(), 5, "help")
	if err != nil {
		t.Fatalf("SendSupportMessage failed: %v", err)
	}
	if !sent.Success {
		t.Error("expected success")
	}
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"user_id and type are required"}`))
	})

	_, err := client.CreateTransaction(context.Background(), &models.CreateTransactionRequest{}, "")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Op != OpCreateTransaction {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "user_id and type are required") {
		t.Errorf("message not propagated: %v", apiErr)
	}
}

func TestServerErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListSupportMessages(context.Background(), 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "" {
		t.Fatalf("expected APIError without message, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Endpoints{Auth: url}, time.Second)
	if _, err := client.Authenticate(context.Background(), &models.TelegramAuthData{ID: 1}); err == nil {
		t.Error("expected error for unreachable remote")
	}
}

func TestCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.ListTransactions(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
