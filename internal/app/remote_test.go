package app_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"gepay-web/internal/api"
	"gepay-web/internal/models"
)

// fakeRemote plays the three remote functions over HTTP.
type fakeRemote struct {
	mu sync.Mutex

	authCalls    int
	createBodies []string
	createKeys   []string
	transactions []models.Transaction
	messages     []models.SupportMessage
}

func newFakeRemote(t *testing.T) (*fakeRemote, *api.Client) {
	t.Helper()
	remote := &fakeRemote{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", remote.auth)
	mux.HandleFunc("/transactions", remote.transactionsHandler)
	mux.HandleFunc("/support", remote.support)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := api.NewClient(api.Endpoints{
		Auth:         server.URL + "/auth",
		Transactions: server.URL + "/transactions",
		Support:      server.URL + "/support",
	}, 0)
	return remote, client
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (r *fakeRemote) auth(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.authCalls++
	r.mu.Unlock()

	var body models.AuthRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.TelegramData == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Success: true,
		User: &models.User{
			ID:         42,
			TelegramID: body.TelegramData.ID,
			FirstName:  body.TelegramData.FirstName,
			Username:   body.TelegramData.Username,
			Balance:    150.5,
		},
	})
}

func (r *fakeRemote) transactionsHandler(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch req.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, models.TransactionsResponse{Transactions: r.transactions})
	case http.MethodPost:
		body, _ := io.ReadAll(req.Body)
		r.createBodies = append(r.createBodies, string(body))
		r.createKeys = append(r.createKeys, req.Header.Get(api.IdempotencyKeyHeader))

		writeJSON(w, http.StatusOK, models.CreateTransactionResponse{
			Success: true,
			Transaction: &models.Transaction{
				ID:          9,
				Type:        models.TransactionTypeTopUp,
				Status:      models.TransactionStatusPending,
				Description: "Пополнение Steam",
			},
		})
	}
}

func (r *fakeRemote) support(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch req.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, models.SupportMessagesResponse{Messages: r.messages})
	case http.MethodPost:
		var body models.SendSupportMessageRequest
		json.NewDecoder(req.Body).Decode(&body)
		r.messages = append(r.messages, models.SupportMessage{
			ID:      int64(len(r.messages) + 1),
			UserID:  body.UserID,
			Message: body.Message,
		})
		writeJSON(w, http.StatusOK, models.SendSupportMessageResponse{Success: true})
	}
}

func (r *fakeRemote) setTransactions(txs []models.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = txs
}

func (r *fakeRemote) created() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.createBodies...), append([]string(nil), r.createKeys...)
}
