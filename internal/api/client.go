// Package api calls the remote auth, transactions and support functions.
//
// Each method performs exactly one HTTP request and decodes the body into a
// struct whose fields are all optional. Nothing is retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"gepay-web/internal/metrics"
	"gepay-web/internal/models"
)

const (
	OpAuthenticate        = "authenticate"
	OpListTransactions    = "list_transactions"
	OpCreateTransaction   = "create_transaction"
	OpListSupportMessages = "list_support_messages"
	OpSendSupportMessage  = "send_support_message"

	IdempotencyKeyHeader = "Idempotency-Key"

	maxErrorBody = 4 << 10
)

// APIError is returned when a remote function answers with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: remote returned %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: remote returned %d", e.Op, e.StatusCode)
}

type Endpoints struct {
	Auth         string
	Transactions string
	Support      string
}

type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
}

func NewClient(endpoints Endpoints, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoints:  endpoints,
	}
}

func (c *Client) Authenticate(ctx context.Context, assertion *models.TelegramAuthData) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := models.AuthRequest{TelegramData: assertion}
	if err := c.do(ctx, OpAuthenticate, http.MethodPost, c.endpoints.Auth, body, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListTransactions(ctx context.Context, userID int64) (*models.TransactionsResponse, error) {
	endpoint, err := withUserID(c.endpoints.Transactions, userID)
	if err != nil {
		return nil, err
	}

	var resp models.TransactionsResponse
	if err := c.do(ctx, OpListTransactions, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTransaction submits a top-up or region change. The idempotency key
// travels as a header so the body stays exactly what the remote expects.
func (c *Client) CreateTransaction(ctx context.Context, req *models.CreateTransactionRequest, idempotencyKey string) (*models.CreateTransactionResponse, error) {
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set(IdempotencyKeyHeader, idempotencyKey)
	}

	var resp models.CreateTransactionResponse
	if err := c.do(ctx, OpCreateTransaction, http.MethodPost, c.endpoints.Transactions, req, headers, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListSupportMessages(ctx context.Context, userID int64) (*models.SupportMessagesResponse, error) {
	endpoint, err := withUserID(c.endpoints.Support, userID)
	if err != nil {
		return nil, err
	}

	var resp models.SupportMessagesResponse
	if err := c.do(ctx, OpListSupportMessages, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendSupportMessage(ctx context.Context, userID int64, text string) (*models.SendSupportMessageResponse, error) {
	body := models.SendSupportMessageRequest{UserID: userID, Message: text}

	var resp models.SendSupportMessageResponse
	if err := c.do(ctx, OpSendSupportMessage, http.MethodPost, c.endpoints.Support, body, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body interface{}, headers http.Header, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRemoteCall(op, err, time.Since(start))
		log.Debug().
			Str("op", op).
			Dur("latency", time.Since(start)).
			Err(err).
			Msg("Remote call finished")
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	return nil
}

func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return ""
}

func withUserID(endpoint string, userID int64) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	q := u.Query()
	q.Set("user_id", strconv.FormatInt(userID, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
