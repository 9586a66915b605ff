package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"gepay-web/internal/middleware"
	"gepay-web/internal/models"
	"gepay-web/internal/services"
)

const writeWait = 10 * time.Second

const (
	MessagePing              = "PING"
	MessagePong              = "PONG"
	MessageSubmitTopUp       = "SUBMIT_TOPUP"
	MessageSubmitRegion      = "SUBMIT_REGION"
	MessageProgress          = "PROGRESS"
	MessageNotification      = "NOTIFICATION"
	MessageTransactionStatus = "TRANSACTION_STATUS"
	MessageError             = "ERROR"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is a frame read from the browser.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutboundMessage is a frame written to the browser.
type OutboundMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type WebSocketHandler struct {
	orders  *services.OrderService
	watcher *services.StatusWatcher
	hub     *WebSocketHub
}

func NewWebSocketHandler(orders *services.OrderService, watcher *services.StatusWatcher, hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{
		orders:  orders,
		watcher: watcher,
		hub:     hub,
	}
}

// WebSocketHub tracks live connections per user so logout can close them.
type WebSocketHub struct {
	mu      sync.Mutex
	clients map[int64]map[*Client]struct{}
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{clients: make(map[int64]map[*Client]struct{})}
}

func (hub *WebSocketHub) register(client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if hub.clients[client.UserID] == nil {
		hub.clients[client.UserID] = make(map[*Client]struct{})
	}
	hub.clients[client.UserID][client] = struct{}{}
	log.Debug().Int64("user_id", client.UserID).Msg("Client registered")
}

func (hub *WebSocketHub) unregister(client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if set, ok := hub.clients[client.UserID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(hub.clients, client.UserID)
		}
		log.Debug().Int64("user_id", client.UserID).Msg("Client unregistered")
	}
}

// Disconnect closes every connection of userID. Work started from those
// connections is cancelled.
func (hub *WebSocketHub) Disconnect(userID int64) {
	hub.mu.Lock()
	clients := make([]*Client, 0, len(hub.clients[userID]))
	for client := range hub.clients[userID] {
		clients = append(clients, client)
	}
	hub.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

// Client is one browser connection. It is the progress and status sink for
// submissions made over it.
type Client struct {
	UserID int64

	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex

	// submitting is set from SUBMIT until its outcome is reported. A second
	// SUBMIT in that window is refused.
	submitting atomic.Bool
}

func (c *Client) send(msgType string, data interface{}) {
	if c.ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(OutboundMessage{Type: msgType, Data: data}); err != nil {
		log.Debug().Err(err).Int64("user_id", c.UserID).Msg("WebSocket write failed")
	}
}

func (c *Client) close() {
	c.cancel()
	c.conn.Close()
}

func (c *Client) Progress(percent int) {
	c.send(MessageProgress, gin.H{"percent": percent})
}

func (c *Client) TransactionStatus(tx *models.Transaction) {
	c.send(MessageTransactionStatus, gin.H{
		"transaction": tx,
		"label":       tx.Status.Label(),
	})
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	user := middleware.CurrentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	client := &Client{
		UserID: user.ID,
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
	}

	h.hub.register(client)

	var wg sync.WaitGroup
	defer func() {
		h.hub.unregister(client)
		client.close()
		wg.Wait()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Int64("user_id", user.ID).Msg("WebSocket error")
			}
			break
		}

		h.handleMessage(client, user, &msg, &wg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, user *models.User, msg *Message, wg *sync.WaitGroup) {
	switch msg.Type {
	case MessagePing:
		client.send(MessagePong, gin.H{"timestamp": time.Now().Unix()})

	case MessageSubmitTopUp:
		var form services.TopUpForm
		if err := json.Unmarshal(msg.Data, &form); err != nil {
			client.send(MessageError, gin.H{"error": "invalid top-up payload"})
			return
		}
		h.startSubmission(client, user, wg, func() (*services.SubmitResult, error) {
			return h.orders.SubmitTopUp(client.ctx, user, form, client)
		})

	case MessageSubmitRegion:
		var form services.RegionChangeForm
		if err := json.Unmarshal(msg.Data, &form); err != nil {
			client.send(MessageError, gin.H{"error": "invalid region payload"})
			return
		}
		h.startSubmission(client, user, wg, func() (*services.SubmitResult, error) {
			return h.orders.SubmitRegionChange(client.ctx, user, form, client)
		})

	default:
		client.send(MessageError, gin.H{"error": "unknown message type"})
	}
}

// startSubmission runs submit in the background unless another submission
// on the same connection has not reported yet.
func (h *WebSocketHandler) startSubmission(client *Client, user *models.User, wg *sync.WaitGroup, submit func() (*services.SubmitResult, error)) {
	if !client.submitting.CompareAndSwap(false, true) {
		client.send(MessageNotification, gin.H{
			"notification": services.NotificationFor(services.ErrSubmissionBusy),
			"reset_form":   false,
		})
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := submit()
		h.reportSubmission(client, result, err)
		client.submitting.Store(false)

		if err == nil {
			h.followTransaction(client, user, result.Transaction)
		}
	}()
}

func (h *WebSocketHandler) reportSubmission(client *Client, result *services.SubmitResult, err error) {
	if err != nil {
		client.send(MessageNotification, gin.H{
			"notification": services.NotificationFor(err),
			"field":        invalidField(err),
			"reset_form":   false,
		})
		return
	}

	client.send(MessageNotification, gin.H{
		"notification":         result.Notification,
		"transaction":          result.Transaction,
		"reset_form":           result.ResetForm,
		"next_idempotency_key": result.NextIdempotencyKey,
	})
}

// followTransaction pushes status changes of tx until it settles or the
// connection goes away.
func (h *WebSocketHandler) followTransaction(client *Client, user *models.User, tx *models.Transaction) {
	if tx == nil || h.watcher == nil {
		return
	}
	if _, err := h.watcher.Watch(client.ctx, user.ID, tx, client.TransactionStatus); err != nil {
		log.Debug().Err(err).Int64("transaction_id", tx.ID).Msg("Stopped watching transaction")
	}
}
