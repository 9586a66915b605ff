package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"gepay-web/internal/middleware"
	"gepay-web/internal/models"
	"gepay-web/internal/services"
)

// UserHandler serves the JSON API used by the Mini App. Every route runs
// behind RequireUser.
type UserHandler struct {
	orders  *services.OrderService
	history *services.HistoryService
	support *services.SupportService
}

func NewUserHandler(orders *services.OrderService, history *services.HistoryService, support *services.SupportService) *UserHandler {
	return &UserHandler{
		orders:  orders,
		history: history,
		support: support,
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"session": gin.H{
			"session_id": middleware.SessionID(c),
		},
	})
}

func (h *UserHandler) GetTransactions(c *gin.Context) {
	transactions, err := h.history.Transactions(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

type createTransactionRequest struct {
	Type       models.TransactionType `json:"type"`
	SteamLogin string                 `json:"steam_login"`
	Amount     json.Number            `json:"amount"`
	Region     string                 `json:"region"`

	// IdempotencyKey falls back to the Idempotency-Key header.
	IdempotencyKey string `json:"idempotency_key"`
}

func (h *UserHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	var (
		result *services.SubmitResult
		err    error
	)
	switch req.Type {
	case models.TransactionTypeTopUp:
		result, err = h.orders.SubmitTopUp(ctx, user, services.TopUpForm{
			SteamLogin:     req.SteamLogin,
			Amount:         req.Amount.String(),
			IdempotencyKey: req.IdempotencyKey,
		}, nil)
	case models.TransactionTypeRegionChange:
		result, err = h.orders.SubmitRegionChange(ctx, user, services.RegionChangeForm{
			SteamLogin:     req.SteamLogin,
			Region:         req.Region,
			IdempotencyKey: req.IdempotencyKey,
		}, nil)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown transaction type"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"transaction":     result.Transaction,
		"idempotency_key": result.IdempotencyKey,
		"notification":    result.Notification,
	})
}

func (h *UserHandler) GetSupportMessages(c *gin.Context) {
	messages, err := h.support.Messages(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendSupportRequest struct {
	Message string `json:"message"`
}

func (h *UserHandler) SendSupportMessage(c *gin.Context) {
	var req sendSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	messages, err := h.support.Send(c.Request.Context(), middleware.CurrentUser(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
	})
}
