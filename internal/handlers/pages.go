package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gepay-web/internal/content"
	"gepay-web/internal/middleware"
	"gepay-web/internal/models"
	"gepay-web/internal/services"
)

const (
	TabHome    = "home"
	TabTopUp   = "topup"
	TabRegion  = "region"
	TabSupport = "support"
	TabProfile = "profile"
)

var tabTitles = map[string]string{
	TabTopUp:   "Пополнение",
	TabRegion:  "Смена региона",
	TabSupport: "Поддержка",
	TabProfile: "Профиль",
}

// pageData is everything a page template may render. The shell passes the
// current user explicitly; templates never look it up themselves.
type pageData struct {
	Tab          string
	Title        string
	User         *models.User
	BotUsername  string
	AuthURL      string
	CloseURL     string
	ShowAuth     bool
	Notification *models.Notification
	Field        string

	Features  []content.Feature
	Regions   []content.Region
	Reviews   []content.Review
	FAQs      []content.FAQ
	Contacts  []content.Contact
	Presets   []int
	MinAmount int

	TopUp        services.TopUpForm
	RegionForm   services.RegionChangeForm
	Transaction  *models.Transaction
	Transactions []models.Transaction
	Messages     []models.SupportMessage
}

type PageHandler struct {
	orders      *services.OrderService
	history     *services.HistoryService
	support     *services.SupportService
	botUsername string
}

func NewPageHandler(orders *services.OrderService, history *services.HistoryService, support *services.SupportService, botUsername string) *PageHandler {
	return &PageHandler{
		orders:      orders,
		history:     history,
		support:     support,
		botUsername: botUsername,
	}
}

func (h *PageHandler) page(c *gin.Context, tab, title string) *pageData {
	return &pageData{
		Tab:         tab,
		Title:       title,
		User:        middleware.CurrentUser(c),
		BotUsername: h.botUsername,
		AuthURL:     "/auth/telegram",
		CloseURL:    c.Request.URL.Path,
		ShowAuth:    c.Query("login") != "",
		Features:    content.Features,
		Regions:     content.Regions,
		Reviews:     content.Reviews,
		FAQs:        content.FAQs,
		Contacts:    content.Contacts,
		Presets:     content.TopUpPresets,
		MinAmount:   content.MinTopUpAmount,
	}
}

// fail decorates the page with the notification for err. An anonymous
// submission opens the auth dialog instead of reporting a field.
func (h *PageHandler) fail(data *pageData, err error) int {
	data.Notification = services.NotificationFor(err)
	data.Field = invalidField(err)
	if errors.Is(err, services.ErrUnauthenticated) {
		data.ShowAuth = true
	}
	return statusFor(err)
}

func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, TabHome, h.page(c, TabHome, ""))
}

func (h *PageHandler) TopUp(c *gin.Context) {
	data := h.page(c, TabTopUp, tabTitles[TabTopUp])
	data.TopUp.Amount = c.Query("amount")
	data.TopUp.IdempotencyKey = models.NewIdempotencyKey()
	c.HTML(http.StatusOK, TabTopUp, data)
}

func (h *PageHandler) SubmitTopUp(c *gin.Context) {
	data := h.page(c, TabTopUp, tabTitles[TabTopUp])

	var form services.TopUpForm
	if err := c.ShouldBind(&form); err != nil {
		log.Debug().Err(err).Msg("Failed to bind top-up form")
	}

	result, err := h.orders.SubmitTopUp(c.Request.Context(), data.User, form, nil)
	if err != nil {
		data.TopUp = form
		data.TopUp.IdempotencyKey = services.FormKey(form.IdempotencyKey)
		c.HTML(h.fail(data, err), TabTopUp, data)
		return
	}

	data.TopUp.IdempotencyKey = result.NextIdempotencyKey
	data.Notification = result.Notification
	data.Transaction = result.Transaction
	c.HTML(http.StatusOK, TabTopUp, data)
}

func (h *PageHandler) Region(c *gin.Context) {
	data := h.page(c, TabRegion, tabTitles[TabRegion])
	data.RegionForm.Region = c.Query("region")
	data.RegionForm.IdempotencyKey = models.NewIdempotencyKey()
	c.HTML(http.StatusOK, TabRegion, data)
}

func (h *PageHandler) SubmitRegion(c *gin.Context) {
	data := h.page(c, TabRegion, tabTitles[TabRegion])

	var form services.RegionChangeForm
	if err := c.ShouldBind(&form); err != nil {
		log.Debug().Err(err).Msg("Failed to bind region form")
	}

	result, err := h.orders.SubmitRegionChange(c.Request.Context(), data.User, form, nil)
	if err != nil {
		data.RegionForm = form
		data.RegionForm.IdempotencyKey = services.FormKey(form.IdempotencyKey)
		c.HTML(h.fail(data, err), TabRegion, data)
		return
	}

	data.RegionForm.IdempotencyKey = result.NextIdempotencyKey
	data.Notification = result.Notification
	data.Transaction = result.Transaction
	c.HTML(http.StatusOK, TabRegion, data)
}

func (h *PageHandler) Support(c *gin.Context) {
	data := h.page(c, TabSupport, tabTitles[TabSupport])
	if data.User == nil {
		c.HTML(http.StatusOK, TabSupport, data)
		return
	}

	messages, err := h.support.Messages(c.Request.Context(), data.User)
	if err != nil {
		log.Error().Err(err).Int64("user_id", data.User.ID).Msg("Failed to load support messages")
		data.Notification = services.NotificationFor(err)
	}
	data.Messages = messages
	c.HTML(http.StatusOK, TabSupport, data)
}

func (h *PageHandler) SendSupport(c *gin.Context) {
	data := h.page(c, TabSupport, tabTitles[TabSupport])

	messages, err := h.support.Send(c.Request.Context(), data.User, c.PostForm("message"))
	if err != nil {
		status := h.fail(data, err)
		if data.User != nil {
			data.Messages, _ = h.support.Messages(c.Request.Context(), data.User)
		}
		c.HTML(status, TabSupport, data)
		return
	}

	data.Messages = messages
	c.HTML(http.StatusOK, TabSupport, data)
}

func (h *PageHandler) Profile(c *gin.Context) {
	data := h.page(c, TabProfile, tabTitles[TabProfile])
	if data.User == nil {
		c.Redirect(http.StatusSeeOther, "/?login=1")
		return
	}

	transactions, err := h.history.Transactions(c.Request.Context(), data.User)
	if err != nil {
		log.Error().Err(err).Int64("user_id", data.User.ID).Msg("Failed to load transactions")
		data.Notification = services.NotificationFor(err)
	}
	data.Transactions = transactions
	c.HTML(http.StatusOK, TabProfile, data)
}

// RateLimited renders tab with a "too many requests" toast in place of the
// submission, keeping what the user typed.
func (h *PageHandler) RateLimited(tab string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := h.page(c, tab, tabTitles[tab])
		data.Notification = models.NewNotification(models.NotificationError,
			"Слишком много запросов", "Подождите минуту и попробуйте снова")

		switch tab {
		case TabTopUp:
			if err := c.ShouldBind(&data.TopUp); err != nil {
				log.Debug().Err(err).Msg("Failed to bind top-up form")
			}
			data.TopUp.IdempotencyKey = services.FormKey(data.TopUp.IdempotencyKey)
		case TabRegion:
			if err := c.ShouldBind(&data.RegionForm); err != nil {
				log.Debug().Err(err).Msg("Failed to bind region form")
			}
			data.RegionForm.IdempotencyKey = services.FormKey(data.RegionForm.IdempotencyKey)
		case TabSupport:
			if data.User != nil {
				data.Messages, _ = h.support.Messages(c.Request.Context(), data.User)
			}
		}

		c.HTML(http.StatusTooManyRequests, tab, data)
	}
}
