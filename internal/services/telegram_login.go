package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"

	"gepay-web/internal/models"
)

// Fields the Login Widget signs. Anything else on the callback URL is ignored.
var widgetFields = []string{"auth_date", "first_name", "id", "last_name", "photo_url", "username"}

// ParseLoginWidget builds the identity assertion from the widget's redirect
// query parameters.
func ParseLoginWidget(values url.Values) (*models.TelegramAuthData, error) {
	id, err := strconv.ParseInt(values.Get("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: missing telegram id", ErrInvalidAssertion)
	}
	// An unsigned callback is never an assertion, whether or not this shell
	// holds the bot token to check the signature itself.
	if values.Get("hash") == "" {
		return nil, fmt.Errorf("%w: missing hash", ErrInvalidAssertion)
	}

	data := &models.TelegramAuthData{
		ID:        id,
		FirstName: values.Get("first_name"),
		LastName:  values.Get("last_name"),
		Username:  values.Get("username"),
		PhotoURL:  values.Get("photo_url"),
		Hash:      values.Get("hash"),
	}

	if raw := values.Get("auth_date"); raw != "" {
		authDate, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad auth_date", ErrInvalidAssertion)
		}
		data.AuthDate = authDate
	}

	return data, nil
}

// VerifyLoginWidget checks the widget signature: HMAC-SHA256 over the sorted
// "key=value" lines keyed with SHA256(bot token). maxAge of zero skips the
// freshness check.
func VerifyLoginWidget(values url.Values, botToken string, maxAge time.Duration, now time.Time) error {
	hash := values.Get("hash")
	if hash == "" {
		return fmt.Errorf("%w: missing hash", ErrInvalidAssertion)
	}

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(widgetCheckString(values)))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(hash))) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidAssertion)
	}

	if maxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad auth_date", ErrInvalidAssertion)
		}
		if now.Sub(time.Unix(authDate, 0)) > maxAge {
			return fmt.Errorf("%w: assertion expired", ErrInvalidAssertion)
		}
	}

	return nil
}

func widgetCheckString(values url.Values) string {
	keys := make([]string, 0, len(widgetFields))
	for _, key := range widgetFields {
		if _, ok := values[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}
	return strings.Join(lines, "\n")
}

// AssertionFromInitData validates Mini App init data and converts it into an
// identity assertion. The Mini App hash uses a different scheme than the
// widget, so it is dropped after local validation.
func AssertionFromInitData(raw, botToken string, maxAge time.Duration) (*models.TelegramAuthData, error) {
	if err := initdata.Validate(raw, botToken, maxAge); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	parsed, err := initdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if parsed.User.ID == 0 {
		return nil, fmt.Errorf("%w: init data carries no user", ErrInvalidAssertion)
	}

	return &models.TelegramAuthData{
		ID:        parsed.User.ID,
		FirstName: parsed.User.FirstName,
		LastName:  parsed.User.LastName,
		Username:  parsed.User.Username,
		PhotoURL:  parsed.User.PhotoURL,
		AuthDate:  parsed.AuthDate().Unix(),
	}, nil
}
