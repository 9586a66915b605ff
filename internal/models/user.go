package models

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// User is the cached copy of the account returned by the remote auth function.
// Balance is authoritative on the remote side and is never recomputed here.
type User struct {
	ID         int64   `json:"id" redis:"id"`
	TelegramID int64   `json:"telegram_id" redis:"telegram_id"`
	Username   string  `json:"username,omitempty" redis:"username"`
	FirstName  string  `json:"first_name,omitempty" redis:"first_name"`
	LastName   string  `json:"last_name,omitempty" redis:"last_name"`
	PhotoURL   string  `json:"photo_url,omitempty" redis:"photo_url"`
	Balance    float64 `json:"balance" redis:"balance"`
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return fmt.Sprintf("user %d", u.TelegramID)
}

// Initials is used as the avatar fallback when there is no photo.
func (u *User) Initials() string {
	if u.FirstName != "" {
		return firstLetter(u.FirstName) + firstLetter(u.LastName)
	}
	if u.Username != "" {
		return strings.ToUpper(firstLetter(u.Username))
	}
	return "U"
}

func (u *User) FormattedBalance() string {
	return FormatRubles(u.Balance)
}

func firstLetter(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}
