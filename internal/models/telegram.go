package models

// TelegramAuthData is the identity assertion produced by the Telegram Login
// Widget. It is forwarded verbatim to the remote auth function.
type TelegramAuthData struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date,omitempty"`
	Hash      string `json:"hash,omitempty"`
}

type AuthRequest struct {
	TelegramData *TelegramAuthData `json:"telegram_data"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}
