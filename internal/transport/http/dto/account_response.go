package dto

import (
	"time"

	"github.com/cloudforge/invoice-service/internal/domain"
)

type UserView struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Title     string    `json:"title,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Enabled   bool      `json:"enabled"`
	Locked    bool      `json:"locked"`
	UsingMFA  bool      `json:"using_mfa"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Phone:     u.Phone,
		Address:   u.Address,
		Title:     u.Title,
		Bio:       u.Bio,
		Enabled:   u.Enabled,
		Locked:    u.Locked,
		UsingMFA:  u.UsingMFA,
		CreatedAt: u.CreatedAt,
	}
}

type TokensView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginData is the login response. When MFAPending is true the tokens
// field is absent and the client must submit the SMS code next.
type LoginData struct {
	User       UserView    `json:"user"`
	MFAPending bool        `json:"mfa_pending"`
	Tokens     *TokensView `json:"tokens,omitempty"`
}

type RegisterData struct {
	User UserView `json:"user"`
}

type RefreshData struct {
	User   UserView   `json:"user"`
	Tokens TokensView `json:"tokens"`
}

type EventView struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Device    string    `json:"device,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewEventViews(events []domain.UserEvent) []EventView {
	out := make([]EventView, 0, len(events))
	for _, ev := range events {
		out = append(out, EventView{
			ID:        ev.ID,
			Type:      string(ev.Type),
			Device:    ev.Device,
			IPAddress: ev.IPAddress,
			CreatedAt: ev.CreatedAt,
		})
	}
	return out
}

type ProfileData struct {
	User   UserView    `json:"user"`
	Events []EventView `json:"events"`
}
