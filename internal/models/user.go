package models

import (
	"net/mail"
	"strings"
)

// MinPasswordLength is enforced before any password is sent.
const MinPasswordLength = 6

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account as returned by /users/me.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt Timestamp `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// GenreCount is one entry of a profile's favourite genres.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Profile is the extended profile from /users/me/profile.
type Profile struct {
	User
	ReviewsCount        int          `json:"reviews_count"`
	ListsCount          int          `json:"lists_count"`
	AverageRating       *float64     `json:"average_rating,omitempty"`
	RecentWatchedMovies []Movie      `json:"recent_watched_movies"`
	FavoriteGenres      []GenreCount `json:"favorite_genres"`
}

// Credentials is the login body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields.
func (c Credentials) Validate() error {
	if err := validateEmail(c.Email); err != nil {
		return err
	}
	if c.Password == "" {
		return &FieldError{Field: "password", Message: "Введите пароль"}
	}
	return nil
}

// Registration is the sign-up form. Confirm never leaves the client.
type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"-"`
}

// Validate mirrors the checks the sign-up form runs before submitting.
func (r Registration) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.Username) == "" {
		return &FieldError{Field: "username", Message: "Введите имя пользователя"}
	}
	if r.Password != r.Confirm {
		return &FieldError{Field: "confirm_password", Message: "Пароли не совпадают"}
	}
	return validatePassword("password", r.Password)
}

// PasswordChange is the change-password form. Confirm never leaves the client.
type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
	Confirm     string `json:"-"`
}

// Validate rejects mismatched or short passwords.
func (p PasswordChange) Validate() error {
	if p.OldPassword == "" {
		return &FieldError{Field: "old_password", Message: "Введите текущий пароль"}
	}
	if p.NewPassword != p.Confirm {
		return &FieldError{Field: "confirm_password", Message: "Новые пароли не совпадают"}
	}
	return validatePassword("new_password", p.NewPassword)
}

// PasswordReset completes a forgot-password flow.
type PasswordReset struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate checks the token and password length.
func (p PasswordReset) Validate() error {
	if strings.TrimSpace(p.Token) == "" {
		return &FieldError{Field: "token", Message: "Ссылка для сброса пароля недействительна"}
	}
	return validatePassword("new_password", p.NewPassword)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &FieldError{Field: "email", Message: "Введите email"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &FieldError{Field: "email", Message: "Некорректный email"}
	}
	return nil
}

func validatePassword(field, password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return &FieldError{Field: field, Message: "Пароль должен содержать минимум 6 символов"}
	}
	return nil
}
