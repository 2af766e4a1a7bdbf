package models

import (
	"time"

	"github.com/google/uuid"
)

// Role - уровень доступа пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет пользователя системы.
type User struct {
	ID           uuid.UUID `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Caller - аутентифицированный вызывающий, извлечённый из токена.
type Caller struct {
	UserID uuid.UUID
	Login  string
	Role   Role
}

// IsAdmin сообщает, есть ли у вызывающего права администратора.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// RegisterRequest - запрос на регистрацию пользователя.
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// LoginRequest - запрос на аутентификацию пользователя.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// UserResponse - публичное представление пользователя.
type UserResponse struct {
	ID    uuid.UUID `json:"user_id"`
	Login string    `json:"login"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
	Role  Role      `json:"role"`
}
