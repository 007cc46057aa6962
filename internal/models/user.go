package models

import "time"

// User - модель пользователя в системе.
type User struct {
	ID           int32
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
