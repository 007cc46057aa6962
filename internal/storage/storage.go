package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-link-board/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
// Хранилище — внешний коллаборатор ядра сессий: ему нужны только
// проверка учетных данных при создании сессии и смена пароля
// (событие, отзывающее выпущенные токены).
type UserStorage interface {
	// SaveUser создает нового пользователя и возвращает его ID.
	SaveUser(ctx context.Context, user *models.User) (int32, error)
	// UserByUsername находит пользователя по имени.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int32) (*models.User, error)
	// UpdatePassword заменяет хэш пароля пользователя.
	UpdatePassword(ctx context.Context, id int32, passwordHash string) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	Close()
}
