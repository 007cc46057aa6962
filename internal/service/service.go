// service содержит бизнес-логику сессионного ядра:
// создание/обновление/отзыв сессий и смену пароля как отзывающее событие.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при
//     условии, что хранилище (storage.Storage) и кэш блокировок
//     (cache.BlockedSessions) потокобезопасны.
//   - Ошибки возвращаются и далее маппятся
//     транспортом на gRPC-коды (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-link-board/internal/cache"
	"github.com/pribylovaa/go-link-board/internal/storage"
	"github.com/pribylovaa/go-link-board/pkg/sessions"
)

var (
	// ErrUserNotFound — логин с неизвестным именем или неверным паролем.
	// Снаружи эти два случая намеренно неразличимы.
	// Транспорт: codes.Unauthenticated + authcode.CodeUserNotFound.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken — refresh-токен некорректен по формату/подписи либо
	// субъект заблокирован после выпуска токена.
	// Транспорт: codes.Unauthenticated + authcode.CodeInvalidToken.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия refresh-токена истёк.
	// Транспорт: codes.Unauthenticated + authcode.CodeExpiredToken.
	ErrTokenExpired = errors.New("token expired")

	// ErrWeakPassword — новый пароль не удовлетворяет политике сложности.
	// Транспорт: codes.InvalidArgument.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — новый пароль пустой.
	// Транспорт: codes.InvalidArgument.
	ErrEmptyPassword = errors.New("password is empty")
)

// Service описывает бизнес-логику сессионного ядра.
type Service struct {
	storage storage.Storage
	manager *sessions.Manager
	blocked cache.BlockedSessions
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, manager *sessions.Manager, blocked cache.BlockedSessions) *Service {
	return &Service{
		storage: storage,
		manager: manager,
		blocked: blocked,
	}
}
