package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/pribylovaa/go-link-board/internal/pkg/log"
	"github.com/pribylovaa/go-link-board/internal/storage"
	"github.com/pribylovaa/go-link-board/pkg/sessions"

	"golang.org/x/crypto/bcrypt"
)

// CreateSession аутентифицирует пользователя по имени и паролю и выпускает
// новую пару request+refresh токенов. Неизвестное имя и неверный пароль
// дают один и тот же ErrUserNotFound.
func (s *Service) CreateSession(ctx context.Context, username, password string) (*sessions.TokenPair, error) {
	const op = "service.sessions.CreateSession"

	if username == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	return &sessions.TokenPair{
		Request: s.manager.CreateRequestToken(user.ID),
		Refresh: s.manager.CreateRefreshToken(user.ID),
	}, nil
}

// RefreshSession выпускает новый request-токен по валидному refresh-токену.
// Refresh-токен, выпущенный до блокировки субъекта, отвергается как
// невалидный, пока жива запись о блокировке.
func (s *Service) RefreshSession(ctx context.Context, refresh sessions.SignedToken) (sessions.SignedToken, error) {
	const op = "service.sessions.RefreshSession"

	lg := log.From(ctx)

	session, err := s.manager.ParseRefreshToken(refresh)
	if err != nil {
		if errors.Is(err, sessions.ErrExpiredToken) {
			return sessions.SignedToken{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		lg.Warn("refresh_parse_failed", slog.String("op", op))
		return sessions.SignedToken{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	isBlocked, err := s.blocked.BlockedSince(ctx, session.UserID, time.UnixMilli(session.IssuedAt).UTC())
	if err != nil {
		lg.Error("blocked_sessions_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return sessions.SignedToken{}, fmt.Errorf("%s: %w", op, err)
	}

	if isBlocked {
		lg.Warn("refresh_blocked",
			slog.String("op", op),
			slog.Int("user_id", int(session.UserID)),
		)
		return sessions.SignedToken{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return s.manager.CreateRequestToken(session.UserID), nil
}

// RevokeSessions блокирует все выпущенные токены субъекта (logout-all):
// токены с issuedAt раньше момента блокировки перестают приниматься,
// токены, выпущенные после, остаются валидными.
func (s *Service) RevokeSessions(ctx context.Context, userID int32) error {
	const op = "service.sessions.RevokeSessions"

	if err := s.blocked.Block(ctx, userID); err != nil {
		log.From(ctx).Error("block_sessions_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdatePassword меняет пароль пользователя. Это отзывающее событие:
// все токены, выпущенные до смены, блокируются, а взамен выпускается
// свежая пара для текущей сессии.
func (s *Service) UpdatePassword(ctx context.Context, userID int32, current, next string) (*sessions.TokenPair, error) {
	const op = "service.sessions.UpdatePassword"

	if err := validatePassword(next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, current) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	hashed, err := hashPassword(next)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePassword(ctx, userID, hashed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Блокировка строго после записи нового хэша: выпущенные до этого
	// момента токены инвалидируются, свежая пара ниже — уже после.
	if err := s.blocked.Block(ctx, userID); err != nil {
		log.From(ctx).Error("block_sessions_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sessions.TokenPair{
		Request: s.manager.CreateRequestToken(userID),
		Refresh: s.manager.CreateRefreshToken(userID),
	}, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.sessions.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.sessions.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
