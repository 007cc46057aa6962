package sessions

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBadKeys — ключи подписи не сконфигурированы или совпадают.
	// Ключи request- и refresh-области обязаны быть различны и не
	// должны выводиться друг из друга.
	ErrBadKeys = errors.New("bad signing keys")
)

// Manager владеет двумя независимыми ключами подписи и выпускает/разбирает
// токены обеих областей. Экземпляр не хранит изменяемого состояния и
// безопасен для конкурентного использования.
type Manager struct {
	reqKey []byte
	refKey []byte

	reqTTL time.Duration
	refTTL time.Duration

	// now подменяется в тестах.
	now func() time.Time
}

// NewManager создает менеджер с независимыми секретами request- и
// refresh-области и их сроками жизни.
// Возвращает ErrBadKeys, если какой-то из секретов пуст или секреты равны.
func NewManager(requestSecret, refreshSecret []byte, requestTTL, refreshTTL time.Duration) (*Manager, error) {
	const op = "sessions.NewManager"

	if len(requestSecret) == 0 || len(refreshSecret) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrBadKeys)
	}

	if bytes.Equal(requestSecret, refreshSecret) {
		return nil, fmt.Errorf("%s: %w", op, ErrBadKeys)
	}

	return &Manager{
		reqKey: requestSecret,
		refKey: refreshSecret,
		reqTTL: requestTTL,
		refTTL: refreshTTL,
		now:    time.Now,
	}, nil
}

// CreateRequestToken выпускает короткоживущий request-токен для субъекта.
func (m *Manager) CreateRequestToken(userID int32) SignedToken {
	now := m.now().UTC()
	return m.CreateRequestSession(Session{
		UserID:   userID,
		Scope:    ScopeUser,
		IssuedAt: now.UnixMilli(),
		ExpireAt: now.Add(m.reqTTL).UnixMilli(),
	})
}

// CreateRequestSession подписывает готовую полезную нагрузку ключом
// request-области.
func (m *Manager) CreateRequestSession(s Session) SignedToken {
	return sign(m.reqKey, s)
}

// ParseRequestToken проверяет подпись request-областью и срок действия.
// Ошибки: ErrTamperedToken, ErrMalformedToken, ErrExpiredToken.
func (m *Manager) ParseRequestToken(t SignedToken) (Session, error) {
	const op = "sessions.ParseRequestToken"

	s, err := verify(m.reqKey, t)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.checkExpiry(s); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// CreateRefreshToken выпускает долгоживущий refresh-токен для субъекта.
func (m *Manager) CreateRefreshToken(userID int32) SignedToken {
	now := m.now().UTC()
	return m.CreateRefreshSession(Session{
		UserID:   userID,
		Scope:    ScopeUser,
		IssuedAt: now.UnixMilli(),
		ExpireAt: now.Add(m.refTTL).UnixMilli(),
	})
}

// CreateRefreshSession подписывает готовую полезную нагрузку ключом
// refresh-области.
func (m *Manager) CreateRefreshSession(s Session) SignedToken {
	return sign(m.refKey, s)
}

// ParseRefreshToken проверяет подпись refresh-областью и срок действия.
// Токен, подписанный ключом другой области, здесь не пройдет проверку.
func (m *Manager) ParseRefreshToken(t SignedToken) (Session, error) {
	const op = "sessions.ParseRefreshToken"

	s, err := verify(m.refKey, t)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.checkExpiry(s); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// checkExpiry — единая граница срока действия: токен просрочен строго
// после ExpireAt; ExpireAt == now еще принимается.
func (m *Manager) checkExpiry(s Session) error {
	if m.now().UTC().UnixMilli() > s.ExpireAt {
		return ErrExpiredToken
	}

	return nil
}
