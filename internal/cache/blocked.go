// cache реализует кэш заблокированных сессий: отметку «субъект
// заблокирован с момента T», по которой инвалидируются уже выпущенные
// токены, выданные до T. Сами токены самодостаточны и не хранятся на
// сервере, поэтому блокировка — единственный способ отозвать их раньше
// срока (смена пароля, удаление аккаунта, logout-all).
//
// Контракт одинаков для обеих реализаций:
//   - запись живет ограниченное время (TTL >= максимального времени
//     жизни request-токена), дальше хранить её незачем;
//   - токен, выпущенный ПОСЛЕ блокировки, остается валидным — блокировка
//     отзывает существующие сессии, а не субъекта навсегда.
package cache

import (
	"context"
	"sync"
	"time"
)

// BlockedSessions — минимальный контракт кэша заблокированных сессий.
type BlockedSessions interface {
	// Block записывает «заблокирован с этого момента» для субъекта.
	Block(ctx context.Context, userID int32) error
	// BlockedSince возвращает true, если для субъекта есть запись о
	// блокировке строго позже issuedAt. Сравнение идет с точностью до
	// миллисекунды — точностью issuedAt в полезной нагрузке токена.
	BlockedSince(ctx context.Context, userID int32, issuedAt time.Time) (bool, error)
	// Close освобождает ресурсы реализации.
	Close() error
}

// memoryCache — внутрипроцессная реализация для одиночного сервера.
// Потокобезопасна; чтение видит собственные записи процесса сразу.
type memoryCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[int32]time.Time

	// now подменяется в тестах.
	now func() time.Time
}

// NewMemory создает внутрипроцессный кэш с заданным TTL записей.
func NewMemory(ttl time.Duration) BlockedSessions {
	return &memoryCache{
		ttl: ttl,
		m:   make(map[int32]time.Time),
		now: time.Now,
	}
}

func (c *memoryCache) Block(_ context.Context, userID int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m[userID] = c.now().UTC()
	c.sweepLocked()

	return nil
}

func (c *memoryCache) BlockedSince(_ context.Context, userID int32, issuedAt time.Time) (bool, error) {
	c.mu.RLock()
	blockedAt, ok := c.m[userID]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}

	// Просроченная запись эквивалентна отсутствующей.
	if c.now().UTC().Sub(blockedAt) > c.ttl {
		return false, nil
	}

	// Сравнение в миллисекундах, как у issuedAt в токене: пара, выпущенная
	// отзывающим событием в ту же миллисекунду, остается валидной.
	return blockedAt.UnixMilli() > issuedAt.UnixMilli(), nil
}

func (c *memoryCache) Close() error { return nil }

// sweepLocked удаляет просроченные записи; вызывается под write-блокировкой
// при каждой новой блокировке (записи редки, полноценный janitor не нужен).
func (c *memoryCache) sweepLocked() {
	cutoff := c.now().UTC().Add(-c.ttl)
	for id, at := range c.m {
		if at.Before(cutoff) {
			delete(c.m, id)
		}
	}
}
