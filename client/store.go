package client

import (
	"sync"

	"github.com/pribylovaa/go-link-board/pkg/sessions"
)

// TokenStore хранит текущую пару токенов клиента. Все мутации атомарны
// относительно читателей: читатель никогда не увидит request-токен новой
// пары вместе с refresh-токеном старой.
type TokenStore interface {
	// Request возвращает текущий request-токен и признак его наличия.
	Request() (sessions.SignedToken, bool)
	// Refresh возвращает текущий refresh-токен и признак его наличия.
	Refresh() (sessions.SignedToken, bool)
	// SetPair атомарно заменяет оба токена.
	SetPair(request, refresh sessions.SignedToken)
	// SetRequest заменяет только request-токен (после обновления).
	SetRequest(request sessions.SignedToken)
	// Clear забывает оба токена (logout, невалидная сессия).
	Clear()
}

// MemoryStore — потокобезопасное хранилище токенов в памяти процесса.
// Нулевое значение готово к использованию.
type MemoryStore struct {
	mu sync.RWMutex

	request    sessions.SignedToken
	refresh    sessions.SignedToken
	hasRequest bool
	hasRefresh bool
}

// NewMemoryStore создает пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Request() (sessions.SignedToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.request, s.hasRequest
}

func (s *MemoryStore) Refresh() (sessions.SignedToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refresh, s.hasRefresh
}

func (s *MemoryStore) SetPair(request, refresh sessions.SignedToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.request, s.hasRequest = request, true
	s.refresh, s.hasRefresh = refresh, true
}

func (s *MemoryStore) SetRequest(request sessions.SignedToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.request, s.hasRequest = request, true
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.request, s.hasRequest = sessions.SignedToken{}, false
	s.refresh, s.hasRefresh = sessions.SignedToken{}, false
}
