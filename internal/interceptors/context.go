package interceptors

import (
	"context"

	"github.com/pribylovaa/go-link-board/pkg/sessions"
)

type sessionCtxKey struct{}

// WithSession кладет аутентифицированную сессию вызова в контекст.
// Идентичность передается явным контекстным значением от интерсептора к
// обработчику; никакого ambient-состояния вне контекста запроса нет.
func WithSession(ctx context.Context, s sessions.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFrom возвращает сессию вызова и признак её наличия.
// Отсутствие сессии — легальное состояние: анонимные вызовы проходят
// гейт без идентичности, а требовать её или нет — решение эндпоинта.
func SessionFrom(ctx context.Context) (sessions.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(sessions.Session)
	return s, ok
}
