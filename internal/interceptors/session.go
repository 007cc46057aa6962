// session.go реализует аутентификационный гейт unary-вызовов.
package interceptors

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-link-board/internal/cache"
	"github.com/pribylovaa/go-link-board/internal/pkg/log"
	"github.com/pribylovaa/go-link-board/pkg/authcode"
	"github.com/pribylovaa/go-link-board/pkg/sessions"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Session возвращает unary-интерсептор, который один раз на вызов, до
// бизнес-логики, разбирает request-токен из метаданных и кладет
// аутентифицированную сессию в контекст.
//
// Машина состояний вызова:
//   - credential отсутствует — вызов проходит анонимно; какие эндпоинты
//     требуют идентичность, решают сами эндпоинты;
//   - битый или подделанный токен — Unauthenticated + invalid_token,
//     до обработчика вызов не доходит;
//   - просроченный токен — Unauthenticated + expired_token (отдельный
//     код: клиент может молча обновиться по refresh-токену);
//   - субъект заблокирован после выпуска токена — Unauthenticated +
//     invalid_token (снаружи неотличимо от подделки, и это намеренно);
//   - иначе сессия кладется в контекст и вызов идет дальше.
//
// Гейт ничего не ретраит и токенов не мутирует — это чистый фильтр
// плюс шаг обогащения контекста.
func Session(manager *sessions.Manager, blocked cache.BlockedSessions) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}

		vals := md.Get(authcode.AuthHeaderKey)
		if len(vals) == 0 || vals[0] == "" {
			return handler(ctx, req)
		}

		token, err := sessions.DecodeToken([]byte(vals[0]))
		if err != nil {
			return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeInvalidToken)
		}

		s, err := manager.ParseRequestToken(token)
		if err != nil {
			if errors.Is(err, sessions.ErrExpiredToken) {
				return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeExpiredToken)
			}

			return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeInvalidToken)
		}

		isBlocked, err := blocked.BlockedSince(ctx, s.UserID, time.UnixMilli(s.IssuedAt).UTC())
		if err != nil {
			// Недоступное хранилище блокировок: отказываем закрыто,
			// не пропуская потенциально отозванный токен.
			log.From(ctx).Error("blocked_sessions_lookup_failed",
				slog.String("method", info.FullMethod),
				slog.String("err", err.Error()),
			)
			return nil, status.Error(codes.Internal, "internal server error")
		}

		if isBlocked {
			return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeInvalidToken)
		}

		return handler(WithSession(ctx, s), req)
	}
}
