// transport/grpc содержит реализацию gRPC-эндпоинтов SessionsService.
// Здесь выполняется только маппинг данных и ошибок доменного слоя (service) в gRPC.
// Вся валидация и бизнес-логика находятся в пакете service.
//
// Принципы:
//   - Контекст запроса прокидывается в сервис без потерь;
//   - Ошибки сервиса явно транслируются в коды gRPC, а стабильный
//     машиночитаемый код исхода уезжает в trailer x-auth-code (authcode):
//   - ErrUserNotFound -> codes.Unauthenticated + user_not_found;
//   - ErrInvalidToken -> codes.Unauthenticated + invalid_token;
//   - ErrTokenExpired -> codes.Unauthenticated + expired_token;
//   - ErrWeakPassword/ErrEmptyPassword -> codes.InvalidArgument;
//   - иные ошибки -> codes.Internal c единым безопасным сообщением;
//   - RevokeSessions и UpdatePassword требуют идентичности: без сессии в
//     контексте — codes.Unauthenticated + unauthenticated, без обращения
//     к бизнес-логике.
//
// Безопасность:
//   - Для codes.Internal наружу не утекают детали внутренних ошибок;
//     подробности попадают в логи через интерсепторы на уровне сервера.
package grpc

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-link-board/internal/interceptors"
	"github.com/pribylovaa/go-link-board/internal/service"
	"github.com/pribylovaa/go-link-board/pkg/authcode"
	"github.com/pribylovaa/go-link-board/pkg/sessions"
	sessionsv1 "github.com/pribylovaa/go-link-board/pkg/sessionsv1"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type SessionsServer struct {
	sessionsv1.UnimplementedSessionsServiceServer
	service *service.Service
}

// NewSessionsServer создаёт gRPC-сервер сессионного ядра поверх сервисного слоя.
func NewSessionsServer(service *service.Service) *SessionsServer {
	return &SessionsServer{service: service}
}

// CreateSession аутентифицирует пользователя и возвращает пару токенов.
// Маппинг ошибок:
//   - ErrUserNotFound -> Unauthenticated + user_not_found;
//   - прочее -> Internal (без раскрытия деталей).
func (s *SessionsServer) CreateSession(ctx context.Context, req *sessionsv1.CreateSessionRequest) (*sessionsv1.SessionPairResponse, error) {
	pair, err := s.service.CreateSession(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeUserNotFound)
		}

		return nil, status.Error(codes.Internal, "internal server error")
	}

	return &sessionsv1.SessionPairResponse{
		Request: sessions.EncodeToken(pair.Request),
		Refresh: sessions.EncodeToken(pair.Refresh),
	}, nil
}

// RefreshSession выпускает новый request-токен по валидному refresh-токену.
// Маппинг ошибок:
//   - битая рамка токена -> Unauthenticated + invalid_token;
//   - ErrTokenExpired -> Unauthenticated + expired_token;
//   - ErrInvalidToken -> Unauthenticated + invalid_token;
//   - прочее -> Internal.
func (s *SessionsServer) RefreshSession(ctx context.Context, req *sessionsv1.RefreshSessionRequest) (*sessionsv1.TokenResponse, error) {
	refresh, err := sessions.DecodeToken(req.Refresh)
	if err != nil {
		return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeInvalidToken)
	}

	token, err := s.service.RefreshSession(ctx, refresh)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeExpiredToken)
		}

		if errors.Is(err, service.ErrInvalidToken) {
			return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeInvalidToken)
		}

		return nil, status.Error(codes.Internal, "internal server error")
	}

	return &sessionsv1.TokenResponse{
		Request: sessions.EncodeToken(token),
	}, nil
}

// RevokeSessions отзывает все сессии субъекта (logout-all).
// Требует идентичности: без сессии в контексте — Unauthenticated + unauthenticated.
func (s *SessionsServer) RevokeSessions(ctx context.Context, _ *sessionsv1.RevokeSessionsRequest) (*sessionsv1.RevokeSessionsResponse, error) {
	caller, ok := interceptors.SessionFrom(ctx)
	if !ok {
		return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeUnauthenticated)
	}

	if err := s.service.RevokeSessions(ctx, caller.UserID); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return &sessionsv1.RevokeSessionsResponse{Ok: true}, nil
}

// UpdatePassword меняет пароль субъекта и возвращает свежую пару токенов
// (все прежние сессии при этом блокируются).
// Маппинг ошибок:
//   - нет идентичности -> Unauthenticated + unauthenticated;
//   - ErrWeakPassword/ErrEmptyPassword -> InvalidArgument;
//   - ErrUserNotFound (неверный текущий пароль) -> Unauthenticated + user_not_found;
//   - прочее -> Internal.
func (s *SessionsServer) UpdatePassword(ctx context.Context, req *sessionsv1.UpdatePasswordRequest) (*sessionsv1.SessionPairResponse, error) {
	const op = "transport/grpc/server/UpdatePassword"

	caller, ok := interceptors.SessionFrom(ctx)
	if !ok {
		return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeUnauthenticated)
	}

	pair, err := s.service.UpdatePassword(ctx, caller.UserID, req.Current, req.Next)
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) || errors.Is(err, service.ErrEmptyPassword) {
			return nil, status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
		}

		if errors.Is(err, service.ErrUserNotFound) {
			return nil, authcode.Error(ctx, codes.Unauthenticated, authcode.CodeUserNotFound)
		}

		return nil, status.Error(codes.Internal, "internal server error")
	}

	return &sessionsv1.SessionPairResponse{
		Request: sessions.EncodeToken(pair.Request),
		Refresh: sessions.EncodeToken(pair.Refresh),
	}, nil
}
