// client реализует клиентскую сторону сессионного протокола: хранение пары
// токенов, политику упреждающего обновления request-токена и клиентский
// интерсептор, прикладывающий credential к исходящим вызовам.
//
// Основные аспекты:
//   - Решение «пора ли обновляться» принимается локально, без сетевого
//     вызова: полезная нагрузка собственного токена читается без проверки
//     подписи (sessions.PeekSession);
//   - Порог обновления один для всех путей: токен обновляется, если до
//     истечения осталось меньше cutoff (по умолчанию 10 секунд);
//   - Параллельные вызовы, одновременно решившие обновиться, схлопываются
//     в один сетевой RefreshSession (singleflight); отмена одного из
//     ожидающих не отменяет обновление для остальных;
//   - Идентичность серверных отказов восстанавливается из trailer'а
//     x-auth-code (см. pkg/authcode), а не из текста ошибки.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/go-link-board/pkg/authcode"
	"github.com/pribylovaa/go-link-board/pkg/sessions"
	sessionsv1 "github.com/pribylovaa/go-link-board/pkg/sessionsv1"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// defaultRefreshCutoff — порог упреждающего обновления request-токена.
const defaultRefreshCutoff = 10 * time.Second

// Option настраивает клиента при создании.
type Option func(*Client)

// WithRefreshCutoff переопределяет порог упреждающего обновления.
func WithRefreshCutoff(d time.Duration) Option {
	return func(c *Client) {
		c.cutoff = d
	}
}

// Client — клиент SessionsService с политикой управления токенами.
// Безопасен для конкурентного использования.
type Client struct {
	rpc    sessionsv1.SessionsServiceClient
	store  TokenStore
	cutoff time.Duration

	// now подменяется в тестах.
	now func() time.Time

	group singleflight.Group
}

// New создает клиента поверх gRPC-соединения с сессионным сервисом.
// Соединение не должно нести аутентификационных интерсепторов: клиент
// прикладывает токены к собственным вызовам сам.
func New(cc grpc.ClientConnInterface, store TokenStore, opts ...Option) *Client {
	c := &Client{
		rpc:    sessionsv1.NewSessionsServiceClient(cc),
		store:  store,
		cutoff: defaultRefreshCutoff,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Login аутентифицирует пользователя и сохраняет выданную пару токенов.
func (c *Client) Login(ctx context.Context, username, password string) error {
	const op = "client.Login"

	var trailer metadata.MD
	resp, err := c.rpc.CreateSession(ctx, &sessionsv1.CreateSessionRequest{
		Username: username,
		Password: password,
	}, grpc.Trailer(&trailer))
	if err != nil {
		return fmt.Errorf("%s: %w", op, restoreError(err, trailer))
	}

	request, refresh, err := decodePair(resp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.store.SetPair(request, refresh)

	return nil
}

// Logout отзывает все сессии субъекта на сервере и забывает локальные
// токены. Локальное состояние очищается даже при сетевой ошибке: после
// Logout клиент анонимен в любом случае.
func (c *Client) Logout(ctx context.Context) error {
	const op = "client.Logout"

	defer c.store.Clear()

	err := c.callAuthed(ctx, func(ctx context.Context) error {
		var trailer metadata.MD
		_, err := c.rpc.RevokeSessions(ctx, &sessionsv1.RevokeSessionsRequest{}, grpc.Trailer(&trailer))
		return restoreError(err, trailer)
	})
	if err != nil {
		// Нечего отзывать: клиент и так анонимен.
		if errors.Is(err, ErrUnauthenticated) {
			return nil
		}

		if code, ok := authCode(err); ok && code == authcode.CodeUnauthenticated {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdatePassword меняет пароль субъекта. Сервер при этом блокирует все
// прежние сессии и выдает свежую пару токенов; она сохраняется в хранилище,
// так что текущий клиент остается аутентифицированным.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	const op = "client.UpdatePassword"

	err := c.callAuthed(ctx, func(ctx context.Context) error {
		var trailer metadata.MD
		resp, err := c.rpc.UpdatePassword(ctx, &sessionsv1.UpdatePasswordRequest{
			Current: current,
			Next:    next,
		}, grpc.Trailer(&trailer))
		if err != nil {
			return restoreError(err, trailer)
		}

		request, refresh, err := decodePair(resp)
		if err != nil {
			return err
		}

		c.store.SetPair(request, refresh)

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// EnsureRequestToken возвращает request-токен, пригодный для немедленного
// вызова, обновляя его при необходимости.
//
// Семантика:
//   - токена нет и нечем обновиться: при allowAnonymous — (zero, false, nil),
//     вызов идет анонимно; иначе ErrUnauthenticated без сетевого вызова;
//   - токен есть: обновление нужно, если force, либо токен не разбирается,
//     либо до истечения осталось меньше cutoff;
//   - обновление идет через singleflight: конкурентные вызовы ждут один
//     общий RefreshSession; ошибки обновления возвращаются как есть.
func (c *Client) EnsureRequestToken(ctx context.Context, force, allowAnonymous bool) (sessions.SignedToken, bool, error) {
	const op = "client.EnsureRequestToken"

	needsRefresh := force

	request, ok := c.store.Request()
	if !ok {
		if _, hasRefresh := c.store.Refresh(); !hasRefresh {
			if allowAnonymous {
				return sessions.SignedToken{}, false, nil
			}

			return sessions.SignedToken{}, false, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		needsRefresh = true
	} else if !needsRefresh {
		s, err := sessions.PeekSession(request)
		needsRefresh = err != nil || time.UnixMilli(s.ExpireAt).Sub(c.now().UTC()) < c.cutoff
	}

	if !needsRefresh {
		return request, true, nil
	}

	token, err := c.refreshShared(ctx)
	if err != nil {
		return sessions.SignedToken{}, false, fmt.Errorf("%s: %w", op, err)
	}

	return token, true, nil
}

// refreshShared схлопывает конкурентные обновления в один сетевой вызов.
// Сам вызов выполняется на контексте, отвязанном от отмены инициатора:
// результат нужен всем ожидающим, а не только первому. Каждый ожидающий
// при этом продолжает уважать собственный ctx.
func (c *Client) refreshShared(ctx context.Context) (sessions.SignedToken, error) {
	ch := c.group.DoChan("refresh", func() (any, error) {
		return c.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return sessions.SignedToken{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return sessions.SignedToken{}, res.Err
		}

		return res.Val.(sessions.SignedToken), nil
	}
}

// doRefresh выполняет RefreshSession и сохраняет новый request-токен.
func (c *Client) doRefresh(ctx context.Context) (sessions.SignedToken, error) {
	const op = "client.refresh"

	refresh, ok := c.store.Refresh()
	if !ok {
		return sessions.SignedToken{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	var trailer metadata.MD
	resp, err := c.rpc.RefreshSession(ctx, &sessionsv1.RefreshSessionRequest{
		Refresh: sessions.EncodeToken(refresh),
	}, grpc.Trailer(&trailer))
	if err != nil {
		return sessions.SignedToken{}, fmt.Errorf("%s: %w", op, restoreError(err, trailer))
	}

	token, err := sessions.DecodeToken(resp.Request)
	if err != nil {
		return sessions.SignedToken{}, fmt.Errorf("%s: %w", op, err)
	}

	c.store.SetRequest(token)

	return token, nil
}

// callAuthed выполняет do с приложенным request-токеном и одним молчаливым
// ретраем, если сервер ответил expired_token (часы клиента могли отстать
// от серверных).
func (c *Client) callAuthed(ctx context.Context, do func(ctx context.Context) error) error {
	token, _, err := c.EnsureRequestToken(ctx, false, false)
	if err != nil {
		return err
	}

	err = do(c.withToken(ctx, token))

	if code, ok := authCode(err); !ok || code != authcode.CodeExpiredToken {
		return err
	}

	token, _, err = c.EnsureRequestToken(ctx, true, false)
	if err != nil {
		return err
	}

	return do(c.withToken(ctx, token))
}

// withToken прикладывает сериализованный request-токен к исходящим
// метаданным вызова.
func (c *Client) withToken(ctx context.Context, token sessions.SignedToken) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authcode.AuthHeaderKey, string(sessions.EncodeToken(token)))
}

// decodePair разбирает пару токенов из ответа сервера.
func decodePair(resp *sessionsv1.SessionPairResponse) (request, refresh sessions.SignedToken, err error) {
	request, err = sessions.DecodeToken(resp.Request)
	if err != nil {
		return sessions.SignedToken{}, sessions.SignedToken{}, err
	}

	refresh, err = sessions.DecodeToken(resp.Refresh)
	if err != nil {
		return sessions.SignedToken{}, sessions.SignedToken{}, err
	}

	return request, refresh, nil
}
