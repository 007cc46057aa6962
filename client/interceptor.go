package client

import (
	"context"

	"github.com/pribylovaa/go-link-board/pkg/authcode"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryAuthInterceptor возвращает клиентский unary-интерсептор для
// соединений с прикладными сервисами. На каждый вызов он:
//
//  1. добывает пригодный request-токен (EnsureRequestToken: анонимность
//     разрешена только методам из anonymousMethods, ключ — полное имя
//     метода вида "/pkg.Service/Method");
//  2. прикладывает токен к метаданным вызова;
//  3. при ответе expired_token выполняет ровно один молчаливый ретрай:
//     принудительное обновление по refresh-токену и повтор вызова.
//     Любой другой исход, включая повторный отказ, терминален и уходит
//     вызывающему с восстановленным стабильным кодом.
func (c *Client) UnaryAuthInterceptor(anonymousMethods map[string]bool) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		allowAnonymous := anonymousMethods[method]

		token, authed, err := c.EnsureRequestToken(ctx, false, allowAnonymous)
		if err != nil {
			return err
		}

		callCtx := ctx
		if authed {
			callCtx = c.withToken(ctx, token)
		}

		var trailer metadata.MD
		err = invoker(callCtx, method, req, reply, cc, append(opts, grpc.Trailer(&trailer))...)
		if err == nil {
			return nil
		}

		err = restoreError(err, trailer)

		if !authed {
			return err
		}

		if code, ok := authCode(err); !ok || code != authcode.CodeExpiredToken {
			return err
		}

		token, _, refreshErr := c.EnsureRequestToken(ctx, true, false)
		if refreshErr != nil {
			return refreshErr
		}

		var retryTrailer metadata.MD
		if err := invoker(c.withToken(ctx, token), method, req, reply, cc, append(opts, grpc.Trailer(&retryTrailer))...); err != nil {
			return restoreError(err, retryTrailer)
		}

		return nil
	}
}
