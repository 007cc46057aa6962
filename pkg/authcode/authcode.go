// authcode — единый каталог машиночитаемых кодов ошибок аутентификации
// и констант сетевого контракта, общий для сервера и клиента.
//
// Идентичность ошибки переживает RPC-границу через структурированные
// метаданные (trailer x-auth-code), а не через разбор текстового описания
// статуса: клиент и сервер используют одно и то же перечисление из этого
// пакета. gRPC-код при этом остается общим (Unauthenticated) для всех
// отказов по credential — сам код ничего не раскрывает.
package authcode

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthHeaderKey — бинарный metadata-ключ, под которым вызов несет
// сериализованный request-токен. Суффикс -bin обязателен: gRPC кодирует
// такие значения как байты.
const AuthHeaderKey = "authorization-bin"

// TrailerKey — metadata-ключ trailer'а со стабильным кодом ошибки.
const TrailerKey = "x-auth-code"

// Code — стабильный машиночитаемый код исхода аутентификации.
type Code string

const (
	// CodeInvalidToken — credential предъявлен и отвергнут: битый,
	// подделанный или отозванный токен. Причина намеренно не
	// различима снаружи.
	CodeInvalidToken Code = "invalid_token"
	// CodeExpiredToken — credential предъявлен, но срок его действия
	// истёк. Отдельный код: клиент может молча обновиться по
	// refresh-токену вместо повторного логина.
	CodeExpiredToken Code = "expired_token"
	// CodeUnauthenticated — credential не предъявлен вовсе там, где
	// он требуется.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeUserNotFound — логин с неизвестными/неверными учетными
	// данными.
	CodeUserNotFound Code = "user_not_found"
)

// messages — безопасные человекочитаемые описания; деталей не раскрывают.
var messages = map[Code]string{
	CodeInvalidToken:    "invalid credential",
	CodeExpiredToken:    "expired credential",
	CodeUnauthenticated: "authentication required",
	CodeUserNotFound:    "unknown user or wrong password",
}

// Error формирует статусную ошибку с данным gRPC-кодом и прикрепляет
// стабильный код исхода в trailer текущего вызова. Вызывается только на
// серверной стороне (интерсептор или транспорт), где ctx — контекст RPC.
func Error(ctx context.Context, grpcCode codes.Code, c Code) error {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(TrailerKey, string(c)))

	msg, ok := messages[c]
	if !ok {
		msg = "authentication failed"
	}

	return status.Error(grpcCode, msg)
}

// FromTrailer извлекает стабильный код из trailer-метаданных ответа.
func FromTrailer(md metadata.MD) (Code, bool) {
	vals := md.Get(TrailerKey)
	if len(vals) == 0 || vals[0] == "" {
		return "", false
	}

	return Code(vals[0]), true
}
