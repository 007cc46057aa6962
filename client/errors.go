package client

import (
	"errors"
	"fmt"

	"github.com/pribylovaa/go-link-board/pkg/authcode"

	"google.golang.org/grpc/metadata"
)

var (
	// ErrUnauthenticated — локальный отказ: вызов требует идентичности,
	// а у клиента нет ни request-, ни refresh-токена. Сетевого вызова
	// при этом не происходит.
	ErrUnauthenticated = errors.New("client: not authenticated")
)

// AuthError — отказ сервера по credential с восстановленным стабильным
// кодом исхода из trailer-метаданных. Оборачивает исходную статусную
// ошибку; errors.Is/As по ней продолжают работать.
type AuthError struct {
	Code authcode.Code
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("client: auth rejected (%s): %v", e.Code, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// restoreError восстанавливает идентичность ошибки по trailer'у ответа.
// Ошибки без стабильного кода возвращаются как есть.
func restoreError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}

	if code, ok := authcode.FromTrailer(trailer); ok {
		return &AuthError{Code: code, Err: err}
	}

	return err
}

// authCode извлекает стабильный код из ошибки, если он там есть.
func authCode(err error) (authcode.Code, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code, true
	}

	return "", false
}
