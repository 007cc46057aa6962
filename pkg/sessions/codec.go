// sessions реализует выпуск и проверку подписанных токенов сессий:
// кодек полезной нагрузки с HMAC-подписью (codec.go) и менеджер
// request-/refresh-токенов с контролем срока действия (manager.go).
//
// Основные аспекты:
//   - Сериализация полезной нагрузки детерминирована (фиксированная
//     бинарная раскладка), поэтому MAC всегда считается над одними и
//     теми же байтами;
//   - MAC-примитив конструируется заново на каждый вызов: общего
//     изменяемого состояния нет, пакет безопасен при неограниченном
//     конкурентном использовании;
//   - Ошибки разбора различимы: ErrMalformedToken (битые байты),
//     ErrTamperedToken (подпись не сошлась), ErrExpiredToken (срок
//     истёк) — вызывающая сторона не должна их схлопывать.
package sessions

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrMalformedToken — токен не разбирается: битая рамка или
	// полезная нагрузка неожиданной формы. Транспорт: codes.Unauthenticated.
	ErrMalformedToken = errors.New("malformed token")

	// ErrTamperedToken — подпись не совпала с MAC над данными.
	// Отличается от ErrMalformedToken: байты целы, но подделаны
	// или подписаны чужим ключом. Транспорт: codes.Unauthenticated.
	ErrTamperedToken = errors.New("tampered token")

	// ErrExpiredToken — срок действия полезной нагрузки истёк.
	// Транспорт: codes.Unauthenticated, но с отдельным кодом, чтобы
	// клиент мог молча обновиться по refresh-токену.
	ErrExpiredToken = errors.New("expired token")
)

// payloadLen — фиксированная длина сериализованной Session:
// int32 user_id | int32 scope | int64 issued_at(ms) | int64 expire_at(ms),
// все поля big-endian.
const payloadLen = 4 + 4 + 8 + 8

// signLen — длина подписи HMAC-SHA512.
const signLen = sha512.Size

// encodeSession сериализует полезную нагрузку в фиксированную раскладку.
func encodeSession(s Session) []byte {
	b := make([]byte, payloadLen)
	binary.BigEndian.PutUint32(b[0:4], uint32(s.UserID))
	binary.BigEndian.PutUint32(b[4:8], uint32(s.Scope))
	binary.BigEndian.PutUint64(b[8:16], uint64(s.IssuedAt))
	binary.BigEndian.PutUint64(b[16:24], uint64(s.ExpireAt))
	return b
}

// decodeSession разбирает полезную нагрузку. Любое отклонение по длине —
// ErrMalformedToken.
func decodeSession(b []byte) (Session, error) {
	const op = "sessions.decodeSession"

	if len(b) != payloadLen {
		return Session{}, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}

	return Session{
		UserID:   int32(binary.BigEndian.Uint32(b[0:4])),
		Scope:    SessionScope(binary.BigEndian.Uint32(b[4:8])),
		IssuedAt: int64(binary.BigEndian.Uint64(b[8:16])),
		ExpireAt: int64(binary.BigEndian.Uint64(b[16:24])),
	}, nil
}

// computeMAC считает HMAC-SHA512 над data. Примитив создается заново на
// каждый вызов: два логических вычисления никогда не делят аккумулятор.
func computeMAC(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// sign сериализует полезную нагрузку и подписывает её ключом key.
func sign(key []byte, s Session) SignedToken {
	data := encodeSession(s)
	return SignedToken{
		Data: data,
		Sign: computeMAC(key, data),
	}
}

// verify пересчитывает MAC над token.Data и сравнивает с token.Sign
// константным по времени сравнением. При несовпадении — ErrTamperedToken;
// при успехе десериализует полезную нагрузку (ошибки формы — ErrMalformedToken).
// Срок действия здесь не проверяется — это забота менеджера.
func verify(key []byte, token SignedToken) (Session, error) {
	const op = "sessions.verify"

	if !hmac.Equal(token.Sign, computeMAC(key, token.Data)) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrTamperedToken)
	}

	s, err := decodeSession(token.Data)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// EncodeToken упаковывает токен в рамку для передачи по сети:
// uint16 len(data) | data | sign.
func EncodeToken(t SignedToken) []byte {
	b := make([]byte, 2+len(t.Data)+len(t.Sign))
	binary.BigEndian.PutUint16(b[0:2], uint16(len(t.Data)))
	copy(b[2:], t.Data)
	copy(b[2+len(t.Data):], t.Sign)
	return b
}

// DecodeToken разбирает сетевую рамку обратно в SignedToken.
// Рамка с пустыми данными или пустой подписью — ErrMalformedToken.
func DecodeToken(b []byte) (SignedToken, error) {
	const op = "sessions.DecodeToken"

	if len(b) < 2 {
		return SignedToken{}, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}

	dataLen := int(binary.BigEndian.Uint16(b[0:2]))
	if dataLen == 0 || len(b) <= 2+dataLen {
		return SignedToken{}, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}

	data := make([]byte, dataLen)
	copy(data, b[2:2+dataLen])

	signPart := make([]byte, len(b)-2-dataLen)
	copy(signPart, b[2+dataLen:])

	return SignedToken{Data: data, Sign: signPart}, nil
}

// PeekSession разбирает полезную нагрузку токена БЕЗ проверки подписи.
// Предназначен для локальных решений на стороне клиента (например, «скоро
// ли истекает мой собственный request-токен»); на сервере доверять
// результату нельзя.
func PeekSession(t SignedToken) (Session, error) {
	return decodeSession(t.Data)
}
