// sessionsv1 — сетевой контракт SessionsService, общий для сервера и клиента:
// бинарные сообщения, зарегистрированный gRPC-кодек и описание сервиса.
//
// Сообщения сериализуются в компактную детерминированную рамку: поля идут в
// фиксированном порядке, каждое байтовое/строковое поле предварено длиной
// uint16 (big-endian), булево поле занимает один байт. Схемы эволюции формата
// нет: версия зашита в имя пакета и имя сервиса.
package sessionsv1

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrInvalidMessage — байты не разбираются как сообщение данного типа:
// усечённая рамка, лишний хвост или поле длиннее uint16.
var ErrInvalidMessage = errors.New("sessionsv1: invalid message encoding")

// appendField дописывает поле с префиксом длины uint16.
func appendField(b, field []byte) ([]byte, error) {
	if len(field) > math.MaxUint16 {
		return nil, ErrInvalidMessage
	}

	b = binary.BigEndian.AppendUint16(b, uint16(len(field)))
	return append(b, field...), nil
}

// readField снимает одно поле с префиксом длины и возвращает остаток.
func readField(b []byte) (field, rest []byte, err error) {
	if len(b) < 2 {
		return nil, nil, ErrInvalidMessage
	}

	n := int(binary.BigEndian.Uint16(b[0:2]))
	if len(b) < 2+n {
		return nil, nil, ErrInvalidMessage
	}

	field = make([]byte, n)
	copy(field, b[2:2+n])

	return field, b[2+n:], nil
}

// appendBool дописывает булево поле одним байтом.
func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}

	return append(b, 0)
}

// readBool снимает булево поле. Любой байт кроме 0 и 1 — ErrInvalidMessage.
func readBool(b []byte) (v bool, rest []byte, err error) {
	if len(b) < 1 {
		return false, nil, ErrInvalidMessage
	}

	switch b[0] {
	case 0:
		return false, b[1:], nil
	case 1:
		return true, b[1:], nil
	default:
		return false, nil, ErrInvalidMessage
	}
}

// checkConsumed проверяет, что после разборки всех полей не осталось хвоста.
func checkConsumed(rest []byte) error {
	if len(rest) != 0 {
		return ErrInvalidMessage
	}

	return nil
}
