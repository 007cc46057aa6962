package sessionsv1

import (
	"encoding"
	"fmt"

	grpcencoding "google.golang.org/grpc/encoding"
)

// CodecName — имя кодека в реестре gRPC. Клиент выбирает его через
// grpc.CallContentSubtype(CodecName); сервер находит его по content-type
// входящего вызова. Регистрация происходит при импорте пакета с обеих сторон.
const CodecName = "linkboard"

func init() {
	grpcencoding.RegisterCodec(binaryCodec{})
}

// binaryCodec сериализует сообщения через их собственные
// MarshalBinary/UnmarshalBinary.
type binaryCodec struct{}

func (binaryCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("sessionsv1: message %T does not implement encoding.BinaryMarshaler", v)
	}

	return m.MarshalBinary()
}

func (binaryCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("sessionsv1: message %T does not implement encoding.BinaryUnmarshaler", v)
	}

	return m.UnmarshalBinary(data)
}

func (binaryCodec) Name() string {
	return CodecName
}
