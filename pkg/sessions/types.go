package sessions

// SessionScope — область действия ключа подписи, которому принадлежит сессия.
// Токены request- и refresh-области имеют одинаковую форму, но подписываются
// разными ключами и не взаимозаменяемы.
type SessionScope int32

const (
	// ScopeUser — обычная пользовательская сессия.
	ScopeUser SessionScope = 0
)

// Session — полезная нагрузка токена сессии.
//
// Описание:
//   - UserID — идентификатор субъекта;
//   - Scope — область действия (см. SessionScope);
//   - IssuedAt/ExpireAt — миллисекунды Unix-эпохи, UTC.
//
// Значение неизменяемо после выпуска: менеджер сессий создает его один раз
// и никогда не модифицирует.
type Session struct {
	UserID   int32
	Scope    SessionScope
	IssuedAt int64
	ExpireAt int64
}

// SignedToken — сериализованная Session вместе с MAC-подписью над ней.
// Единственное, что пересекает сетевую границу или хранится клиентом.
// Секретов не содержит; его целостность гарантируется только ключом
// проверяющей стороны.
type SignedToken struct {
	// Data — сериализованная полезная нагрузка (см. codec.go).
	Data []byte
	// Sign — HMAC над Data.
	Sign []byte
}

// TokenPair — пара токенов, выдаваемая при создании сессии.
//
//   - Request — короткоживущий токен, предъявляемый на обычных вызовах;
//   - Refresh — долгоживущий токен, используемый только для выпуска
//     нового request-токена.
type TokenPair struct {
	Request SignedToken
	Refresh SignedToken
}
