package sessionsv1

// Токены во всех сообщениях передаются уже в сетевой рамке пакета sessions
// (uint16 len(data) | data | sign); транспортный слой их не интерпретирует.

// CreateSessionRequest — запрос на вход по имени и паролю.
type CreateSessionRequest struct {
	Username string
	Password string
}

// MarshalBinary реализует encoding.BinaryMarshaler.
func (m *CreateSessionRequest) MarshalBinary() ([]byte, error) {
	b, err := appendField(nil, []byte(m.Username))
	if err != nil {
		return nil, err
	}

	return appendField(b, []byte(m.Password))
}

// UnmarshalBinary реализует encoding.BinaryUnmarshaler.
func (m *CreateSessionRequest) UnmarshalBinary(b []byte) error {
	username, rest, err := readField(b)
	if err != nil {
		return err
	}

	password, rest, err := readField(rest)
	if err != nil {
		return err
	}

	if err := checkConsumed(rest); err != nil {
		return err
	}

	m.Username = string(username)
	m.Password = string(password)

	return nil
}

// SessionPairResponse — пара request+refresh токенов, выдаваемая при входе
// и при смене пароля.
type SessionPairResponse struct {
	Request []byte
	Refresh []byte
}

// MarshalBinary реализует encoding.BinaryMarshaler.
func (m *SessionPairResponse) MarshalBinary() ([]byte, error) {
	b, err := appendField(nil, m.Request)
	if err != nil {
		return nil, err
	}

	return appendField(b, m.Refresh)
}

// UnmarshalBinary реализует encoding.BinaryUnmarshaler.
func (m *SessionPairResponse) UnmarshalBinary(b []byte) error {
	request, rest, err := readField(b)
	if err != nil {
		return err
	}

	refresh, rest, err := readField(rest)
	if err != nil {
		return err
	}

	if err := checkConsumed(rest); err != nil {
		return err
	}

	m.Request = request
	m.Refresh = refresh

	return nil
}

// RefreshSessionRequest — запрос нового request-токена по refresh-токену.
type RefreshSessionRequest struct {
	Refresh []byte
}

// MarshalBinary реализует encoding.BinaryMarshaler.
func (m *RefreshSessionRequest) MarshalBinary() ([]byte, error) {
	return appendField(nil, m.Refresh)
}

// UnmarshalBinary реализует encoding.BinaryUnmarshaler.
func (m *RefreshSessionRequest) UnmarshalBinary(b []byte) error {
	refresh, rest, err := readField(b)
	if err != nil {
		return err
	}

	if err := checkConsumed(rest); err != nil {
		return err
	}

	m.Refresh = refresh

	return nil
}

// TokenResponse — одиночный request-токен.
type TokenResponse struct {
	Request []byte
}

// MarshalBinary реализует encoding.BinaryMarshaler.
func (m *TokenResponse) MarshalBinary() ([]byte, error) {
	return appendField(nil, m.Request)
}

// UnmarshalBinary реализует encoding.BinaryUnmarshaler.
func (m *TokenResponse) UnmarshalBinary(b []byte) error {
	request, rest, err := readField(b)
	if err != nil {
		return err
	}

	if err := checkConsumed(rest); err != nil {
		return err
	}

	m.Request = request

	return nil
}

// RevokeSessionsRequest — запрос отзыва всех сессий субъекта (logout-all).
// Субъект берётся из аутентифицированной сессии вызова, тело пустое.
type RevokeSessionsRequest struct{}

// MarshalBinary реализует encoding.BinaryMarshaler.
func (m *RevokeSessionsRequest) MarshalBinary() ([]byte, error) {
	return []byte{}, nil
}

// UnmarshalBinary реализует encoding.BinaryUnmarshaler.
func (m *RevokeSessionsRequest) UnmarshalBinary(b []byte) error {
	return checkConsumed(b)
}

// RevokeSessionsResponse — подтверждение отзыва.
type RevokeSessionsResponse struct {
	Ok bool
}

// MarshalBinary реализует encoding.BinaryMarshaler.
func (m *RevokeSessionsResponse) MarshalBinary() ([]byte, error) {
	return appendBool(nil, m.Ok), nil
}

// UnmarshalBinary реализует encoding.BinaryUnmarshaler.
func (m *RevokeSessionsResponse) UnmarshalBinary(b []byte) error {
	ok, rest, err := readBool(b)
	if err != nil {
		return err
	}

	if err := checkConsumed(rest); err != nil {
		return err
	}

	m.Ok = ok

	return nil
}

// UpdatePasswordRequest — запрос смены пароля. Субъект берётся из
// аутентифицированной сессии вызова.
type UpdatePasswordRequest struct {
	Current string
	Next    string
}

// MarshalBinary реализует encoding.BinaryMarshaler.
func (m *UpdatePasswordRequest) MarshalBinary() ([]byte, error) {
	b, err := appendField(nil, []byte(m.Current))
	if err != nil {
		return nil, err
	}

	return appendField(b, []byte(m.Next))
}

// UnmarshalBinary реализует encoding.BinaryUnmarshaler.
func (m *UpdatePasswordRequest) UnmarshalBinary(b []byte) error {
	current, rest, err := readField(b)
	if err != nil {
		return err
	}

	next, rest, err := readField(rest)
	if err != nil {
		return err
	}

	if err := checkConsumed(rest); err != nil {
		return err
	}

	m.Current = string(current)
	m.Next = string(next)

	return nil
}
