package sessionsv1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSessionRequest_RoundTrip(t *testing.T) {
	t.Parallel()

	in := &CreateSessionRequest{Username: "alice", Password: "Password1!"}

	b, err := in.MarshalBinary()
	require.NoError(t, err)

	var out CreateSessionRequest
	require.NoError(t, out.UnmarshalBinary(b))
	require.Equal(t, *in, out)
}

func TestUnmarshal_RejectsTruncatedAndTrailingBytes(t *testing.T) {
	t.Parallel()

	in := &CreateSessionRequest{Username: "alice", Password: "Password1!"}
	b, err := in.MarshalBinary()
	require.NoError(t, err)

	var out CreateSessionRequest

	// Усечённая рамка.
	require.ErrorIs(t, out.UnmarshalBinary(b[:len(b)-1]), ErrInvalidMessage)
	require.ErrorIs(t, out.UnmarshalBinary([]byte{0x00}), ErrInvalidMessage)

	// Лишний хвост после последнего поля.
	require.ErrorIs(t, out.UnmarshalBinary(append(b, 0x00)), ErrInvalidMessage)
}

func TestRevokeSessionsResponse_BoolEncoding(t *testing.T) {
	t.Parallel()

	var out RevokeSessionsResponse
	require.NoError(t, out.UnmarshalBinary([]byte{0x01}))
	require.True(t, out.Ok)

	require.NoError(t, out.UnmarshalBinary([]byte{0x00}))
	require.False(t, out.Ok)

	// Любой байт кроме 0 и 1 — битая рамка.
	require.ErrorIs(t, out.UnmarshalBinary([]byte{0x02}), ErrInvalidMessage)
	require.ErrorIs(t, out.UnmarshalBinary(nil), ErrInvalidMessage)
}

func TestBinaryCodec_RequiresBinaryMessages(t *testing.T) {
	t.Parallel()

	var c binaryCodec
	require.Equal(t, CodecName, c.Name())

	_, err := c.Marshal("not a message")
	require.Error(t, err)

	require.Error(t, c.Unmarshal(nil, "not a message"))

	b, err := c.Marshal(&RefreshSessionRequest{Refresh: []byte("frame")})
	require.NoError(t, err)

	var out RefreshSessionRequest
	require.NoError(t, c.Unmarshal(b, &out))
	require.Equal(t, []byte("frame"), out.Refresh)
}
