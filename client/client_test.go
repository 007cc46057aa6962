package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pribylovaa/go-link-board/pkg/authcode"
	"github.com/pribylovaa/go-link-board/pkg/sessions"
	sessionsv1 "github.com/pribylovaa/go-link-board/pkg/sessionsv1"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// fakeConn подменяет gRPC-соединение: вызовы обрабатывает invoke,
// количество вызовов каждого метода считается.
type fakeConn struct {
	mu     sync.Mutex
	calls  map[string]int
	invoke func(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}

func newFakeConn(invoke func(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error) *fakeConn {
	return &fakeConn{calls: make(map[string]int), invoke: invoke}
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()

	return f.invoke(ctx, method, args, reply, opts...)
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	panic("streams are not used")
}

func (f *fakeConn) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[method]
}

// setTrailer доставляет trailer-метаданные в grpc.Trailer(&md) вызывающего.
func setTrailer(opts []grpc.CallOption, md metadata.MD) {
	for _, o := range opts {
		if tr, ok := o.(grpc.TrailerCallOption); ok {
			*tr.TrailerAddr = md
		}
	}
}

func authFailure(opts []grpc.CallOption, code authcode.Code) error {
	setTrailer(opts, metadata.Pairs(authcode.TrailerKey, string(code)))
	return status.Error(codes.Unauthenticated, "credential rejected")
}

func newServerManager(t *testing.T) *sessions.Manager {
	t.Helper()

	m, err := sessions.NewManager(
		[]byte("request-secret"),
		[]byte("refresh-secret"),
		10*time.Minute,
		90*24*time.Hour,
	)
	require.NoError(t, err)

	return m
}

func requestTokenExpiring(m *sessions.Manager, userID int32, expireAt time.Time) sessions.SignedToken {
	return m.CreateRequestSession(sessions.Session{
		UserID:   userID,
		Scope:    sessions.ScopeUser,
		IssuedAt: expireAt.Add(-10 * time.Minute).UnixMilli(),
		ExpireAt: expireAt.UnixMilli(),
	})
}

func TestLogin_StoresPair(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(_ context.Context, method string, _, reply any, _ ...grpc.CallOption) error {
		require.Equal(t, sessionsv1.SessionsService_CreateSession_FullMethodName, method)

		resp := reply.(*sessionsv1.SessionPairResponse)
		resp.Request = sessions.EncodeToken(m.CreateRequestToken(7))
		resp.Refresh = sessions.EncodeToken(m.CreateRefreshToken(7))
		return nil
	})

	store := NewMemoryStore()
	c := New(conn, store)

	require.NoError(t, c.Login(context.Background(), "alice", "Password1!"))

	request, ok := store.Request()
	require.True(t, ok)
	s, err := m.ParseRequestToken(request)
	require.NoError(t, err)
	require.Equal(t, int32(7), s.UserID)

	_, ok = store.Refresh()
	require.True(t, ok)
}

func TestLogin_RestoresAuthCode(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(func(_ context.Context, _ string, _, _ any, opts ...grpc.CallOption) error {
		return authFailure(opts, authcode.CodeUserNotFound)
	})

	c := New(conn, NewMemoryStore())

	err := c.Login(context.Background(), "ghost", "wrong")
	require.Error(t, err)

	code, ok := authCode(err)
	require.True(t, ok)
	require.Equal(t, authcode.CodeUserNotFound, code)
}

func TestEnsureRequestToken_NoTokens(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(func(context.Context, string, any, any, ...grpc.CallOption) error {
		t.Fatal("no network calls expected")
		return nil
	})

	c := New(conn, NewMemoryStore())

	// Анонимность разрешена — идем без токена.
	token, authed, err := c.EnsureRequestToken(context.Background(), false, true)
	require.NoError(t, err)
	require.False(t, authed)
	require.Empty(t, token.Data)

	// Анонимность запрещена — локальный отказ без сети.
	_, _, err = c.EnsureRequestToken(context.Background(), false, false)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestEnsureRequestToken_FreshToken_NoNetwork(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(context.Context, string, any, any, ...grpc.CallOption) error {
		t.Fatal("no network calls expected")
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(m.CreateRequestToken(7), m.CreateRefreshToken(7))

	c := New(conn, store)

	token, authed, err := c.EnsureRequestToken(context.Background(), false, false)
	require.NoError(t, err)
	require.True(t, authed)

	_, err = m.ParseRequestToken(token)
	require.NoError(t, err)
}

func TestEnsureRequestToken_NearExpiry_Refreshes(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(_ context.Context, method string, _, reply any, _ ...grpc.CallOption) error {
		require.Equal(t, sessionsv1.SessionsService_RefreshSession_FullMethodName, method)

		resp := reply.(*sessionsv1.TokenResponse)
		resp.Request = sessions.EncodeToken(m.CreateRequestToken(7))
		return nil
	})

	store := NewMemoryStore()
	// До истечения 5 секунд — меньше порога в 10.
	store.SetPair(
		requestTokenExpiring(m, 7, time.Now().UTC().Add(5*time.Second)),
		m.CreateRefreshToken(7),
	)

	c := New(conn, store)

	token, authed, err := c.EnsureRequestToken(context.Background(), false, false)
	require.NoError(t, err)
	require.True(t, authed)
	require.Equal(t, 1, conn.count(sessionsv1.SessionsService_RefreshSession_FullMethodName))

	// Возвращенный токен свеж и сохранен.
	_, err = m.ParseRequestToken(token)
	require.NoError(t, err)

	stored, ok := store.Request()
	require.True(t, ok)
	require.Equal(t, token, stored)
}

func TestEnsureRequestToken_Force_RefreshesFreshToken(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(_ context.Context, _ string, _, reply any, _ ...grpc.CallOption) error {
		resp := reply.(*sessionsv1.TokenResponse)
		resp.Request = sessions.EncodeToken(m.CreateRequestToken(7))
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(m.CreateRequestToken(7), m.CreateRefreshToken(7))

	c := New(conn, store)

	_, _, err := c.EnsureRequestToken(context.Background(), true, false)
	require.NoError(t, err)
	require.Equal(t, 1, conn.count(sessionsv1.SessionsService_RefreshSession_FullMethodName))
}

func TestEnsureRequestToken_CoalescesConcurrentRefreshes(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(_ context.Context, _ string, _, reply any, _ ...grpc.CallOption) error {
		// Держим обновление в полете, чтобы конкуренты успели подписаться.
		time.Sleep(100 * time.Millisecond)

		resp := reply.(*sessionsv1.TokenResponse)
		resp.Request = sessions.EncodeToken(m.CreateRequestToken(7))
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(
		requestTokenExpiring(m, 7, time.Now().UTC().Add(time.Second)),
		m.CreateRefreshToken(7),
	)

	c := New(conn, store)

	const goroutines = 16

	var wg sync.WaitGroup
	wg.Add(goroutines)

	var failures int32
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()

			_, authed, err := c.EnsureRequestToken(context.Background(), false, false)
			if err != nil || !authed {
				atomic.AddInt32(&failures, 1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, failures)
	require.Equal(t, 1, conn.count(sessionsv1.SessionsService_RefreshSession_FullMethodName))
}

func TestEnsureRequestToken_WaiterHonorsOwnContext(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	started := make(chan struct{})
	conn := newFakeConn(func(_ context.Context, _ string, _, reply any, _ ...grpc.CallOption) error {
		close(started)
		time.Sleep(100 * time.Millisecond)

		resp := reply.(*sessionsv1.TokenResponse)
		resp.Request = sessions.EncodeToken(m.CreateRequestToken(7))
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(
		requestTokenExpiring(m, 7, time.Now().UTC().Add(time.Second)),
		m.CreateRefreshToken(7),
	)

	c := New(conn, store)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := c.EnsureRequestToken(ctx, true, false)
		errCh <- err
	}()

	<-started
	cancel()

	// Ожидающий отваливается по своему контексту...
	require.ErrorIs(t, <-errCh, context.Canceled)

	// ...а само обновление доезжает до конца и сохраняет токен.
	require.Eventually(t, func() bool {
		stored, ok := store.Request()
		if !ok {
			return false
		}
		s, err := sessions.PeekSession(stored)
		return err == nil && time.UnixMilli(s.ExpireAt).After(time.Now().Add(time.Minute))
	}, time.Second, 10*time.Millisecond)
}

func TestUnaryAuthInterceptor_AttachesToken(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(context.Context, string, any, any, ...grpc.CallOption) error {
		t.Fatal("no refresh expected")
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(m.CreateRequestToken(7), m.CreateRefreshToken(7))

	c := New(conn, store)
	inter := c.UnaryAuthInterceptor(nil)

	var gotHeader []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		gotHeader = md.Get(authcode.AuthHeaderKey)
		return nil
	}

	err := inter(context.Background(), "/board.v1.PostsService/CreatePost", "req", nil, nil, invoker)
	require.NoError(t, err)

	require.Len(t, gotHeader, 1)
	token, err := sessions.DecodeToken([]byte(gotHeader[0]))
	require.NoError(t, err)
	s, err := m.ParseRequestToken(token)
	require.NoError(t, err)
	require.Equal(t, int32(7), s.UserID)
}

func TestUnaryAuthInterceptor_AnonymousMethodWithoutTokens(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(func(context.Context, string, any, any, ...grpc.CallOption) error {
		t.Fatal("no refresh expected")
		return nil
	})

	c := New(conn, NewMemoryStore())

	const method = "/board.v1.PostsService/ListPosts"
	inter := c.UnaryAuthInterceptor(map[string]bool{method: true})

	invoked := false
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		invoked = true
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(authcode.AuthHeaderKey))
		return nil
	}

	require.NoError(t, inter(context.Background(), method, "req", nil, nil, invoker))
	require.True(t, invoked)

	// Тот же вызов без права на анонимность — локальный отказ.
	strict := c.UnaryAuthInterceptor(nil)
	err := strict(context.Background(), method, "req", nil, nil, invoker)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUnaryAuthInterceptor_SilentRetryOnExpired(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(_ context.Context, method string, _, reply any, _ ...grpc.CallOption) error {
		require.Equal(t, sessionsv1.SessionsService_RefreshSession_FullMethodName, method)

		resp := reply.(*sessionsv1.TokenResponse)
		resp.Request = sessions.EncodeToken(m.CreateRequestToken(7))
		return nil
	})

	store := NewMemoryStore()
	// Локально токен выглядит живым, но сервер его уже не принимает
	// (часы клиента отстают).
	store.SetPair(m.CreateRequestToken(7), m.CreateRefreshToken(7))

	c := New(conn, store)
	inter := c.UnaryAuthInterceptor(nil)

	attempts := 0
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, opts ...grpc.CallOption) error {
		attempts++
		if attempts == 1 {
			return authFailure(opts, authcode.CodeExpiredToken)
		}
		return nil
	}

	err := inter(context.Background(), "/board.v1.PostsService/CreatePost", "req", nil, nil, invoker)
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, 1, conn.count(sessionsv1.SessionsService_RefreshSession_FullMethodName))
}

func TestUnaryAuthInterceptor_NoRetryOnInvalidToken(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(context.Context, string, any, any, ...grpc.CallOption) error {
		t.Fatal("no refresh expected")
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(m.CreateRequestToken(7), m.CreateRefreshToken(7))

	c := New(conn, store)
	inter := c.UnaryAuthInterceptor(nil)

	attempts := 0
	invoker := func(_ context.Context, _ string, _, _ any, _ *grpc.ClientConn, opts ...grpc.CallOption) error {
		attempts++
		return authFailure(opts, authcode.CodeInvalidToken)
	}

	err := inter(context.Background(), "/board.v1.PostsService/CreatePost", "req", nil, nil, invoker)
	require.Error(t, err)
	require.Equal(t, 1, attempts)

	code, ok := authCode(err)
	require.True(t, ok)
	require.Equal(t, authcode.CodeInvalidToken, code)
}

func TestLogout_ClearsTokens(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	conn := newFakeConn(func(_ context.Context, method string, _, reply any, _ ...grpc.CallOption) error {
		require.Equal(t, sessionsv1.SessionsService_RevokeSessions_FullMethodName, method)

		resp := reply.(*sessionsv1.RevokeSessionsResponse)
		resp.Ok = true
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(m.CreateRequestToken(7), m.CreateRefreshToken(7))

	c := New(conn, store)

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, 1, conn.count(sessionsv1.SessionsService_RevokeSessions_FullMethodName))

	_, ok := store.Request()
	require.False(t, ok)
	_, ok = store.Refresh()
	require.False(t, ok)
}

func TestLogout_WithoutSession_NoNetwork(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(func(context.Context, string, any, any, ...grpc.CallOption) error {
		t.Fatal("no network calls expected")
		return nil
	})

	c := New(conn, NewMemoryStore())

	require.NoError(t, c.Logout(context.Background()))
}

func TestUpdatePassword_StoresFreshPair(t *testing.T) {
	t.Parallel()

	m := newServerManager(t)

	var issued sessions.SignedToken
	conn := newFakeConn(func(_ context.Context, method string, _, reply any, _ ...grpc.CallOption) error {
		require.Equal(t, sessionsv1.SessionsService_UpdatePassword_FullMethodName, method)

		issued = m.CreateRequestToken(7)
		resp := reply.(*sessionsv1.SessionPairResponse)
		resp.Request = sessions.EncodeToken(issued)
		resp.Refresh = sessions.EncodeToken(m.CreateRefreshToken(7))
		return nil
	})

	store := NewMemoryStore()
	store.SetPair(m.CreateRequestToken(7), m.CreateRefreshToken(7))

	c := New(conn, store)

	require.NoError(t, c.UpdatePassword(context.Background(), "Password1!", "NewPassword2@"))

	stored, ok := store.Request()
	require.True(t, ok)
	require.Equal(t, issued, stored)
}
