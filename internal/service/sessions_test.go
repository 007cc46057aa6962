package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pribylovaa/go-link-board/internal/models"
	"github.com/pribylovaa/go-link-board/internal/storage"
	"github.com/pribylovaa/go-link-board/mocks"
	"github.com/pribylovaa/go-link-board/pkg/sessions"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockBlockedSessions, *sessions.Manager) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockStorage(ctrl)
	blocked := mocks.NewMockBlockedSessions(ctrl)

	manager, err := sessions.NewManager(
		[]byte("request-secret"),
		[]byte("refresh-secret"),
		10*time.Minute,
		90*24*time.Hour,
	)
	require.NoError(t, err)

	return New(st, manager, blocked), st, blocked, manager
}

func hashOf(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func TestCreateSession_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, manager := newSvc(t)

	st.EXPECT().UserByUsername(gomock.Any(), "alice").Return(&models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hashOf(t, "Password1!"),
	}, nil)

	pair, err := svc.CreateSession(context.Background(), "alice", "Password1!")
	require.NoError(t, err)
	require.NotNil(t, pair)

	// Оба токена выпущены для субъекта и проходят проверку своей областью.
	s, err := manager.ParseRequestToken(pair.Request)
	require.NoError(t, err)
	require.Equal(t, int32(7), s.UserID)

	s, err = manager.ParseRefreshToken(pair.Refresh)
	require.NoError(t, err)
	require.Equal(t, int32(7), s.UserID)
}

func TestCreateSession_EmptyCredentials(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newSvc(t)

	// До хранилища дело не доходит.
	_, err := svc.CreateSession(context.Background(), "", "Password1!")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.CreateSession(context.Background(), "alice", "")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateSession_UnknownUser(t *testing.T) {
	t.Parallel()

	svc, st, _, _ := newSvc(t)

	st.EXPECT().UserByUsername(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)

	_, err := svc.CreateSession(context.Background(), "ghost", "Password1!")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateSession_WrongPassword_SameOutcome(t *testing.T) {
	t.Parallel()

	svc, st, _, _ := newSvc(t)

	st.EXPECT().UserByUsername(gomock.Any(), "alice").Return(&models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hashOf(t, "Password1!"),
	}, nil)

	// Неверный пароль снаружи неотличим от неизвестного имени.
	_, err := svc.CreateSession(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshSession_OK(t *testing.T) {
	t.Parallel()

	svc, _, blocked, manager := newSvc(t)

	refresh := manager.CreateRefreshToken(7)
	blocked.EXPECT().BlockedSince(gomock.Any(), int32(7), gomock.Any()).Return(false, nil)

	token, err := svc.RefreshSession(context.Background(), refresh)
	require.NoError(t, err)

	s, err := manager.ParseRequestToken(token)
	require.NoError(t, err)
	require.Equal(t, int32(7), s.UserID)
}

func TestRefreshSession_Expired(t *testing.T) {
	t.Parallel()

	svc, _, _, manager := newSvc(t)

	issued := time.Now().UTC().Add(-2 * time.Hour)
	expired := manager.CreateRefreshSession(sessions.Session{
		UserID:   7,
		Scope:    sessions.ScopeUser,
		IssuedAt: issued.UnixMilli(),
		ExpireAt: issued.Add(time.Hour).UnixMilli(),
	})

	_, err := svc.RefreshSession(context.Background(), expired)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshSession_Tampered(t *testing.T) {
	t.Parallel()

	svc, _, _, manager := newSvc(t)

	refresh := manager.CreateRefreshToken(7)
	refresh.Sign[0] ^= 0x01

	_, err := svc.RefreshSession(context.Background(), refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshSession_RequestTokenRejected(t *testing.T) {
	t.Parallel()

	svc, _, _, manager := newSvc(t)

	// Request-токен не принимается на месте refresh-токена.
	request := manager.CreateRequestToken(7)

	_, err := svc.RefreshSession(context.Background(), request)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshSession_BlockedSinceIssue(t *testing.T) {
	t.Parallel()

	svc, _, blocked, manager := newSvc(t)

	refresh := manager.CreateRefreshToken(7)
	blocked.EXPECT().BlockedSince(gomock.Any(), int32(7), gomock.Any()).Return(true, nil)

	_, err := svc.RefreshSession(context.Background(), refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshSession_CacheErrorPropagates(t *testing.T) {
	t.Parallel()

	svc, _, blocked, manager := newSvc(t)

	cacheErr := errors.New("cache down")
	refresh := manager.CreateRefreshToken(7)
	blocked.EXPECT().BlockedSince(gomock.Any(), int32(7), gomock.Any()).Return(false, cacheErr)

	_, err := svc.RefreshSession(context.Background(), refresh)
	require.ErrorIs(t, err, cacheErr)
	require.NotErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeSessions_OK(t *testing.T) {
	t.Parallel()

	svc, _, blocked, _ := newSvc(t)

	blocked.EXPECT().Block(gomock.Any(), int32(7)).Return(nil)

	require.NoError(t, svc.RevokeSessions(context.Background(), 7))
}

func TestRevokeSessions_CacheError(t *testing.T) {
	t.Parallel()

	svc, _, blocked, _ := newSvc(t)

	cacheErr := errors.New("cache down")
	blocked.EXPECT().Block(gomock.Any(), int32(7)).Return(cacheErr)

	err := svc.RevokeSessions(context.Background(), 7)
	require.ErrorIs(t, err, cacheErr)
}

func TestUpdatePassword_OK_BlocksOldSessions(t *testing.T) {
	t.Parallel()

	svc, st, blocked, manager := newSvc(t)

	const current = "Password1!"
	const next = "NewPassword2@"

	st.EXPECT().UserByID(gomock.Any(), int32(7)).Return(&models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hashOf(t, current),
	}, nil)

	// Порядок обязателен: сначала новый хэш в хранилище, потом блокировка.
	gomock.InOrder(
		st.EXPECT().
			UpdatePassword(gomock.Any(), int32(7), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int32, hash string) error {
				require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(next)))
				return nil
			}),
		blocked.EXPECT().Block(gomock.Any(), int32(7)).Return(nil),
	)

	pair, err := svc.UpdatePassword(context.Background(), 7, current, next)
	require.NoError(t, err)
	require.NotNil(t, pair)

	// Свежая пара валидна.
	_, err = manager.ParseRequestToken(pair.Request)
	require.NoError(t, err)
	_, err = manager.ParseRefreshToken(pair.Refresh)
	require.NoError(t, err)
}

func TestUpdatePassword_PasswordPolicy(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newSvc(t)

	_, err := svc.UpdatePassword(context.Background(), 7, "Password1!", "")
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = svc.UpdatePassword(context.Background(), 7, "Password1!", "short1!")
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.UpdatePassword(context.Background(), 7, "Password1!", "alllowercase1!")
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.UpdatePassword(context.Background(), 7, "Password1!", "NoDigitsHere!")
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.UpdatePassword(context.Background(), 7, "Password1!", "NoSpecials11")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	t.Parallel()

	svc, st, _, _ := newSvc(t)

	st.EXPECT().UserByID(gomock.Any(), int32(7)).Return(&models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hashOf(t, "Password1!"),
	}, nil)

	_, err := svc.UpdatePassword(context.Background(), 7, "wrong", "NewPassword2@")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdatePassword_BlockErrorPropagates(t *testing.T) {
	t.Parallel()

	svc, st, blocked, _ := newSvc(t)

	cacheErr := errors.New("cache down")

	st.EXPECT().UserByID(gomock.Any(), int32(7)).Return(&models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hashOf(t, "Password1!"),
	}, nil)
	st.EXPECT().UpdatePassword(gomock.Any(), int32(7), gomock.Any()).Return(nil)
	blocked.EXPECT().Block(gomock.Any(), int32(7)).Return(cacheErr)

	_, err := svc.UpdatePassword(context.Background(), 7, "Password1!", "NewPassword2@")
	require.ErrorIs(t, err, cacheErr)
}
