package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/small-engineer/go-web-serv/recipe/internal/domain"
	"github.com/small-engineer/go-web-serv/recipe/internal/infra/mem"
)

var fixedNow = time.UnixMilli(1700000000123)

func newTestService(t *testing.T) (*Service, *mem.Store) {
	t.Helper()
	st := mem.NewStore()
	return NewService(st, WithClock(func() time.Time { return fixedNow })), st
}

func TestRegister_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	u, err := s.Register(ctx, "Jo", "jo@x.com", "abcdefgh")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 1700000000123, Name: "Jo", Email: "jo@x.com", Password: "abcdefgh"}, u)

	us, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{*u}, us)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)

	_, err := s.Register(ctx, "Jo", "jo@x.com", "abcdefgh")
	require.NoError(t, err)
	before, _, _ := st.Get(ctx, KeyUsers)

	_, err = s.Register(ctx, "Other", "jo@x.com", "12345678")
	assert.ErrorIs(t, err, ErrEmailExists)

	after, _, _ := st.Get(ctx, KeyUsers)
	assert.Equal(t, before, after)

	us, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, us, 1)
}

func TestRegister_EmailCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	_, err := s.Register(ctx, "Jo", "jo@x.com", "abcdefgh")
	require.NoError(t, err)
	_, err = s.Register(ctx, "Jo", "JO@x.com", "abcdefgh")
	require.NoError(t, err)

	us, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, us, 2)
}

func TestUsers_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	in := []domain.User{
		{ID: 1, Name: "Zoë \"Q\"", Email: "z@x.io", Password: "p@ss word\n"},
		{ID: 9007199254740993, Name: "", Email: "e@e.ee", Password: "12345678"},
	}
	require.NoError(t, s.saveUsers(ctx, in))

	out, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUsers_Corrupt(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	require.NoError(t, st.Set(ctx, KeyUsers, "{not json"))

	_, err := s.Users(ctx)
	assert.ErrorIs(t, err, ErrCorruptUsers)

	_, err = s.Register(ctx, "Jo", "jo@x.com", "abcdefgh")
	assert.ErrorIs(t, err, ErrCorruptUsers)
	raw, _, _ := st.Get(ctx, KeyUsers)
	assert.Equal(t, "{not json", raw)
}

func TestUsers_NullIsEmpty(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	require.NoError(t, st.Set(ctx, KeyUsers, "null"))

	us, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, us)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		seed    bool
		email   string
		pass    string
		wantErr error
	}{
		{name: "exact match", seed: true, email: "jo@x.com", pass: "abcdefgh"},
		{name: "wrong password", seed: true, email: "jo@x.com", pass: "wrong", wantErr: ErrInvalidCred},
		{name: "wrong email", seed: true, email: "no@x.com", pass: "abcdefgh", wantErr: ErrInvalidCred},
		{name: "email case differs", seed: true, email: "Jo@x.com", pass: "abcdefgh", wantErr: ErrInvalidCred},
		{name: "empty collection", email: "jo@x.com", pass: "abcdefgh", wantErr: ErrInvalidCred},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			if tt.seed {
				_, err := s.Register(ctx, "Jo", "jo@x.com", "abcdefgh")
				require.NoError(t, err)
			}

			u, err := s.Login(ctx, tt.email, tt.pass)
			cur, cerr := s.CurrentUser(ctx)
			require.NoError(t, cerr)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				assert.Nil(t, cur)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Jo", u.Name)
			assert.Equal(t, u, cur)
		})
	}
}

func TestLogin_FirstMatchWins(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	require.NoError(t, s.saveUsers(ctx, []domain.User{
		{ID: 1, Name: "first", Email: "a@b.co", Password: "abcdefgh"},
		{ID: 2, Name: "second", Email: "a@b.co", Password: "abcdefgh"},
	}))

	u, err := s.Login(ctx, "a@b.co", "abcdefgh")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)

	_, err := s.Register(ctx, "Jo", "jo@x.com", "abcdefgh")
	require.NoError(t, err)
	_, err = s.Login(ctx, "jo@x.com", "abcdefgh")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	_, ok, err := st.Get(ctx, KeySession)
	require.NoError(t, err)
	assert.False(t, ok)

	cur, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	us, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, us, 1)
}

func TestCurrentUser_Unreadable(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	require.NoError(t, st.Set(ctx, KeySession, "garbage"))

	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

type failingStore struct{}

var errBackend = errors.New("backend down")

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, errBackend }
func (failingStore) Set(context.Context, string, string) error         { return errBackend }
func (failingStore) Remove(context.Context, string) error              { return errBackend }

func TestService_StoreErrors(t *testing.T) {
	ctx := context.Background()
	s := NewService(failingStore{})

	_, err := s.Register(ctx, "Jo", "jo@x.com", "abcdefgh")
	assert.ErrorIs(t, err, errBackend)
	_, err = s.Login(ctx, "jo@x.com", "abcdefgh")
	assert.ErrorIs(t, err, errBackend)
	assert.ErrorIs(t, s.Logout(ctx), errBackend)
	_, err = s.CurrentUser(ctx)
	assert.ErrorIs(t, err, errBackend)
}
