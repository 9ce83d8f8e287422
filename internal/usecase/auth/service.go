package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/small-engineer/go-web-serv/recipe/internal/domain"
	"github.com/small-engineer/go-web-serv/recipe/internal/storage"
)

const (
	KeyUsers   = "users"
	KeySession = "currentUser"
)

var (
	ErrInvalidCred  = errors.New("invalid credentials")
	ErrEmailExists  = errors.New("email already exists")
	ErrCorruptUsers = errors.New("stored user collection is unreadable")
)

type Service struct {
	store storage.Store
	now   func() time.Time
	log   *zap.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(st storage.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Users loads the user collection. A missing key is an empty collection.
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	raw, ok, err := s.store.Get(ctx, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if !ok {
		return []domain.User{}, nil
	}
	var us []domain.User
	if err := json.Unmarshal([]byte(raw), &us); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptUsers, err)
	}
	if us == nil {
		us = []domain.User{}
	}
	return us, nil
}

func (s *Service) saveUsers(ctx context.Context, us []domain.User) error {
	b, err := json.Marshal(us)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyUsers, string(b)); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// Register appends a new user. Emails are compared exactly, case included.
func (s *Service) Register(ctx context.Context, name, email, pass string) (*domain.User, error) {
	us, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range us {
		if u.Email == email {
			return nil, ErrEmailExists
		}
	}

	u := domain.User{
		ID:       s.now().UnixMilli(),
		Name:     name,
		Email:    email,
		Password: pass,
	}
	us = append(us, u)
	if err := s.saveUsers(ctx, us); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.Int("users", len(us)))
	return &u, nil
}

// Login finds the first user matching email and password and stores it as the
// session record.
func (s *Service) Login(ctx context.Context, email, pass string) (*domain.User, error) {
	us, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}

	var found *domain.User
	for i := range us {
		if us[i].Email == email && us[i].Password == pass {
			found = &us[i]
			break
		}
	}
	if found == nil {
		return nil, ErrInvalidCred
	}

	b, err := json.Marshal(found)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, KeySession, string(b)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("user logged in", zap.Int64("user_id", found.ID))
	return found, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Remove(ctx, KeySession); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// CurrentUser returns the session user, or nil when there is none. An unreadable
// session record counts as no session.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	raw, ok, err := s.store.Get(ctx, KeySession)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var u *domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("ignoring unreadable session record", zap.Error(err))
		return nil, nil
	}
	return u, nil
}
