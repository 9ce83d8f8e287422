package httpadapter

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/small-engineer/go-web-serv/recipe/internal/nav"
	"github.com/small-engineer/go-web-serv/recipe/internal/storage"
	"github.com/small-engineer/go-web-serv/recipe/internal/usecase/auth"
)

//go:embed templates/*.html
var templates embed.FS

const profileCookie = "profile"

type Options struct {
	// Secret signs profile cookies and keys CSRF protection.
	Secret     []byte
	ProfileTTL time.Duration
	// Secure marks cookies Secure; off in development.
	Secure         bool
	TrustedOrigins []string
	Now            func() time.Time
}

type Server struct {
	store  storage.Store
	t      map[string]*template.Template
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
	log    *zap.Logger
	csrf   func(http.Handler) http.Handler
}

type profileClaims struct {
	jwt.RegisteredClaims
}

func loadTmpl() (map[string]*template.Template, error) {
	m := make(map[string]*template.Template)
	for _, p := range []page{homePage, loginPage, registerPage, dashboardPage} {
		t, err := template.ParseFS(templates, "templates/layout.html", "templates/"+p.tmpl+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p.tmpl, err)
		}
		m[p.tmpl] = t
	}
	return m, nil
}

// NewServer serves the site over st. Every visitor's keys are kept under a
// namespace of st chosen by their profile cookie.
func NewServer(st storage.Store, opts Options, log *zap.Logger) (*Server, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("secret is not set")
	}
	t, err := loadTmpl()
	if err != nil {
		return nil, err
	}
	if opts.ProfileTTL <= 0 {
		opts.ProfileTTL = 365 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		store:  st,
		t:      t,
		key:    opts.Secret,
		ttl:    opts.ProfileTTL,
		secure: opts.Secure,
		now:    opts.Now,
		log:    log,
		csrf:   newCSRF(opts.Secret, opts.TrustedOrigins, log),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.csrf)
		r.Use(s.withProfile)

		r.Get(nav.PathHome, s.handleForm(homePage))
		r.Post(nav.PathHome, s.handleSubmit(homePage))
		r.Get(nav.PathLogin, s.handleForm(loginPage))
		r.Post(nav.PathLogin, s.handleSubmit(loginPage))
		r.Get(nav.PathRegister, s.handleForm(registerPage))
		r.Post(nav.PathRegister, s.handleSubmit(registerPage))
		r.Get(nav.PathDashboard, s.handleDashboard)
		r.Get(nav.PathLogout, s.handleLogout)
		r.Post(nav.PathLogout, s.handleLogout)
	})
	return r
}

type ctxKey int

const profileKey ctxKey = iota

// authFor returns the auth service bound to the request's profile namespace.
func (s *Server) authFor(r *http.Request) *auth.Service {
	id, _ := r.Context().Value(profileKey).(string)
	st := storage.WithPrefix(s.store, "profile:"+id+":")
	return auth.NewService(st,
		auth.WithClock(s.now),
		auth.WithLogger(s.log.With(zap.String("profile", id))),
	)
}

func withProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileKey, id)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, p page, v view) {
	t, ok := s.t[p.tmpl]
	if !ok {
		s.internalError(w, r, fmt.Errorf("no template %q", p.tmpl))
		return
	}
	v.Title = p.title

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		s.internalError(w, r, fmt.Errorf("template %s: %w", p.tmpl, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) issueToken(profile string) (string, error) {
	now := s.now()
	cl := profileClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	return tok.SignedString(s.key)
}

func (s *Server) parseToken(tok string) (*profileClaims, error) {
	p, err := jwt.ParseWithClaims(tok, &profileClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Method.Alg())
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	cl, ok := p.Claims.(*profileClaims)
	if !ok || !p.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := uuid.Parse(cl.Subject); err != nil {
		return nil, fmt.Errorf("profile id: %w", err)
	}
	return cl, nil
}
