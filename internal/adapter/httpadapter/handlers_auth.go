package httpadapter

import (
	"errors"
	"net/http"

	"github.com/small-engineer/go-web-serv/recipe/internal/form"
	"github.com/small-engineer/go-web-serv/recipe/internal/nav"
	"github.com/small-engineer/go-web-serv/recipe/internal/usecase/auth"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) handleForm(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderForm(w, r, p, nil, nil)
	}
}

// renderForm renders p with the navigation for the current session.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, p page, vals form.Values, errs form.Errors) {
	u, err := s.authFor(r).CurrentUser(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, p, view{
		Nav:  nav.Render(nav.DefaultBar(), u),
		User: u,
		Form: newFormView(p, vals, errs),
	})
}

// handleSubmit validates a posted form and dispatches a valid one by outcome.
// Invalid forms are shown again with every failing field marked.
func (s *Server) handleSubmit(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		vals := form.FromURL(r.PostForm)

		errs, ok := p.schema.Validate(vals)
		if !ok {
			s.renderForm(w, r, p, vals, errs)
			return
		}

		switch p.schema.Outcome() {
		case form.OutcomeRegister:
			s.register(w, r, p, vals)
		case form.OutcomeLogin:
			s.login(w, r, p, vals)
		default:
			s.renderForm(w, r, p, nil, nil)
		}
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, p page, vals form.Values) {
	_, err := s.authFor(r).Register(r.Context(),
		vals.Get(form.FieldFullName),
		vals.Get(form.FieldRegisterEmail),
		vals.Get(form.FieldRegisterPassword),
	)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			s.renderFieldError(w, r, p, vals, form.FieldRegisterEmail, msgEmailTaken)
			return
		}
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, nav.PathLogin, http.StatusFound)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, p page, vals form.Values) {
	_, err := s.authFor(r).Login(r.Context(),
		vals.Get(form.FieldLoginEmail),
		vals.Get(form.FieldLoginPassword),
	)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCred) {
			s.renderFieldError(w, r, p, vals, form.FieldLoginEmail, msgInvalidLogin)
			return
		}
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, nav.PathDashboard, http.StatusFound)
}

func (s *Server) renderFieldError(w http.ResponseWriter, r *http.Request, p page, vals form.Values, field, msg string) {
	errs := form.Errors{}
	if f, ok := p.schema.Field(field); ok {
		errs.Set(f, msg)
	}
	s.renderForm(w, r, p, vals, errs)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, err := s.authFor(r).CurrentUser(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if u == nil {
		http.Redirect(w, r, nav.PathLogin, http.StatusFound)
		return
	}
	s.render(w, r, dashboardPage, view{
		Nav:  nav.Render(nav.DefaultBar(), u),
		User: u,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.authFor(r).Logout(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, nav.PathHome, http.StatusFound)
}
