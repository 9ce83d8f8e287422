package httpadapter

import (
	"github.com/small-engineer/go-web-serv/recipe/internal/domain"
	"github.com/small-engineer/go-web-serv/recipe/internal/form"
	"github.com/small-engineer/go-web-serv/recipe/internal/nav"
)

const (
	msgEmailTaken   = "This email is already registered."
	msgInvalidLogin = "Invalid email or password."
)

// page is a rendered page and, for form pages, the form it accepts.
type page struct {
	tmpl   string
	title  string
	path   string
	submit string
	schema *form.Schema
}

var (
	homePage = page{
		tmpl:   "home",
		title:  "Home",
		path:   nav.PathHome,
		submit: "Send",
		schema: form.MustCompile(
			form.Field{Name: "contactName", Label: "Your name", Type: "text", Roles: form.Required},
			form.Field{Name: "contactEmail", Label: "Email", Type: "email", Roles: form.Required | form.Email},
			form.Field{Name: "contactMessage", Label: "Message", Type: "textarea", Roles: form.Required},
		),
	}

	loginPage = page{
		tmpl:   "login",
		title:  "Login",
		path:   nav.PathLogin,
		submit: "Login",
		schema: form.MustCompile(
			form.Field{Name: form.FieldLoginEmail, Label: "Email", Type: "email", Roles: form.Required | form.Email},
			form.Field{Name: form.FieldLoginPassword, Label: "Password", Type: "password", Roles: form.Required},
		),
	}

	registerPage = page{
		tmpl:   "register",
		title:  "Register",
		path:   nav.PathRegister,
		submit: "Register",
		schema: form.MustCompile(
			form.Field{Name: form.FieldFullName, Label: "Full name", Type: "text", Roles: form.Required},
			form.Field{Name: form.FieldRegisterEmail, Label: "Email", Type: "email", Roles: form.Required | form.Email},
			form.Field{Name: form.FieldRegisterPassword, Label: "Password", Type: "password", Roles: form.Required | form.Password},
			form.Field{Name: "confirmPassword", Label: "Confirm password", Type: "password", Roles: form.Required | form.Confirm},
		),
	}

	dashboardPage = page{
		tmpl:  "dashboard",
		title: "Dashboard",
		path:  nav.PathDashboard,
	}
)

type view struct {
	Title string
	Nav   nav.Bar
	User  *domain.User
	Form  *formView
}

type formView struct {
	Action string
	Submit string
	Fields []fieldView
}

type fieldView struct {
	form.Field
	Value string
	Error string
}

// newFormView fills p's fields with submitted values and errors. Password
// inputs are never echoed back.
func newFormView(p page, vals form.Values, errs form.Errors) *formView {
	if p.schema == nil {
		return nil
	}
	fv := &formView{
		Action: p.path,
		Submit: p.submit,
	}
	for _, f := range p.schema.Fields() {
		v := fieldView{
			Field: f,
			Error: errs[f.Name],
		}
		if f.Type != "password" {
			v.Value = vals.Get(f.Name)
		}
		fv.Fields = append(fv.Fields, v)
	}
	return fv
}
