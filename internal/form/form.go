// Package form validates submitted forms before they reach a handler.
//
// A form is declared once as a list of fields. Compile resolves which field plays
// each validation role and which outcome a valid submission dispatches to, so the
// per-request path only looks values up by name.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Role marks what a field is checked for. Roles combine as flags.
type Role uint8

const (
	Required Role = 1 << iota
	Email
	Password
	Confirm
)

const (
	MsgRequired = "This field is required."
	MsgEmail    = "Enter a valid email address."
	MsgPassword = "Password must be at least 8 characters."
	MsgConfirm  = "Passwords do not match."
)

const MinPasswordLen = 8

// Identifying fields.
const (
	FieldFullName         = "fullName"
	FieldRegisterEmail    = "registerEmail"
	FieldRegisterPassword = "registerPassword"
	FieldLoginEmail       = "loginEmail"
	FieldLoginPassword    = "loginPassword"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Outcome is what a valid submission is dispatched to.
type Outcome int

const (
	OutcomeReset Outcome = iota
	OutcomeRegister
	OutcomeLogin
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRegister:
		return "register"
	case OutcomeLogin:
		return "login"
	default:
		return "reset"
	}
}

type Field struct {
	Name  string
	Label string
	Type  string
	Roles Role
	// NoErrorSlot fields have nowhere to show a message; errors set on them are dropped.
	NoErrorSlot bool
}

func (f Field) Has(r Role) bool {
	return f.Roles&r != 0
}

// Schema is a compiled form.
type Schema struct {
	fields   []Field
	byName   map[string]int
	required []int
	email    int
	password int
	confirm  int
	outcome  Outcome
}

var (
	ErrDuplicateField = errors.New("duplicate field name")
	ErrDuplicateRole  = errors.New("role assigned to more than one field")
)

// Compile resolves field roles. Email, Password and Confirm may each be held by
// at most one field.
func Compile(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields:   fields,
		byName:   make(map[string]int, len(fields)),
		email:    -1,
		password: -1,
		confirm:  -1,
	}
	for i, f := range fields {
		if _, ok := s.byName[f.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		s.byName[f.Name] = i

		if f.Has(Required) {
			s.required = append(s.required, i)
		}
		for _, slot := range []struct {
			role Role
			idx  *int
		}{
			{Email, &s.email},
			{Password, &s.password},
			{Confirm, &s.confirm},
		} {
			if !f.Has(slot.role) {
				continue
			}
			if *slot.idx >= 0 {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateRole, f.Name)
			}
			*slot.idx = i
		}
	}

	switch {
	case s.hasField(FieldFullName):
		s.outcome = OutcomeRegister
	case s.hasField(FieldLoginEmail):
		s.outcome = OutcomeLogin
	default:
		s.outcome = OutcomeReset
	}
	return s, nil
}

func MustCompile(fields ...Field) *Schema {
	s, err := Compile(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) hasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *Schema) Fields() []Field {
	return s.fields
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *Schema) Outcome() Outcome {
	return s.outcome
}

// Validate runs every check against v, collecting all failures instead of stopping
// at the first. ok is false when any check failed, including checks on fields whose
// message has nowhere to go. errs is always a fresh value.
func (s *Schema) Validate(v Values) (errs Errors, ok bool) {
	errs = Errors{}
	ok = true
	fail := func(f Field, msg string) {
		ok = false
		errs.Set(f, msg)
	}

	for _, i := range s.required {
		f := s.fields[i]
		if v.Get(f.Name) == "" {
			fail(f, MsgRequired)
		}
	}

	if s.email >= 0 {
		f := s.fields[s.email]
		if val := v.Get(f.Name); val != "" && !emailPattern.MatchString(val) {
			fail(f, MsgEmail)
		}
	}

	var pw string
	if s.password >= 0 {
		f := s.fields[s.password]
		pw = v.Get(f.Name)
		if pw != "" && utf8.RuneCountInString(pw) < MinPasswordLen {
			fail(f, MsgPassword)
		}
	}

	if s.confirm >= 0 && s.password >= 0 {
		f := s.fields[s.confirm]
		if c := v.Get(f.Name); c != "" && pw != "" && c != pw {
			fail(f, MsgConfirm)
		}
	}

	return errs, ok
}

// Values holds submitted field values.
type Values map[string]string

// FromURL keeps the first value of every key.
func FromURL(u url.Values) Values {
	v := make(Values, len(u))
	for k := range u {
		v[k] = u.Get(k)
	}
	return v
}

// Get returns the trimmed value of a field.
func (v Values) Get(name string) string {
	return strings.TrimSpace(v[name])
}

// Errors maps field names to the message shown in their error slot.
type Errors map[string]string

// Set shows msg for f, replacing any earlier message. A no-op for fields
// without an error slot.
func (e Errors) Set(f Field, msg string) {
	if f.NoErrorSlot {
		return
	}
	e[f.Name] = msg
}
