// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package forms reads and validates the account HTML forms.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the key for errors that belong to the form as a whole
const NonFieldErrors = "__all__"

// Messages shown next to invalid fields
const (
	MsgRequired        = "This field is required."
	MsgInvalidEmail    = "Enter a valid email address."
	MsgUsernameTaken   = "A user with that username already exists."
	MsgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgInvalidLogin    = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgMaxLengthFmt    = "Ensure this value has at most %s characters (it has %d)."
	msgInvalidDefault  = "Enter a valid value."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Errors maps a field name to its validation messages
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the messages for field; templates call it as .Errors.Get "email"
func (e Errors) Get(field string) []string {
	return e[field]
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// Registration is the sign-up form
type Registration struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password  string `form:"password" validate:"required,max=128"`
}

// Login is the sign-in form
type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Profile is the profile edit form
type Profile struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
}

// NewRegistration reads the sign-up form from a parsed request body.
// Text inputs are trimmed, passwords are kept as typed.
func NewRegistration(r *http.Request) Registration {
	return Registration{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password:  r.PostFormValue("password"),
	}
}

func NewLogin(r *http.Request) Login {
	return Login{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

func NewProfile(r *http.Request) Profile {
	return Profile{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
	}
}

// Validate checks form against its validate tags and returns the field
// errors. The result is empty, never nil, when the form is valid.
func Validate(form any) Errors {
	errs := Errors{}

	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonFieldErrors, err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "username":
		return MsgInvalidUsername
	case "max":
		s, _ := fe.Value().(string)
		return fmt.Sprintf(msgMaxLengthFmt, fe.Param(), utf8.RuneCountInString(s))
	}
	return msgInvalidDefault
}
