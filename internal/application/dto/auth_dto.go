package dto

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return jsonName(fld.Tag.Get("json"), fld.Name)
		})
	})
	return validate
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate checks both credentials are present.
func (r *LoginRequest) Validate() error {
	return translate(getValidator().Struct(r))
}

// RegisterRequest 注册请求. ConfirmPassword is checked locally and never sent.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Organization    string `json:"organization,omitempty"`
}

// Validate applies the local registration rules. A password mismatch is
// reported ahead of any other problem.
func (r *RegisterRequest) Validate() error {
	return translate(getValidator().Struct(r))
}

// AuthResponse is the body of /auth/login and /auth/register: the bearer
// token alongside the profile fields.
type AuthResponse struct {
	Token string `json:"token"`
	models.UserProfile
}

// Split separates the token from the profile that gets persisted.
func (a *AuthResponse) Split() (string, models.UserProfile) {
	return a.Token, a.UserProfile
}

// translate turns validator output into a single ClientError with the
// message a user would see.
func translate(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.ErrValidation(err.Error())
	}

	for _, fe := range verrs {
		if fe.Tag() == "eqfield" {
			return errors.ErrValidation("Passwords do not match").WithMetadata("field", fe.Field())
		}
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "email":
		msg = "Please enter a valid email address"
	case "min":
		if fe.StructField() == "Password" {
			msg = "Password must be at least " + fe.Param() + " characters long"
		} else {
			msg = fe.Field() + " must be at least " + fe.Param() + " characters long"
		}
	default:
		msg = fe.Field() + " is invalid"
	}
	return errors.ErrValidation(msg).WithMetadata("field", fe.Field())
}

func jsonName(tag, fallback string) string {
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "" || name == "-" {
		return fallback
	}
	return name
}
