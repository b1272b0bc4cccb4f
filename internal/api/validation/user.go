package validation

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const maxEmailLength = 320

// RegisterRequest mirrors the fields needed for registration validation.
type RegisterRequest struct {
	Email    string
	Password string
}

// ValidateRegisterRequest validates the fields of a registration request.
func ValidateRegisterRequest(req RegisterRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) > 72 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at most 72 bytes"})
	}

	return errs
}

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest checks that both credentials are present.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}

// CreateUserRequest mirrors the fields needed for admin user creation.
type CreateUserRequest struct {
	ID    *string
	Email string
}

// ValidateCreateUserRequest validates the fields of an admin create user request.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	var errs []FieldError

	if req.ID != nil {
		if _, err := uuid.Parse(*req.ID); err != nil {
			errs = append(errs, FieldError{Field: "id", Message: "id must be a valid UUID"})
		}
	}

	errs = append(errs, validateEmail(req.Email)...)

	return errs
}

func validateEmail(email string) []FieldError {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return []FieldError{{Field: "email", Message: "email is required"}}
	case len(email) > maxEmailLength:
		return []FieldError{{Field: "email", Message: "email must be at most 320 characters"}}
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return []FieldError{{Field: "email", Message: "email must be a valid address"}}
	}
	return nil
}
