package validation

import (
	"errors"

	"github.com/ideaforge/ideaforge/internal/idea"
)

// CreateIdeaRequest mirrors the fields needed for idea submission validation.
type CreateIdeaRequest struct {
	Title       string
	Description string
}

// ValidateCreateIdeaRequest validates the fields of an idea submission.
func ValidateCreateIdeaRequest(req CreateIdeaRequest) []FieldError {
	var errs []FieldError
	errs = append(errs, validateTitle(req.Title)...)
	errs = append(errs, validateDescription(req.Description)...)
	return errs
}

// UpdateIdeaRequest mirrors the fields of an admin idea edit. Nil means unchanged.
type UpdateIdeaRequest struct {
	Title       *string
	Description *string
	Status      *string
}

// ValidateUpdateIdeaRequest validates the supplied fields of an admin edit.
func ValidateUpdateIdeaRequest(req UpdateIdeaRequest) []FieldError {
	var errs []FieldError

	if req.Title == nil && req.Description == nil && req.Status == nil {
		return []FieldError{{Field: "body", Message: "at least one of title, description or status is required"}}
	}

	if req.Title != nil {
		errs = append(errs, validateTitle(*req.Title)...)
	}
	if req.Description != nil {
		errs = append(errs, validateDescription(*req.Description)...)
	}
	if req.Status != nil {
		errs = append(errs, validateStatus(*req.Status)...)
	}

	return errs
}

// UpdateStatusRequest mirrors the body of a status change.
type UpdateStatusRequest struct {
	Status string
}

// ValidateUpdateStatusRequest checks that status is one of the enumerated values.
func ValidateUpdateStatusRequest(req UpdateStatusRequest) []FieldError {
	if req.Status == "" {
		return []FieldError{{Field: "status", Message: "status is required"}}
	}
	return validateStatus(req.Status)
}

func validateTitle(title string) []FieldError {
	return ruleErrors(idea.CheckTitle(title))
}

func validateDescription(description string) []FieldError {
	return ruleErrors(idea.CheckDescription(description))
}

// ruleErrors converts a content rule violation from the idea package.
func ruleErrors(err error) []FieldError {
	var rule *idea.RuleError
	if errors.As(err, &rule) {
		return []FieldError{{Field: rule.Field, Message: rule.Message}}
	}
	return nil
}

func validateStatus(status string) []FieldError {
	if _, err := idea.ParseStatus(status); err != nil {
		return []FieldError{{Field: "status", Message: `status must be one of "pending", "approved", "rejected"`}}
	}
	return nil
}
