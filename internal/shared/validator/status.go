package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/memberhub/registry-api/internal/model"
)

// ValidateMemberStatus accepts only the enumerated member statuses
// (pending, approved, rejected). The lifecycle service re-checks the same
// set for callers that bypass request binding.
func ValidateMemberStatus(fl validator.FieldLevel) bool {
	return model.IsValidStatus(fl.Field().String())
}
