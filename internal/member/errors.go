package member

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/memberhub/registry-api/internal/model"
	sharedError "github.com/memberhub/registry-api/internal/shared/error"
)

const (
	memberNotFound = "MEMBER_NOT_FOUND" // errInfo
	emailTaken     = "MEMBER_EMAIL_TAKEN"
	missingFields  = "MEMBER_MISSING_FIELDS"
	invalidStatus  = "MEMBER_INVALID_STATUS"
	photoNotFound  = "MEMBER_PHOTO_NOT_FOUND"
)

var (
	ErrMemberNotFound = sharedError.NewDomainError(memberNotFound)
	ErrEmailTaken     = sharedError.NewDomainError(emailTaken)
	ErrMissingFields  = sharedError.NewDomainError(missingFields)
	ErrInvalidStatus  = sharedError.NewDomainError(invalidStatus)
	ErrPhotoNotFound  = sharedError.NewDomainError(photoNotFound)
)

func init() {
	sharedError.RegisterDomainErrorResponse(memberNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "MEMBER-001",
		Message: "Member not found.",
	})

	sharedError.RegisterDomainErrorResponse(emailTaken, sharedError.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "MEMBER-002",
		Message: "A member with this email already exists",
	})

	sharedError.RegisterDomainErrorResponse(missingFields, sharedError.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "MEMBER-003",
		Message: "Full name, email and phone are required.",
	})

	sharedError.RegisterDomainErrorResponse(invalidStatus, sharedError.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "MEMBER-004",
		Message: fmt.Sprintf("Invalid status. Must be one of: %s.", strings.Join(model.Statuses, ", ")),
	})

	sharedError.RegisterDomainErrorResponse(photoNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "MEMBER-005",
		Message: "Photo not found.",
	})
}
