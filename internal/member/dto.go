package member

import (
	"time"

	"github.com/memberhub/registry-api/internal/model"
)

// Placeholder substituted for absent optional text fields in responses.
// A presentation convention only; the stored value stays empty.
const absentPlaceholder = "N/A"

// EnrollRequest is the multipart enrollment form. Required fields are
// validated by the enrollment coordinator, not by binding, so that a staged
// upload can be cleaned up on the failure path.
type EnrollRequest struct {
	FullName   string `form:"fullName"`
	Email      string `form:"email"`
	Phone      string `form:"phone"`
	BirthDate  string `form:"birthDate"`
	BirthPlace string `form:"birthPlace"`
	Activity   string `form:"activity"`
	IDNumber   string `form:"idNumber"`
}

// UpdateStatusRequest changes a member's moderation status. The lifecycle
// service re-validates the value for callers that bypass binding.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,memberstatus"`
}

// ListQuery carries the listing parameters shared by both response shapes.
type ListQuery struct {
	Search     string `form:"search"`
	SortColumn string `form:"sortColumn"`
	SortDir    string `form:"sortDir"`
	PageOffset int    `form:"pageOffset"`
	PageSize   int    `form:"pageSize"`
	Grid       bool   `form:"grid"`
}

type MemberResponse struct {
	ID         uint32     `json:"id"`
	MemberID   string     `json:"memberId"`
	FullName   string     `json:"fullName"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	BirthDate  string     `json:"birthDate"`
	BirthPlace string     `json:"birthPlace"`
	Activity   string     `json:"activity"`
	IDNumber   string     `json:"idNumber"`
	Status     string     `json:"status"`
	Photo      *string    `json:"photo"`
	QRCode     *string    `json:"qrCode"`
	ApprovedAt *time.Time `json:"approvedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// NewMemberResponse shapes a record for responses, substituting the
// documented placeholder for absent optional text fields.
func NewMemberResponse(m *model.Member) MemberResponse {
	return MemberResponse{
		ID:         m.ID,
		MemberID:   m.MemberID,
		FullName:   m.FullName,
		Email:      m.Email,
		Phone:      m.Phone,
		BirthDate:  orPlaceholder(m.BirthDate),
		BirthPlace: orPlaceholder(m.BirthPlace),
		Activity:   orPlaceholder(m.Activity),
		IDNumber:   orPlaceholder(m.IDNumber),
		Status:     m.Status,
		Photo:      m.Photo,
		QRCode:     m.QRCode,
		ApprovedAt: m.ApprovedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return absentPlaceholder
	}
	return s
}

// GridListResponse is the grid-widget shape: the page slice plus the
// unfiltered and filtered totals, each computed independently of the slice.
type GridListResponse struct {
	RecordsTotal    int64            `json:"recordsTotal"`
	RecordsFiltered int64            `json:"recordsFiltered"`
	Data            []MemberResponse `json:"data"`
}

// PlainListResponse reports only the count of items in the returned page.
type PlainListResponse struct {
	Count int              `json:"count"`
	Data  []MemberResponse `json:"data"`
}

// VerifyResponse is the minimal public projection behind the QR URL.
type VerifyResponse struct {
	MemberID string `json:"memberId"`
	FullName string `json:"fullName"`
	Status   string `json:"status"`
}
