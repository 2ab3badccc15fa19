package model

import (
	"fmt"
	"time"
)

// Member statuses. Status is always one of these three values and may move
// between any of them; there is no forward-only progression.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Statuses lists the accepted member statuses in a fixed order.
var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

// IsValidStatus reports whether s is one of the enumerated member statuses.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Member represents a registrant in the system.
type Member struct {
	// Primary key - IDENTITY (auto-increment)
	ID uint32 `gorm:"column:id;primaryKey;autoIncrement"`

	// MemberID is a human-facing display code derived from the enrollment
	// timestamp. It is NOT guaranteed unique: two enrollments within the
	// same second produce the same code. The numeric ID is the identifier.
	MemberID string `gorm:"column:member_id;type:VARCHAR2(20);not null"`

	// Core fields
	FullName string `gorm:"column:full_name;type:VARCHAR2(100);not null"`
	Email    string `gorm:"column:email;type:VARCHAR2(255);not null;uniqueIndex:idx_member_email"`
	Phone    string `gorm:"column:phone;type:VARCHAR2(100);not null"`

	// Optional profile fields, empty string when absent
	BirthDate  string `gorm:"column:birth_date;type:VARCHAR2(30)"`
	BirthPlace string `gorm:"column:birth_place;type:VARCHAR2(100)"`
	Activity   string `gorm:"column:activity;type:VARCHAR2(255)"`
	IDNumber   string `gorm:"column:id_number;type:VARCHAR2(50)"`

	Status     string     `gorm:"column:status;type:VARCHAR2(20);not null;default:pending"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`

	// Root-relative references to stored files; nil when absent
	Photo  *string `gorm:"column:photo;type:VARCHAR2(255)"`
	QRCode *string `gorm:"column:qr_code;type:VARCHAR2(255)"`

	BaseEntity
}

// TableName specifies the table name for Member
func (*Member) TableName() string {
	return "member"
}

// NewMember creates a pending Member with a display code derived from now.
func NewMember(fullName, email, phone string, now time.Time) *Member {
	return &Member{
		MemberID: DisplayCode(now),
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Status:   StatusPending,
	}
}

// DisplayCode derives the human-facing member code from a timestamp: "MBR-"
// followed by the last 6 digits of the unix time.
func DisplayCode(t time.Time) string {
	return fmt.Sprintf("MBR-%06d", t.Unix()%1_000_000)
}
