package model

// Moderator represents an admin account that reviews enrollments.
type Moderator struct {
	ID uint32 `gorm:"column:id;primaryKey;autoIncrement"`

	Email    string `gorm:"column:email;type:VARCHAR2(255);not null;uniqueIndex:idx_moderator_email"`
	Name     string `gorm:"column:name;type:VARCHAR2(100);not null"`
	Password string `gorm:"column:password;type:VARCHAR2(60);not null"` // bcrypt hash

	BaseEntity
}

// TableName specifies the table name for Moderator
func (*Moderator) TableName() string {
	return "moderator"
}
