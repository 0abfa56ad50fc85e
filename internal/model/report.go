package model

import "time"

// ProfileReport is a user-submitted flag on a generated word profile.
type ProfileReport struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"userId"`
	Word        string    `gorm:"not null;size:255;index" json:"word"`
	IssueType   string    `gorm:"not null;size:50" json:"issueType"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"default:'pending';size:20" json:"status"`
	ReviewedBy  *int64    `json:"reviewedBy,omitempty"`
	ReviewNote  string    `gorm:"type:text" json:"reviewNote,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (ProfileReport) TableName() string {
	return "profile_reports"
}

// IssueType constants
const (
	IssueTypeDefinition = "definition"
	IssueTypeEtymology  = "etymology"
	IssueTypeMnemonic   = "mnemonic"
	IssueTypeExample    = "example"
	IssueTypeOther      = "other"
)

// Status constants
const (
	StatusPending   = "pending"
	StatusResolved  = "resolved"
	StatusDismissed = "dismissed"
)
