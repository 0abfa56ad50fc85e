package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// UserSnapshot is the remote copy of a user's dataset: one row per user,
// whole snapshot as JSONB. History is mirrored into a text[] column so the
// audit and admin queries can reach it without unpacking the JSONB body.
type UserSnapshot struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64          `gorm:"not null;uniqueIndex" json:"userId"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	History   pq.StringArray `gorm:"type:text[]" json:"history"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (UserSnapshot) TableName() string {
	return "user_snapshots"
}
