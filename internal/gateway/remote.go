package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grevocab/api/internal/model"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists user snapshots in Postgres, one JSONB row per user.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, userID int64) (*model.Snapshot, error) {
	var row model.UserSnapshot
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(row.Data, &snap); err != nil {
		return nil, fmt.Errorf("corrupt remote snapshot for user %d: %w", userID, err)
	}
	if snap.WordCache == nil {
		snap.WordCache = map[string]model.WordProfile{}
	}
	return &snap, nil
}

func (s *GormStore) Save(ctx context.Context, userID int64, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	row := model.UserSnapshot{
		UserID:  userID,
		Data:    datatypes.JSON(data),
		History: pq.StringArray(snap.History),
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "history", "updated_at"}),
	}).Create(&row).Error
}
