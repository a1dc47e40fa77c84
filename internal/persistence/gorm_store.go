package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumeBuilder/internal/database"
)

// GormStore 使用 gorm 在 resumes 表上实现 Store。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, rec Record) (Record, error) {
	row := database.Resume{
		Name:   rec.Name,
		Data:   datatypes.JSON(rec.Data),
		UserID: rec.OwnerID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Record{}, fmt.Errorf("create resume: %w", err)
	}
	return toRecord(row), nil
}

func (s *GormStore) ListByOwner(ctx context.Context, ownerID uint) ([]Record, error) {
	var rows []database.Resume
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query resumes: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records, nil
}

func (s *GormStore) Get(ctx context.Context, ownerID, id uint) (Record, error) {
	var row database.Resume
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query resume: %w", err)
	}
	return toRecord(row), nil
}

// Find 不做归属校验，供后台任务使用。
func (s *GormStore) Find(ctx context.Context, id uint) (Record, error) {
	var row database.Resume
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query resume: %w", err)
	}
	return toRecord(row), nil
}

func toRecord(row database.Resume) Record {
	return Record{
		ID:        row.ID,
		OwnerID:   row.UserID,
		Name:      row.Name,
		Data:      []byte(row.Data),
		CreatedAt: row.CreatedAt,
	}
}
