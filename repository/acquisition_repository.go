package repository

import (
	"fmt"

	"gorm.io/gorm"

	"Bt1QDL/model"
)

// AcquisitionRepository records terminal acquisition outcomes.
type AcquisitionRepository interface {
	Append(rec *model.AcquisitionRecord) error
	Recent(limit int) ([]model.AcquisitionRecord, error)
}

type gormAcquisitionRepository struct {
	db *gorm.DB
}

// NewGormAcquisitionRepository creates an AcquisitionRepository backed by gorm.
func NewGormAcquisitionRepository(db *gorm.DB) AcquisitionRepository {
	return &gormAcquisitionRepository{db: db}
}

// Append writes one history row; called once per terminal transition.
func (r *gormAcquisitionRepository) Append(rec *model.AcquisitionRecord) error {
	if err := r.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to append acquisition record: %w", err)
	}
	return nil
}

// Recent returns the latest finished acquisitions, newest first.
func (r *gormAcquisitionRepository) Recent(limit int) ([]model.AcquisitionRecord, error) {
	var records []model.AcquisitionRecord
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load acquisition history: %w", err)
	}
	return records, nil
}
