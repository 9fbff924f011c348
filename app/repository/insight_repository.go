package repository

import (
	"errors"

	"github.com/subtrack-app/subtrack/app/models"
	"gorm.io/gorm"
)

// insightRepository implements the InsightRepository interface
type insightRepository struct {
	db *gorm.DB
}

// NewInsightRepository creates a new insight repository instance
func NewInsightRepository(db *gorm.DB) InsightRepository {
	return &insightRepository{db: db}
}

// Create creates a new insight in the database
func (r *insightRepository) Create(insight *models.Insight) error {
	return r.db.Create(insight).Error
}

// GetByUUID retrieves an insight by its public UUID
func (r *insightRepository) GetByUUID(uuid string) (*models.Insight, error) {
	var insight models.Insight
	err := r.db.Where("uuid = ?", uuid).First(&insight).Error
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// ListByOwner retrieves every insight of one owner, dismissed included,
// newest first
func (r *insightRepository) ListByOwner(userID, spaceID *uint) ([]models.Insight, error) {
	query, err := r.ownerScope(userID, spaceID)
	if err != nil {
		return nil, err
	}
	var insights []models.Insight
	err = query.Order("created_at DESC").Find(&insights).Error
	return insights, err
}

// Update updates an existing insight in the database
func (r *insightRepository) Update(insight *models.Insight) error {
	return r.db.Save(insight).Error
}

func (r *insightRepository) ownerScope(userID, spaceID *uint) (*gorm.DB, error) {
	switch {
	case userID != nil:
		return r.db.Where("user_id = ?", *userID), nil
	case spaceID != nil:
		return r.db.Where("space_id = ?", *spaceID), nil
	default:
		return nil, errors.New("owner required")
	}
}
