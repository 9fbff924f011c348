package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/subtrack-app/subtrack/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByUUID retrieves a subscription by its public UUID
func (r *subscriptionRepository) GetByUUID(uuid string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("uuid = ?", uuid).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByUserID retrieves all personal subscriptions of a user
func (r *subscriptionRepository) GetByUserID(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// GetBySpaceID retrieves all subscriptions of a shared space
func (r *subscriptionRepository) GetBySpaceID(spaceID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("space_id = ?", spaceID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// Update saves all fields of an existing subscription. Concurrent edits of
// the same row resolve last-write-wins.
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// Delete removes a subscription outright
func (r *subscriptionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Subscription{}, id).Error
}

// LastModifiedAt returns the newest UpdatedAt among the owner's rows, or nil
// when the owner has no subscriptions yet.
func (r *subscriptionRepository) LastModifiedAt(userID, spaceID *uint) (*time.Time, error) {
	query := r.db.Model(&models.Subscription{})
	switch {
	case userID != nil:
		query = query.Where("user_id = ?", *userID)
	case spaceID != nil:
		query = query.Where("space_id = ?", *spaceID)
	default:
		return nil, errors.New("owner required")
	}

	var last sql.NullTime
	if err := query.Select("MAX(updated_at)").Row().Scan(&last); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}
