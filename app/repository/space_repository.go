package repository

import (
	"github.com/subtrack-app/subtrack/app/models"
	"gorm.io/gorm"
)

// spaceRepository implements the SpaceRepository interface
type spaceRepository struct {
	db *gorm.DB
}

// NewSpaceRepository creates a new space repository instance
func NewSpaceRepository(db *gorm.DB) SpaceRepository {
	return &spaceRepository{db: db}
}

// Create creates the space together with an admin membership for its owner
func (r *spaceRepository) Create(space *models.Space) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(space).Error; err != nil {
			return err
		}
		member := models.SpaceMember{
			SpaceID: space.ID,
			UserID:  space.OwnerUserID,
			Role:    models.SpaceRoleAdmin,
		}
		return tx.Create(&member).Error
	})
}

// GetByID retrieves a space with its members
func (r *spaceRepository) GetByID(id uint) (*models.Space, error) {
	var space models.Space
	err := r.db.Preload("Members").First(&space, id).Error
	if err != nil {
		return nil, err
	}
	return &space, nil
}

// GetForUser retrieves every space the user is a member of
func (r *spaceRepository) GetForUser(userID uint) ([]models.Space, error) {
	var spaces []models.Space
	err := r.db.
		Joins("JOIN space_members ON space_members.space_id = spaces.id").
		Where("space_members.user_id = ?", userID).
		Preload("Members").
		Find(&spaces).Error
	return spaces, err
}

// GetMember retrieves one membership row, gorm.ErrRecordNotFound when the
// user is not a member
func (r *spaceRepository) GetMember(spaceID, userID uint) (*models.SpaceMember, error) {
	var member models.SpaceMember
	err := r.db.Where("space_id = ? AND user_id = ?", spaceID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember adds a user to a space
func (r *spaceRepository) AddMember(member *models.SpaceMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a user from a space
func (r *spaceRepository) RemoveMember(spaceID, userID uint) error {
	return r.db.Where("space_id = ? AND user_id = ?", spaceID, userID).
		Delete(&models.SpaceMember{}).Error
}

// Update updates an existing space
func (r *spaceRepository) Update(space *models.Space) error {
	return r.db.Save(space).Error
}

// Delete soft deletes a space
func (r *spaceRepository) Delete(id uint) error {
	return r.db.Delete(&models.Space{}, id).Error
}
