package repository

import (
	"time"

	"github.com/subtrack-app/subtrack/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
}

// SubscriptionRepository defines the interface for subscription records.
// Every query is owner-scoped: personal rows by user id, shared rows by
// space id.
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByUUID(uuid string) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	GetBySpaceID(spaceID uint) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	Delete(id uint) error
	// LastModifiedAt returns the newest UpdatedAt among the owner's rows,
	// used as the change token handed to clients alongside query results.
	LastModifiedAt(userID, spaceID *uint) (*time.Time, error)
}

// InsightRepository defines the interface for generated insights.
type InsightRepository interface {
	Create(insight *models.Insight) error
	GetByUUID(uuid string) (*models.Insight, error)
	ListByOwner(userID, spaceID *uint) ([]models.Insight, error)
	Update(insight *models.Insight) error
}

// SpaceRepository defines the interface for shared spaces and membership.
type SpaceRepository interface {
	Create(space *models.Space) error
	GetByID(id uint) (*models.Space, error)
	GetForUser(userID uint) ([]models.Space, error)
	GetMember(spaceID, userID uint) (*models.SpaceMember, error)
	AddMember(member *models.SpaceMember) error
	RemoveMember(spaceID, userID uint) error
	Update(space *models.Space) error
	Delete(id uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	Insight      InsightRepository
	Space        SpaceRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Insight:      NewInsightRepository(db),
		Space:        NewSpaceRepository(db),
	}
}
