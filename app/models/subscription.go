package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// DefaultCategory is the bucket empty categories aggregate under.
const DefaultCategory = "Other"

// Subscription is one recurring charge. A record belongs to exactly one
// owner: either a user (UserID set) or a shared space (SpaceID set, with
// AddedByUserID recording who created it inside the space).
type Subscription struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UUID          string          `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID        *uint           `gorm:"index" json:"user_id,omitempty"`
	SpaceID       *uint           `gorm:"index" json:"space_id,omitempty"`
	AddedByUserID *uint           `json:"added_by_user_id,omitempty"`
	ServiceName   string          `gorm:"type:varchar(150);not null" json:"service_name" validate:"required,min=1,max=150"`
	Cost          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency" validate:"required,len=3"`
	BillingCycle  string          `gorm:"type:varchar(10);not null" json:"billing_cycle" validate:"oneof=monthly yearly"`
	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate       *time.Time      `gorm:"type:date;default:null" json:"end_date,omitempty"`
	Category      string          `gorm:"type:varchar(100);default:''" json:"category" validate:"max=100"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the public UUID when missing.
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.New().String()
	}
	return nil
}

// ActiveAt reports whether the subscription is still running at the given
// time. Activity is derived purely from EndDate so the stored row can never
// drift out of sync with it.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.EndDate == nil || s.EndDate.After(now)
}

// CategoryLabel returns the category the subscription aggregates under.
// Empty categories fold into DefaultCategory; everything else is used
// verbatim, case-sensitive.
func (s *Subscription) CategoryLabel() string {
	if s.Category == "" {
		return DefaultCategory
	}
	return s.Category
}

// End closes the subscription at the given time. Ending an already ended
// subscription keeps the earlier end date.
func (s *Subscription) End(now time.Time) {
	if s.EndDate != nil && s.EndDate.Before(now) {
		return
	}
	t := now
	s.EndDate = &t
}

// Reactivate clears the end date so the subscription counts as running again.
func (s *Subscription) Reactivate() {
	s.EndDate = nil
}

// IsShared reports whether the subscription belongs to a space rather than a
// single user.
func (s *Subscription) IsShared() bool {
	return s.SpaceID != nil
}
