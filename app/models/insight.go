package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InsightTypeCategoryAnalysis  = "category_analysis"
	InsightTypeSpendingAlert     = "spending_alert"
	InsightTypeSavingOpportunity = "saving_opportunity"
	InsightTypeTrendAnalysis     = "trend_analysis"
)

const (
	InsightStatusActive    = "active"
	InsightStatusDismissed = "dismissed"
)

const (
	SeverityHigh    = "high"
	SeverityMedium  = "medium"
	SeverityInfo    = "info"
	SeverityNeutral = "neutral"
)

// Insight is a generated, dismissible recommendation. Subject is the
// rule-specific dedupe component (a category name or service name); together
// with the owner and Type it forms the key that stops regeneration from
// producing duplicates.
type Insight struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UUID        string     `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID      *uint      `gorm:"index:idx_insights_owner_type" json:"user_id,omitempty"`
	SpaceID     *uint      `gorm:"index" json:"space_id,omitempty"`
	Type        string     `gorm:"type:varchar(50);not null;index:idx_insights_owner_type" json:"type"`
	Subject     string     `gorm:"type:varchar(150);not null;default:''" json:"subject"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ImpactScore int        `gorm:"not null;default:0" json:"impact_score"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ExpiresAt   *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns the public UUID when missing.
func (i *Insight) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == "" {
		i.UUID = uuid.New().String()
	}
	return nil
}

// Dismiss moves the insight to its terminal state. Dismissal is one-way;
// there is no path back to active.
func (i *Insight) Dismiss() {
	i.Status = InsightStatusDismissed
}

// Expired reports whether the insight has passed its expiry time. Expired
// rows drop out of listings and stop suppressing regeneration.
func (i *Insight) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// Severity maps the impact score onto the label the client colors by:
// 8+ high (red), 6-7 medium (amber), 4-5 info (blue), below neutral.
func (i *Insight) Severity() string {
	return SeverityForScore(i.ImpactScore)
}

// SeverityForScore implements the fixed score-to-label mapping.
func SeverityForScore(score int) string {
	switch {
	case score >= 8:
		return SeverityHigh
	case score >= 6:
		return SeverityMedium
	case score >= 4:
		return SeverityInfo
	default:
		return SeverityNeutral
	}
}
