package insights

import (
	"sort"
	"time"

	"github.com/subtrack-app/subtrack/app/models"
)

// Store is the slice of the insight repository the refresh pass needs.
type Store interface {
	ListByOwner(userID, spaceID *uint) ([]models.Insight, error)
	Create(insight *models.Insight) error
}

// Refresh runs the rule set for one owner and persists whatever is new.
// Existing insights, active or dismissed, suppress regeneration via their
// dedupe key, which makes the pass idempotent: calling it twice in a row
// creates nothing the second time. It returns the owner's active insights
// after the pass, highest impact first.
func Refresh(store Store, gen *Generator, userID, spaceID *uint, subs []models.Subscription, now time.Time) ([]models.Insight, error) {
	existing, err := store.ListByOwner(userID, spaceID)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(existing))
	for _, ins := range existing {
		// Expired rows neither suppress nor surface, so a finding that is
		// still true can come back after its window has passed.
		if ins.Expired(now) {
			continue
		}
		skip[DedupeKey(ins.Type, ins.Subject)] = true
	}

	for _, ins := range gen.Generate(subs, skip, now) {
		ins.UserID = userID
		ins.SpaceID = spaceID
		if err := store.Create(&ins); err != nil {
			return nil, err
		}
	}

	after, err := store.ListByOwner(userID, spaceID)
	if err != nil {
		return nil, err
	}
	active := make([]models.Insight, 0, len(after))
	for _, ins := range after {
		if ins.Status == models.InsightStatusActive && !ins.Expired(now) {
			active = append(active, ins)
		}
	}
	sort.SliceStable(active, func(a, b int) bool {
		if active[a].ImpactScore != active[b].ImpactScore {
			return active[a].ImpactScore > active[b].ImpactScore
		}
		return active[a].CreatedAt.After(active[b].CreatedAt)
	})
	return active, nil
}
