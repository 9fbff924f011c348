package statistics

import (
	"fmt"
	"time"

	"github.com/subtrack-app/subtrack/app/repository"
	"github.com/subtrack-app/subtrack/internal/pkg/cache"
)

const (
	CacheKeyLastModUser  = "statistics:lastmod:user:%d"
	CacheKeyLastModSpace = "statistics:lastmod:space:%d"
	CacheExpiration      = 30 * time.Minute
)

// Touch records a mutation of the owner's subscription set. The timestamp is
// the change token clients receive alongside query results and use for
// cheap change detection instead of re-fetching everything.
func Touch(userID, spaceID *uint, at time.Time) {
	key := ownerKey(userID, spaceID)
	if key == "" {
		return
	}
	if err := cache.Set(key, at.UTC().Format(time.RFC3339Nano), CacheExpiration); err != nil {
		// Cache miss on the next read falls back to the database, so a
		// failed write is not fatal.
		return
	}
}

// LastModified returns the owner's change token. The cache is consulted
// first; on a miss the subscription table's MAX(updated_at) is used and
// written back.
func LastModified(userID, spaceID *uint) *time.Time {
	key := ownerKey(userID, spaceID)
	if key == "" {
		return nil
	}

	if raw, err := cache.Get(key); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return &t
		}
	}

	last, err := repository.GetGlobalFactory().GetSubscriptionRepository().LastModifiedAt(userID, spaceID)
	if err != nil || last == nil {
		return nil
	}
	Touch(userID, spaceID, *last)
	return last
}

func ownerKey(userID, spaceID *uint) string {
	switch {
	case userID != nil:
		return fmt.Sprintf(CacheKeyLastModUser, *userID)
	case spaceID != nil:
		return fmt.Sprintf(CacheKeyLastModSpace, *spaceID)
	default:
		return ""
	}
}
