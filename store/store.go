package store

import (
	"context"
	"time"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/store/cache"
)

// DefaultRecentMessageLimit is how many trailing transcript entries the
// agent loads as conversational context.
const DefaultRecentMessageLimit = 10

// Store provides the database access layer on top of a Driver, with a
// small cache in front of hot user lookups.
type Store struct {
	profile   *profile.Profile
	driver    Driver
	userCache *cache.Cache
}

// New creates a new Store with the given driver and profile.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		profile: profile,
		driver:  driver,
		userCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        1000,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Profile() *profile.Profile {
	return s.profile
}

func (s *Store) Close() error {
	s.userCache.Close()
	return s.driver.Close()
}

func (s *Store) IsInitialized(ctx context.Context) (bool, error) {
	return s.driver.IsInitialized(ctx)
}

func userCacheKey(id int32) string {
	return cache.Key("user", id)
}
