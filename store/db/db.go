// Package db provides the concrete database drivers behind the store.
package db

import (
	"github.com/pkg/errors"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/store"
	"github.com/campusmind/campusmind/store/db/postgres"
	"github.com/campusmind/campusmind/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown database driver %q", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create database driver")
	}
	return driver, nil
}
