// Package profile holds the runtime configuration resolved from flags and
// environment variables at startup.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration the server runs with.
type Profile struct {
	// Mode can be "prod", "dev", or "demo".
	Mode string
	// Addr is the binding address.
	Addr string
	// Port is the binding port.
	Port int
	// Data is the directory holding local data such as the sqlite file.
	Data string
	// DSN points to the database. Defaults to a sqlite file under Data.
	DSN string
	// Driver is the database driver, "sqlite" or "postgres".
	Driver string
	// Version is the current server version.
	Version string

	// JWTSecret signs access tokens. Required outside demo mode.
	JWTSecret string

	// AIAPIKey authenticates against the chat-completions endpoint.
	AIAPIKey string
	// AIBaseURL overrides the chat-completions endpoint when set.
	AIBaseURL string
	// AIModel is the model used for agent turns.
	AIModel string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate normalizes the profile and fails on unusable combinations.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/campusmind"
	}
	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return errors.Wrapf(err, "invalid data directory %q", p.Data)
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("campusmind_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.JWTSecret == "" {
		if p.Mode == "prod" {
			return errors.New("CAMPUSMIND_JWT_SECRET must be set in prod mode")
		}
		p.JWTSecret = "campusmind-insecure-dev-secret"
	}

	if p.AIModel == "" {
		p.AIModel = "gpt-4o-mini"
	}
	return nil
}

func checkDataDir(dataDir string) (string, error) {
	// Trim trailing "/" in case user supplies it.
	dataDir = strings.TrimRight(dataDir, "/")
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}
	fi, err := os.Stat(dataDir)
	if err != nil {
		return "", errors.Wrap(err, "stat data directory")
	}
	if !fi.IsDir() {
		return "", errors.Errorf("%s is not a directory", dataDir)
	}
	return dataDir, nil
}
