package ai

import (
	"sync"

	"github.com/campusmind/campusmind/internal/profile"
)

// Holder lazily constructs the gateway on first use so the server can boot
// without provider credentials and fail only when the agent is exercised.
// Construction runs at most once regardless of concurrent callers.
type Holder struct {
	once    sync.Once
	build   func() (Gateway, error)
	gateway Gateway
	err     error
}

// NewHolder creates a holder backed by the profile's provider settings.
func NewHolder(profile *profile.Profile) *Holder {
	return &Holder{
		build: func() (Gateway, error) {
			return NewGateway(Config{
				APIKey:  profile.AIAPIKey,
				BaseURL: profile.AIBaseURL,
				Model:   profile.AIModel,
			})
		},
	}
}

// NewHolderFunc creates a holder with a custom constructor.
func NewHolderFunc(build func() (Gateway, error)) *Holder {
	return &Holder{build: build}
}

// Get returns the shared gateway, constructing it on first call. A failed
// construction is sticky and returned to every caller.
func (h *Holder) Get() (Gateway, error) {
	h.once.Do(func() {
		h.gateway, h.err = h.build()
	})
	return h.gateway, h.err
}
