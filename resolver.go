package dbal

import (
	"math/rand"
	"time"

	"github.com/bratiask/dbal/types"
)

// resolver produces the concrete backend configuration for a slot.
//
// For the primary slot it returns the primary configuration verbatim (the
// shared driver identity was merged at construction time). For the replica
// slot it picks one entry uniformly at random from the replica list; the
// pick happens once, on the first replica resolve, and stays pinned for the
// resolver's lifetime so a session never hops between replicas.
type resolver struct {
	primary  types.BackendConfig
	replicas []types.BackendConfig
	rnd      *rand.Rand

	// picked is the pinned replica index, -1 until the first replica resolve.
	picked int
}

// newResolver creates a resolver from a normalized configuration.
//
// When src is nil the resolver seeds its own source from the system clock.
func newResolver(cfg Config, src rand.Source) *resolver {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &resolver{
		primary:  *cfg.Primary,
		replicas: cfg.Replicas,
		rnd:      rand.New(src),
		picked:   -1,
	}
}

// Resolve returns the backend configuration for the given role.
//
// A replica entry that omits the charset inherits it from the primary
// configuration.
func (r *resolver) Resolve(role types.Role) types.BackendConfig {
	if role == types.RolePrimary {
		return r.primary.Clone()
	}

	if r.picked < 0 {
		r.picked = r.rnd.Intn(len(r.replicas))
	}

	cfg := r.replicas[r.picked].Clone()
	if cfg.Charset == "" {
		cfg.Charset = r.primary.Charset
	}

	return cfg
}
