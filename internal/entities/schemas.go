// Package entities defines the static field tables for every entity type
// the game backend stores, and bundles one registry per type. Route
// handlers and the game economy only ever touch these registries and the
// Records they hand out.
package entities

import (
	"github.com/driftline/foundry/internal/fieldstore"
)

// Users maps player accounts. The password hash never enters the shared
// cache; last_seen_at churns too fast to be worth pinning locally.
var Users = fieldstore.MustSchema("users",
	fieldstore.FieldSpec{Name: "username"},
	fieldstore.FieldSpec{Name: "email"},
	fieldstore.FieldSpec{Name: "password_hash", SkipDistributed: true},
	fieldstore.FieldSpec{Name: "gold", Codec: fieldstore.Int64Codec{}},
	fieldstore.FieldSpec{Name: "last_seen_at", Codec: fieldstore.TimeCodec{}, SkipLocal: true},
)

// Sessions maps browser sessions. Tokens stay out of the shared cache.
var Sessions = fieldstore.MustSchema("sessions",
	fieldstore.FieldSpec{Name: "user_id"},
	fieldstore.FieldSpec{Name: "token", SkipDistributed: true},
	fieldstore.FieldSpec{Name: "ip_address"},
	fieldstore.FieldSpec{Name: "expires_at", Codec: fieldstore.TimeCodec{}},
)

// Games maps matches. Settings documents are read rarely and can be large,
// so they skip the local tier.
var Games = fieldstore.MustSchema("games",
	fieldstore.FieldSpec{Name: "name"},
	fieldstore.FieldSpec{Name: "status"},
	fieldstore.FieldSpec{Name: "started_at", Codec: fieldstore.TimeCodec{}},
	fieldstore.FieldSpec{Name: "settings", Codec: fieldstore.JSONCodec{}, SkipLocal: true},
)

// Teams maps the sides within a game.
var Teams = fieldstore.MustSchema("teams",
	fieldstore.FieldSpec{Name: "game_id"},
	fieldstore.FieldSpec{Name: "name"},
	fieldstore.FieldSpec{Name: "color"},
	fieldstore.FieldSpec{Name: "treasury", Codec: fieldstore.Int64Codec{}},
)

// Memberships ties users to games and teams.
var Memberships = fieldstore.MustSchema("game_memberships",
	fieldstore.FieldSpec{Name: "game_id"},
	fieldstore.FieldSpec{Name: "user_id"},
	fieldstore.FieldSpec{Name: "team_id"},
	fieldstore.FieldSpec{Name: "role"},
	fieldstore.FieldSpec{Name: "joined_at", Codec: fieldstore.TimeCodec{}},
)

// Factories maps production buildings. Layout documents skip the local
// tier for the same reason game settings do.
var Factories = fieldstore.MustSchema("factories",
	fieldstore.FieldSpec{Name: "game_id"},
	fieldstore.FieldSpec{Name: "team_id"},
	fieldstore.FieldSpec{Name: "kind"},
	fieldstore.FieldSpec{Name: "level", Codec: fieldstore.Int64Codec{}},
	fieldstore.FieldSpec{Name: "stock", Codec: fieldstore.Int64Codec{}},
	fieldstore.FieldSpec{Name: "layout", Codec: fieldstore.JSONCodec{}, SkipLocal: true},
	fieldstore.FieldSpec{Name: "produces_at", Codec: fieldstore.TimeCodec{}},
)

// Registries bundles one identity registry per entity type, all sharing the
// same tier handles.
type Registries struct {
	Users       *fieldstore.Registry
	Sessions    *fieldstore.Registry
	Games       *fieldstore.Registry
	Teams       *fieldstore.Registry
	Memberships *fieldstore.Registry
	Factories   *fieldstore.Registry
}

// NewRegistries builds the per-type registries against one Store. A
// non-zero maxEntries bounds each registry with LRU eviction.
func NewRegistries(store *fieldstore.Store, maxEntries int) *Registries {
	var opts []fieldstore.RegistryOption
	if maxEntries > 0 {
		opts = append(opts, fieldstore.WithMaxEntries(maxEntries))
	}
	return &Registries{
		Users:       fieldstore.NewRegistry(store, Users, opts...),
		Sessions:    fieldstore.NewRegistry(store, Sessions, opts...),
		Games:       fieldstore.NewRegistry(store, Games, opts...),
		Teams:       fieldstore.NewRegistry(store, Teams, opts...),
		Memberships: fieldstore.NewRegistry(store, Memberships, opts...),
		Factories:   fieldstore.NewRegistry(store, Factories, opts...),
	}
}

// ClearAll empties every registry, flushing local caches first.
func (r *Registries) ClearAll() {
	for _, reg := range []*fieldstore.Registry{
		r.Users, r.Sessions, r.Games, r.Teams, r.Memberships, r.Factories,
	} {
		reg.Clear(true)
	}
}
