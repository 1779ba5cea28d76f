package domain

import (
	"time"

	"github.com/google/uuid"
)

// now is replaced in tests that need a controllable clock.
var now = func() time.Time { return time.Now().UTC() }

// Entity carries identity and timestamps. Aggregates embed it by value.
type Entity struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
}

// NewEntity returns an Entity with a fresh identity and both timestamps set to now.
func NewEntity() Entity {
	t := now()
	return Entity{
		id:        uuid.New().String(),
		createdAt: t,
		updatedAt: t,
	}
}

// RestoreEntity rebuilds an Entity from persisted values.
func RestoreEntity(id string, createdAt, updatedAt time.Time) Entity {
	return Entity{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e Entity) ID() string           { return e.id }
func (e Entity) CreatedAt() time.Time { return e.createdAt }
func (e Entity) UpdatedAt() time.Time { return e.updatedAt }

// SameIdentity reports whether both entities share the same id.
func (e Entity) SameIdentity(other Entity) bool {
	return e.id == other.id
}

// touch refreshes updatedAt. It never moves backwards, even if the wall clock does.
func (e *Entity) touch() {
	t := now()
	if t.Before(e.updatedAt) {
		return
	}
	e.updatedAt = t
}
