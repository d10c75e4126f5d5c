package packstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/packstore"
)

// --- Test Components ---
type Vector struct{ X, Y, Z float32 }
type Tag struct{}

// Tracked counts how often the storage constructs and destroys it.
type Tracked struct{ Name string }

var (
	trackedConstructed int
	trackedDestroyed   int
)

func (t *Tracked) Construct() { trackedConstructed++ }
func (t *Tracked) Destroy()   { trackedDestroyed++ }

func resetTracked() {
	trackedConstructed = 0
	trackedDestroyed = 0
}

// Inventory is boxed and brings its own deep copy.
type Inventory struct{ Items map[string]int }

func (inv Inventory) Clone() Inventory {
	c := Inventory{Items: make(map[string]int, len(inv.Items))}
	for k, v := range inv.Items {
		c.Items[k] = v
	}
	return c
}

// Opaque is boxed but has no codec.
type Opaque struct{ p *int }

// Packed is pointer-free but asks to be boxed.
type Packed struct{ A, B uint16 }

func (Packed) Layout() packstore.Layout { return packstore.LayoutBoxed }

// --- Test Suite Setup ---
type basicIDs struct {
	health, pos, name packstore.ComponentID
}

func setupStorage(t *testing.T) (*packstore.Storage, basicIDs) {
	t.Helper()
	s := packstore.New()
	t.Cleanup(s.Close)
	ids := basicIDs{
		health: packstore.RegisterComponent[float32](s, "health"),
		pos:    packstore.RegisterComponent[Vector](s, "position"),
		name:   packstore.RegisterComponent[string](s, "name"),
	}
	return s, ids
}

func mustGet[T any](t *testing.T, s *packstore.Storage, e packstore.Entity, c packstore.ComponentID) T {
	t.Helper()
	v, err := packstore.Get[T](s, e, c)
	require.NoError(t, err)
	return *v
}
