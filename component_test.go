package packstore_test

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/packstore"
)

type descriptor struct {
	Name string
	Size int
	Flat bool
}

func describe(s *packstore.Storage) []descriptor {
	var out []descriptor
	for _, c := range s.Components() {
		out = append(out, descriptor{Name: c.Name(), Size: c.Size(), Flat: c.IsFlat()})
	}
	return out
}

// go test -run ^TestRegisterComponent$ . -count 1
func TestRegisterComponent(t *testing.T) {
	s, ids := setupStorage(t)
	require.Equal(t, packstore.ComponentID(0), ids.health)
	require.Equal(t, packstore.ComponentID(1), ids.pos)
	require.Equal(t, packstore.ComponentID(2), ids.name)

	tag := packstore.RegisterComponent[Tag](s, "tag")
	packed := packstore.RegisterComponent[Packed](s, "packed")
	inv := packstore.RegisterComponent[Inventory](s, "inventory")
	require.Equal(t, packstore.ComponentID(3), tag)
	require.Equal(t, packstore.ComponentID(4), packed)
	require.Equal(t, packstore.ComponentID(5), inv)
	require.Equal(t, 6, s.NumComponents())

	want := []descriptor{
		{Name: "health", Size: 4, Flat: true},
		{Name: "position", Size: int(unsafe.Sizeof(Vector{})), Flat: true},
		{Name: "name", Size: 0, Flat: false},
		{Name: "tag", Size: 0, Flat: true},
		{Name: "packed", Size: 0, Flat: false},
		{Name: "inventory", Size: 0, Flat: false},
	}
	if diff := cmp.Diff(want, describe(s)); diff != "" {
		t.Errorf("descriptors mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "string", s.Component(ids.name).Type().String())
}

func TestFlatness(t *testing.T) {
	s := packstore.New()
	defer s.Close()

	cases := []struct {
		id   packstore.ComponentID
		flat bool
	}{
		{packstore.RegisterComponent[int](s, "int"), true},
		{packstore.RegisterComponent[[4]float64](s, "array"), true},
		{packstore.RegisterComponent[struct{ A, B int8 }](s, "struct"), true},
		{packstore.RegisterComponent[string](s, "string"), false},
		{packstore.RegisterComponent[[]byte](s, "bytes"), false},
		{packstore.RegisterComponent[*int](s, "pointer"), false},
		{packstore.RegisterComponent[map[string]int](s, "map"), false},
		{packstore.RegisterComponent[[2]string](s, "string array"), false},
		{packstore.RegisterComponent[any](s, "interface"), false},
	}
	for _, tc := range cases {
		c := s.Component(tc.id)
		require.Equal(t, tc.flat, c.IsFlat(), c.Name())
	}
}

func TestRegisterComponentLimits(t *testing.T) {
	t.Run("65th component panics", func(t *testing.T) {
		s := packstore.New()
		defer s.Close()
		for i := range packstore.MaxComponentTypes {
			packstore.RegisterComponent[int8](s, fmt.Sprintf("c%d", i))
		}
		require.Panics(t, func() {
			packstore.RegisterComponent[int8](s, "one too many")
		})
	})

	t.Run("forced flat pointer type panics", func(t *testing.T) {
		s := packstore.New()
		defer s.Close()
		require.Panics(t, func() {
			packstore.RegisterComponent[flatLiar](s, "liar")
		})
	})
}

type flatLiar struct{ s string }

func (flatLiar) Layout() packstore.Layout { return packstore.LayoutFlat }

func TestFindComponent(t *testing.T) {
	s, ids := setupStorage(t)

	id, err := s.FindComponent("position")
	require.NoError(t, err)
	require.Equal(t, ids.pos, id)

	id, err = s.FindComponent("name")
	require.NoError(t, err)
	require.Equal(t, ids.name, id)

	_, err = s.FindComponent("mana")
	require.ErrorIs(t, err, packstore.ErrUnknownComponent)

	// The first registration wins for duplicate names.
	packstore.RegisterComponent[int](s, "position")
	id, err = s.FindComponent("position")
	require.NoError(t, err)
	require.Equal(t, ids.pos, id)
}
