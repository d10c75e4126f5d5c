package packstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type node struct {
	next *node
	vals []int
}

type sealed struct {
	secret map[string][]byte
	inner  [2]struct{ n *int }
}

func TestDeepCopyCycle(t *testing.T) {
	n := &node{vals: []int{1}}
	n.next = n

	c := deepCopy(&n)
	require.NotSame(t, n, c)
	require.Same(t, c, c.next)
	c.vals[0] = 2
	require.Equal(t, 1, n.vals[0])
}

func TestDeepCopyUnexportedFields(t *testing.T) {
	one := 1
	v := map[string]sealed{
		"k": {secret: map[string][]byte{"s": {1}}, inner: [2]struct{ n *int }{{n: &one}}},
	}

	c := deepCopy(&v)
	c["k"].secret["s"][0] = 9
	*c["k"].inner[0].n = 5

	require.Equal(t, byte(1), v["k"].secret["s"][0])
	require.Equal(t, 1, one)
	require.Nil(t, c["k"].inner[1].n)
}

func TestDeepCopyKeepsShape(t *testing.T) {
	type shape struct {
		nilSlice   []int
		emptySlice []int
		nilMap     map[int]int
		ch         chan int
		fn         func()
		boxed      any
	}
	ch := make(chan int)
	v := shape{emptySlice: make([]int, 0, 4), ch: ch, boxed: 3}

	c := deepCopy(&v)
	require.Nil(t, c.nilSlice)
	require.NotNil(t, c.emptySlice)
	require.Equal(t, 4, cap(c.emptySlice))
	require.Nil(t, c.nilMap)
	require.Equal(t, ch, c.ch, "channels are shared")
	require.Nil(t, c.fn)
	require.Equal(t, 3, c.boxed)
}

func TestCloneValuePrefersCloner(t *testing.T) {
	v := counted{n: 1}
	require.Equal(t, counted{n: 2}, cloneValue(&v))
}

type counted struct{ n int }

func (c counted) Clone() counted { return counted{n: c.n + 1} }
