package packstore_test

import (
	"fmt"
	"testing"

	"github.com/edwinsyarief/packstore"
)

var benchSizes = []int{1000, 10000, 100000}

func sizeName(size int) string {
	return fmt.Sprintf("%dK", size/1000)
}

func benchStorage(size int) (*packstore.Storage, basicIDs) {
	s := packstore.New(packstore.WithInitialCapacity(size))
	ids := basicIDs{
		health: packstore.RegisterComponent[float32](s, "health"),
		pos:    packstore.RegisterComponent[Vector](s, "position"),
		name:   packstore.RegisterComponent[string](s, "name"),
	}
	first, last := s.NewEntities(size)
	for e := first; e < last; e++ {
		_ = packstore.Set(s, e, ids.health, float32(e))
		_ = packstore.Set(s, e, ids.pos, Vector{X: 1})
		if e%4 == 0 {
			_ = packstore.Set(s, e, ids.name, "boxed")
		}
	}
	return s, ids
}

func BenchmarkNewEntities(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(sizeName(size), func(b *testing.B) {
			for b.Loop() {
				b.StopTimer()
				s := packstore.New(packstore.WithInitialCapacity(size))
				b.StartTimer()
				s.NewEntities(size)
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkSetFlat(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(sizeName(size), func(b *testing.B) {
			s, ids := benchStorage(size)
			defer s.Close()
			b.ReportAllocs()
			for b.Loop() {
				for e := range packstore.Entity(size) {
					_ = packstore.Set(s, e, ids.health, float32(1))
				}
			}
		})
	}
}

func BenchmarkGet(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(sizeName(size), func(b *testing.B) {
			s, ids := benchStorage(size)
			defer s.Close()
			b.ReportAllocs()
			for b.Loop() {
				for e := range packstore.Entity(size) {
					p, _ := packstore.Get[Vector](s, e, ids.pos)
					p.X++
				}
			}
		})
	}
}

func BenchmarkForEach2(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(sizeName(size), func(b *testing.B) {
			s, ids := benchStorage(size)
			defer s.Close()
			b.ReportAllocs()
			for b.Loop() {
				_ = packstore.ForEach2(s, ids.health, ids.pos, func(_ packstore.Entity, h *float32, p *Vector) packstore.Changes {
					p.Y += *h
					return packstore.Changed2
				})
			}
		})
	}
}

func BenchmarkFilter2(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(sizeName(size), func(b *testing.B) {
			s, ids := benchStorage(size)
			defer s.Close()
			f, err := packstore.NewFilter2[float32, Vector](s, ids.health, ids.pos)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for b.Loop() {
				f.Reset()
				for f.Next() {
					h, p := f.Get()
					p.Z += *h
				}
			}
		})
	}
}

func BenchmarkSerialize(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(sizeName(size), func(b *testing.B) {
			s, _ := benchStorage(size)
			defer s.Close()
			buf := make([]byte, 0, 64)
			b.ReportAllocs()
			for b.Loop() {
				for e := range packstore.Entity(size) {
					var err error
					if buf, err = s.Serialize(e, buf[:0]); err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

func BenchmarkDeserialize(b *testing.B) {
	s, _ := benchStorage(4)
	defer s.Close()
	buf, err := s.Serialize(0, nil)
	if err != nil {
		b.Fatal(err)
	}
	e := s.NewEntity()
	b.ReportAllocs()
	for b.Loop() {
		if err := s.Deserialize(e, buf); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCloneDelete(b *testing.B) {
	s, _ := benchStorage(1)
	defer s.Close()
	b.ReportAllocs()
	for b.Loop() {
		c, _ := s.CloneEntity(0)
		_ = s.DeleteEntity(c)
	}
}
