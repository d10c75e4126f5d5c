// Profiling:
// go build ./profile/query
// ./query --mode cpu
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/edwinsyarief/packstore"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

type comp3 struct {
	V int64
	W int64
}

func main() {
	flags := pflag.NewFlagSet("query", pflag.ContinueOnError)
	rounds := flags.Int("rounds", 10, "number of fresh storages to run")
	iters := flags.Int("iters", 1000, "ForEach passes per round")
	entities := flags.Int("entities", 100000, "entities per storage")
	mode := flags.String("mode", "cpu", "profile mode: cpu or mem")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}
	err := run(*rounds, *iters, *entities)
	p.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(rounds, iters, numEntities int) error {
	for range rounds {
		s := packstore.New(packstore.WithInitialCapacity(numEntities))
		c1 := packstore.RegisterComponent[comp1](s, "comp1")
		c2 := packstore.RegisterComponent[comp2](s, "comp2")
		c3 := packstore.RegisterComponent[comp3](s, "comp3")

		first, last := s.NewEntities(numEntities)
		for e := first; e < last; e++ {
			if err := packstore.Set(s, e, c1, comp1{}); err != nil {
				return err
			}
			if err := packstore.Set(s, e, c2, comp2{V: 1, W: 2}); err != nil {
				return err
			}
			if e%2 == 0 {
				if err := packstore.Set(s, e, c3, comp3{}); err != nil {
					return err
				}
			}
		}

		for range iters {
			err := packstore.ForEach2(s, c1, c2, func(_ packstore.Entity, a *comp1, b *comp2) packstore.Changes {
				a.V += b.V
				a.W += b.W
				return packstore.Changed1
			})
			if err != nil {
				return err
			}
		}
		s.Close()
	}
	return nil
}
