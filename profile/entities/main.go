// Profiling:
// go build ./profile/entities
// ./entities --mode mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/edwinsyarief/packstore"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

func main() {
	flags := pflag.NewFlagSet("entities", pflag.ContinueOnError)
	rounds := flags.Int("rounds", 50, "number of fresh storages to run")
	iters := flags.Int("iters", 1000, "create/clone/delete cycles per round")
	entities := flags.Int("entities", 1000, "entities created per cycle")
	mode := flags.String("mode", "mem", "profile mode: cpu or mem")
	configPath := flags.String("config", "", "storage config file (.yaml or JSON with comments)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := packstore.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = packstore.LoadConfigFile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
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
	err := run(cfg, *rounds, *iters, *entities)
	p.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg packstore.Config, rounds, iters, numEntities int) error {
	for range rounds {
		s, err := packstore.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		pos := packstore.RegisterComponent[position](s, "position")
		vel := packstore.RegisterComponent[velocity](s, "velocity")
		name := packstore.RegisterComponent[string](s, "name")

		proto := s.NewEntity()
		if err := packstore.Set(s, proto, pos, position{}); err != nil {
			return err
		}
		if err := packstore.Set(s, proto, vel, velocity{X: 1, Y: 1}); err != nil {
			return err
		}
		if err := packstore.Set(s, proto, name, "drone"); err != nil {
			return err
		}

		for range iters {
			created := make([]packstore.Entity, 0, numEntities)
			for range numEntities {
				e, err := s.CloneEntity(proto)
				if err != nil {
					return err
				}
				created = append(created, e)
			}
			for _, e := range created {
				if err := s.DeleteEntity(e); err != nil {
					return err
				}
			}
		}
		s.Close()
	}
	return nil
}
