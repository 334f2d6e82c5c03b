package main

// Headless balance probe: starts a fresh game, performs random jumps and
// prints the universe-market drift and event flashes per jump. Useful when
// retuning fluctuation/event constants.

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"starlanes/internal/persistence/store"
	"starlanes/internal/protocol"
	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/session"
	"starlanes/internal/sim/tuning"
)

func main() {
	var (
		configDir = flag.String("configs", "./configs", "config directory")
		jumps     = flag.Int("jumps", 50, "number of jumps to simulate")
		seed      = flag.Int64("seed", 1, "session rng seed")
		mode      = flag.String("mode", "finite-turn", "market mode")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[probe] ", 0)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tune, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	dir, err := os.MkdirTemp("", "starlanes-probe-*")
	if err != nil {
		logger.Fatalf("tempdir: %v", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "save.db"))
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close()

	sess := session.New(cats, tune, st, nil, *seed)
	if err := sess.NewGame(protocol.NewGameConfig{Credits: 1e9, MarketMode: *mode}); err != nil {
		logger.Fatalf("new game: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *jumps; i++ {
		status := sess.Status()
		dests := make([]string, 0, len(status.Reachable))
		for id := range status.Reachable {
			if id != status.System {
				dests = append(dests, id)
			}
		}
		sort.Strings(dests)
		dest := dests[rng.Intn(len(dests))]

		flash, err := sess.Travel(dest)
		if err != nil {
			logger.Fatalf("travel %s: %v", dest, err)
		}

		fmt.Printf("jump %3d -> %-12s %s", i+1, dest, heatLine(sess))
		if flash != nil {
			fmt.Printf("  [%s %s %s]", flash.Kind, flash.EventID, flash.Impact)
		}
		fmt.Println()
	}
}

func heatLine(sess *session.Session) string {
	u := sess.Universe()
	parts := make([]string, 0, len(u.Categories()))
	for _, cat := range u.Categories() {
		parts = append(parts, fmt.Sprintf("%s=%.2f", cat, u.Heat(cat)))
	}
	return strings.Join(parts, " ")
}
