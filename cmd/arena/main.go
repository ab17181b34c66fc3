// Package main provides the arena binary that runs headless duels between two
// combat profiles and reports the results.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/config"
	"github.com/cory-johannsen/duelist/internal/game/ability"
	"github.com/cory-johannsen/duelist/internal/game/ai"
	"github.com/cory-johannsen/duelist/internal/game/combat"
	"github.com/cory-johannsen/duelist/internal/game/dice"
	"github.com/cory-johannsen/duelist/internal/game/sim"
	"github.com/cory-johannsen/duelist/internal/observability"
	"github.com/cory-johannsen/duelist/internal/scripting"
	"github.com/cory-johannsen/duelist/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	v, cfg, err := config.Open(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, level, err := observability.NewLoggerWithLevel(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting arena runner",
		zap.Int("arenas", cfg.Arena.Count),
		zap.Strings("fighters", cfg.Arena.Fighters),
		zap.Uint64("seed", cfg.Arena.Seed),
	)

	profiles, err := ai.LoadProfiles(cfg.Content.ProfilesDir)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}
	registry := ai.NewProfileRegistry()
	if err := registry.RegisterAll(profiles); err != nil {
		logger.Fatal("registering profiles", zap.Error(err))
	}
	logger.Info("loaded profiles", zap.Strings("ids", registry.IDs()))

	var fighters [2]*ai.Profile
	for i, id := range cfg.Arena.Fighters {
		p, ok := registry.Get(id)
		if !ok {
			logger.Fatal("unknown fighter profile", zap.String("id", id))
		}
		fighters[i] = p
	}

	presence := combat.NewPresence()
	var observer ai.Observer
	if cfg.Logging.Transitions {
		observer = observability.NewTransitionLogger(logger)
	}

	arenas := make([]*sim.Arena, 0, cfg.Arena.Count)
	for i := 0; i < cfg.Arena.Count; i++ {
		roller := dice.NewLoggedRoller(arenaSource(cfg.Arena.Seed, i), logger)
		scripts, err := loadScripts(cfg.Content, fighters, roller, logger)
		if err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		var caller ability.ScriptCaller
		if scripts != nil {
			defer scripts.Close()
			caller = scripts
		}

		a, err := sim.NewArena(sim.Options{
			Name:        fmt.Sprintf("arena-%03d", i),
			Width:       cfg.Arena.Width,
			Height:      cfg.Arena.Height,
			CellSize:    cfg.Arena.CellSize,
			Spacing:     cfg.Arena.Spacing,
			Step:        cfg.Arena.Step,
			MaxDuration: cfg.Arena.MaxDuration,
			Profiles:    fighters,
			Roller:      roller,
			Scripts:     caller,
			Presence:    presence,
			Observer:    observer,
			Logger:      logger,
		})
		if err != nil {
			logger.Fatal("building arena", zap.Int("index", i), zap.Error(err))
		}
		arenas = append(arenas, a)
	}
	logger.Info("arenas ready",
		zap.Int("count", len(arenas)),
		zap.Duration("elapsed", time.Since(start)),
	)

	config.Watch(v, func(c config.Config, err error) {
		if err != nil {
			logger.Warn("ignoring invalid config change", zap.Error(err))
			return
		}
		if err := observability.SetLevel(level, c.Logging.Level); err != nil {
			logger.Warn("ignoring log level change", zap.Error(err))
			return
		}
		logger.Info("log level updated", zap.String("level", c.Logging.Level))
	})

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("arenas", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			results, err := sim.RunAll(ctx, arenas, cfg.Arena.TickInterval)
			report(logger, results)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	})

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Error("arena runner failed", zap.Error(err))
		os.Exit(1)
	}
}

// arenaSource seeds arena i from seed, or draws from crypto randomness when seed is zero.
func arenaSource(seed uint64, i int) dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(seed + uint64(i))
}

// loadScripts builds a script manager holding one scope per fighter profile
// that names a script directory. It returns nil when no profile has scripts.
func loadScripts(content config.ContentConfig, fighters [2]*ai.Profile, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, error) {
	var mgr *scripting.Manager
	for _, p := range fighters {
		if p.ScriptDir == "" {
			continue
		}
		if mgr == nil {
			mgr = scripting.NewManager(roller, logger)
		}
		if mgr.HasScope(p.ID) {
			continue
		}
		dir := filepath.Join(content.ScriptsDir, p.ScriptDir)
		if err := mgr.LoadScope(p.ID, dir, content.InstructionLimit); err != nil {
			mgr.Close()
			return nil, fmt.Errorf("profile %s: %w", p.ID, err)
		}
	}
	return mgr, nil
}

func report(logger *zap.Logger, results []sim.Result) {
	wins := make(map[string]int)
	draws := 0
	for _, r := range results {
		if r.WinnerIndex < 0 {
			draws++
		} else {
			wins[r.Winner]++
		}
		logger.Info("arena result",
			zap.String("arena", r.Arena),
			zap.String("winner", r.Winner),
			zap.Duration("duration", r.Duration),
			zap.Float64s("hp", r.HP[:]),
			zap.Ints("hits_landed", r.HitsLanded[:]),
			zap.Int("transitions", r.Transitions),
		)
	}
	logger.Info("arena summary",
		zap.Int("arenas", len(results)),
		zap.Any("wins", wins),
		zap.Int("draws", draws),
	)
}
