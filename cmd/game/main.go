package main

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Ship-Sense/internal/ai"
	"github.com/Garsondee/Ship-Sense/internal/config"
	"github.com/Garsondee/Ship-Sense/internal/logging"
	"github.com/Garsondee/Ship-Sense/internal/sandbox"
	"github.com/Garsondee/Ship-Sense/internal/telemetry"
	"github.com/Garsondee/Ship-Sense/internal/viewer"
)

const (
	windowW = 1600
	windowH = 900
)

func main() {
	var (
		cfgPath  string
		scenario string
		seed     int64
	)
	flag.StringVar(&cfgPath, "config", "", "config file (yaml, json or toml)")
	flag.StringVar(&scenario, "scenario", "skirmish", "scenario: "+strings.Join(sandbox.ScenarioNames(), ", "))
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "scene seed")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.New(config.Log{Level: "info"}, os.Stderr).Fatal().Err(err).Msg("config")
	}

	start := time.Now()
	log := logging.New(cfg.Log, os.Stderr)
	if f, err := logging.OpenFile(cfg.Log.Dir, "game", start); err == nil {
		defer f.Close()
		log = logging.NewMulti(cfg.Log, os.Stderr, f)
	} else {
		log.Warn().Err(err).Msg("file logging disabled")
	}

	s, ok := sandbox.Lookup(scenario)
	if !ok {
		log.Fatal().Str("scenario", scenario).Strs("known", sandbox.ScenarioNames()).Msg("unknown scenario")
	}

	metrics, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry")
	}

	sc := s.Build(seed,
		sandbox.WithLogger(log),
		sandbox.WithControllerOptions(
			ai.WithTuning(cfg.Targeting),
			ai.WithPreferences(cfg.Preferences),
			ai.WithMetrics(metrics),
		),
	)
	log.Info().Str("scenario", s.Name).Int64("seed", seed).Msg("starting viewer")

	ebiten.SetWindowTitle("Ship Sense - " + s.Name)
	ebiten.SetWindowSize(windowW, windowH)
	if err := ebiten.RunGame(viewer.New(sc, s, windowW, windowH, log)); err != nil {
		log.Fatal().Err(err).Msg("viewer")
	}
}
