package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"zurie/internal/app"
	"zurie/internal/config"
	"zurie/internal/logging"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML configuration file")
	flag.Parse()

	fmt.Println("Zurie - WebGPU raymarcher")
	fmt.Println("Controls:")
	fmt.Println("  Mouse drag    : Orbit / raise camera")
	fmt.Println("  Mouse wheel   : Zoom")
	fmt.Println("  A/D / Left/Right : Orbit")
	fmt.Println("  W/S / Up/Down    : Raise / lower camera")
	fmt.Println("  [ / ]         : Field of view")
	fmt.Println("  Tab           : Cycle shown texture")
	fmt.Println("  R             : Rebuild render passes")
	fmt.Println("  V             : Toggle vsync")
	fmt.Println("  Escape        : Exit")
	fmt.Println()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	level := new(slog.LevelVar)
	level.Set(logging.ParseLevel(cfg.Logging.Level))
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*configPath, level); err != nil {
		logging.Logger().Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, level *slog.LevelVar) error {
	application, err := app.New(configPath)
	if err != nil {
		return err
	}
	defer application.Cleanup()
	application.SetLogLevel(level)

	return application.Run()
}
