package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/aimpad/internal/action"
	"github.com/Versifine/aimpad/internal/config"
	"github.com/Versifine/aimpad/internal/debug"
	"github.com/Versifine/aimpad/internal/dispatch"
	"github.com/Versifine/aimpad/internal/dispatch/robot"
	"github.com/Versifine/aimpad/internal/event"
	"github.com/Versifine/aimpad/internal/gamepad"
	"github.com/Versifine/aimpad/internal/gamepad/ebitenpad"
	"github.com/Versifine/aimpad/internal/logger"
	"github.com/Versifine/aimpad/internal/overlay"
	"github.com/Versifine/aimpad/internal/overlay/ebitenhost"
)

func main() {
	env, err := config.ParseEnv()
	if err != nil {
		slog.Error("Failed to read environment", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(env)
	if err := cfg.Validate(gamepad.Names); err != nil {
		slog.Error("Invalid config", "path", env.ConfigPath, "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend dispatch.Backend = robot.New()
	if cfg.Output.Backend == "log" {
		backend = dispatch.LogBackend{}
	}
	bus := event.NewBus()
	handler := dispatch.NewHandler(backend, cfg.AbilityKeys(), bus)
	defer handler.ReleaseAll()

	pad := gamepad.NewPad(cfg.Controller.Deadzone, cfg.Actions())
	display := overlay.NewDisplay(cfg, bus)

	slog.Info("Starting aimpad",
		"config", env.ConfigPath,
		"backend", cfg.Output.Backend,
		"drain_order", cfg.Controller.DrainOrder,
		"buttons", len(pad.Names()),
		"debug_console", env.DebugConsole,
	)
	if err := run(ctx, env.DebugConsole, cfg, pad, display, handler); err != nil {
		slog.Error("Stopped", "error", err, "fatal", action.IsFatal(err))
		handler.ReleaseAll()
		os.Exit(1)
	}
	slog.Info("Stopped")
}

func run(ctx context.Context, console bool, cfg *config.Config, pad *gamepad.Pad, display *overlay.Display, handler *dispatch.Handler) error {
	if console {
		c := debug.NewConsole(pad, display)
		c.Attach(action.NewManager(cfg, handler, c))
		return c.Start(ctx)
	}
	host := ebitenhost.New(ctx, cfg, pad, ebitenpad.New(), display)
	host.Attach(action.NewManager(cfg, handler, host))
	return host.Run()
}
