package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/voxel-sandbox/internal/config"
	"github.com/OCharnyshevich/voxel-sandbox/internal/player"
	"github.com/OCharnyshevich/voxel-sandbox/internal/sim"
	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
	"github.com/OCharnyshevich/voxel-sandbox/internal/viewer"
	"github.com/OCharnyshevich/voxel-sandbox/internal/world"
)

func main() {
	cfg := config.Default()

	configPath := flag.String("config", "", "config file path or go-getter URL")
	flag.StringVar(&cfg.Listen, "listen", cfg.Listen, "viewer HTTP address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.IntVar(&cfg.FrameRate, "frame-rate", cfg.FrameRate, "simulation frames per second")
	flag.IntVar(&cfg.RenderDistance, "render-distance", cfg.RenderDistance, "streaming radius in chunks")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "initial noise seed")
	flag.StringVar(&cfg.Noise, "noise", cfg.Noise, "noise backend: simplex or opensimplex")
	flag.IntVar(&cfg.AsyncWorkers, "async-workers", cfg.AsyncWorkers, "background chunk generators (0 = synchronous)")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *configPath != "" {
		fromFile, err := loadConfig(ctx, *configPath)
		if err != nil {
			slog.Error("load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))

	if err := run(ctx, cfg, log); err != nil {
		log.Error("sandbox error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context, src string) (*config.Config, error) {
	dir, err := os.MkdirTemp("", "voxeld-config-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path, err := config.Resolve(ctx, src, dir)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	noise, err := terrain.FactoryFor(cfg.Noise)
	if err != nil {
		return err
	}

	input := make(chan sim.Input, 64)
	hub := viewer.NewHub(cfg.Terrain(), input, log)
	defer hub.Close()

	observers := world.Observers{hub, world.LogObserver{Log: log.With("component", "events")}}
	opts := []world.Option{world.WithLogger(log), world.WithObserver(observers)}
	if cfg.AsyncWorkers > 0 {
		opts = append(opts, world.WithPool(ctx, cfg.AsyncWorkers, cfg.AsyncQueue))
	}
	w, err := world.New(world.Settings{
		Terrain:        cfg.Terrain(),
		RenderDistance: cfg.RenderDistance,
		Seed:           cfg.Seed,
		Noise:          noise,
	}, opts...)
	if err != nil {
		return err
	}
	defer w.Close()

	loop := sim.New(w, player.New(sim.Spawn(w, 0, 0)), input, cfg.FrameRate, log)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error {
		log.Info("viewer listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
