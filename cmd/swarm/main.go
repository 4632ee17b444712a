package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/stream"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

type options struct {
	configPath string
	headless   bool
	ticks      uint64
	listen     string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "JSON or TOML configuration file (defaults are built in)")
	flag.BoolVar(&opts.headless, "headless", false, "run without a window")
	flag.Uint64Var(&opts.ticks, "ticks", 0, "ticks to run in headless mode, 0 runs until interrupted")
	flag.StringVar(&opts.listen, "listen", "", "serve websocket viewers on this address, e.g. :8080")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	cfg := simulation.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = simulation.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	logger := cfg.Logger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system, err := actor.NewActorSystem("FlockWorld", actor.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer func() { _ = system.Stop(context.Background()) }()

	sim, err := simulation.New(ctx, cfg, system)
	if err != nil {
		return err
	}
	logger.Infof("simulation seed %d", sim.Seed)

	var hub *stream.Hub
	if opts.listen != "" {
		hub = stream.NewHub(sim.Control, cfg.Bounds(), logger)
		go hub.Run(ctx)
		srv := serve(opts.listen, hub, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if opts.headless {
		return runHeadless(ctx, sim, hub, opts.ticks, logger)
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Flock: Fish vs Sharks")
	ebiten.SetTPS(simulation.TicksPerSecond)

	game := NewGame(ctx, sim, hub, logger)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func serve(addr string, hub *stream.Hub, logger golog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("serving viewers on ws://%s/ws", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("viewer server stopped: %v", err)
		}
	}()
	return srv
}
