// Command booth-twin serves an in-memory fake of the auth and studio
// services for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/booth/internal/twin"
)

func main() {
	os.Exit(run())
}

func run() int {
	authAddr := flag.String("auth-addr", "127.0.0.1:5000", "listen address for the auth service")
	studioAddr := flag.String("studio-addr", "127.0.0.1:5001", "listen address for the studio service")
	tokenTTL := flag.Duration("token-ttl", 15*time.Minute, "access token lifetime")
	delay := flag.Duration("latency", 0, "artificial delay added to every request")
	seed := flag.Bool("seed", true, "create a demo user and sample studios")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tw, err := twin.New(twin.Options{TokenTTL: *tokenTTL, Latency: *delay, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "booth-twin: %v\n", err)
		return 1
	}
	if *seed {
		if err := seedData(tw); err != nil {
			fmt.Fprintf(os.Stderr, "booth-twin: seed: %v\n", err)
			return 1
		}
		logger.Info("seeded demo account", "email", demoEmail, "password", demoPassword)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for name, addr := range map[string]string{"auth": *authAddr, "studio": *studioAddr} {
		srv := &http.Server{Addr: addr, Handler: tw, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("listening", "service", name, "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "booth-twin: %v\n", err)
		return 1
	}
	return 0
}

const (
	demoEmail    = "demo@booth.local"
	demoPassword = "demo123"
)

func seedData(tw *twin.Server) error {
	if _, err := tw.Store.AddUser("Demo", demoEmail, demoPassword); err != nil {
		return err
	}
	for _, st := range []twin.Studio{
		{Name: "Echo Room", Location: "Bangalore", Description: "Treated vocal booth with a Neumann U87.", PricePerHour: 40, Amenities: []string{"mic", "booth", "monitors"}, Rating: 4.6},
		{Name: "Warehouse Loft", Location: "Pune", Description: "Daylight photo studio with cyclorama wall.", PricePerHour: 25, Amenities: []string{"cyclorama", "strobes"}, Rating: 4.1},
		{Name: "Tape Op", Location: "Mumbai", Description: "Analog tracking room with a 24-track machine.", PricePerHour: 60, Amenities: []string{"tape", "drums", "piano"}, Rating: 4.8},
		{Name: "Podcast Pod", Location: "Bangalore", Description: "Two-person podcast setup.", PricePerHour: 15, Amenities: []string{"mic", "video"}, Rating: 3.9},
	} {
		tw.Store.CreateStudio(st)
	}
	return nil
}
