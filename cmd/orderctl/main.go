// Package main запускает консольный клиент заказов ресторанов.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/app"
	"github.com/mmeshcher/restaurant-orders/internal/config"
	"github.com/mmeshcher/restaurant-orders/internal/fakeapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return 2
	}

	logger := newLogger(cfg.Debug)
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	baseURL := cfg.BaseURL
	if cfg.FakeBackend {
		backend := fakeapi.New(cfg.UserID, logger.Named("fakeapi"))
		backend.SeedDemo()

		addr, err := serveFake(ctx, g, backend.Router())
		if err != nil {
			sugar.Errorw("fake backend error", "error", err.Error())
			return 1
		}
		baseURL = "http://" + addr
		sugar.Debugw("fake backend started", "addr", addr)
	}

	client := api.NewClient(baseURL, api.Options{
		Timeout:  cfg.RequestTimeout,
		RetryMax: cfg.RetryMax,
		Logger:   logger.Named("api"),
	})
	a := app.New(client, app.Options{DeliveryFee: cfg.DeliveryFee, Logger: logger})

	var code int
	g.Go(func() error {
		// команда завершает работу встроенного бэкенда вместе с собой
		defer stop()
		if err := execute(ctx, a, cfg.UserID, cfg.Args, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			code = 1
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Errorw("application terminated with error", "error", err)
		return 1
	}
	return code
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// serveFake запускает встроенный бэкенд на свободном локальном порту
// и останавливает его при отмене ctx.
func serveFake(ctx context.Context, g *errgroup.Group, h http.Handler) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	server := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("fake backend error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("fake backend shutdown error: %w", err)
		}
		return nil
	})

	return ln.Addr().String(), nil
}
