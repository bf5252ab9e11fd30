package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	logging "github.com/op/go-logging"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/iliamunaev/coffee-sms/internal/app"
	"github.com/iliamunaev/coffee-sms/internal/config"
	"github.com/iliamunaev/coffee-sms/internal/middleware"
)

var log = logging.MustGetLogger("server")

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("COFFEE_CONFIG"), "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %s", err)
	}
	if err := config.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("%s", err)
	}
	log.Debugf("Config: %+v", redacted(*cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, nil); err != nil {
		log.Fatal(err)
	}
}

// run wires the app and serves until ctx is done, then drains in-flight
// requests. If ready is non-nil it receives the bound address.
func run(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Errorf("close: %v", err)
		}
	}()

	srv := newServer(cfg, a.Handler.Routes())

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return err
	}
	log.Infof("listening on %s", ln.Addr())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// newServer applies the HTTP timeouts. The write timeout leaves room for
// the per-request deadline.
func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           middleware.Logging(h),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func redacted(cfg config.Config) config.Config {
	if cfg.LLM.APIKey != "" {
		cfg.LLM.APIKey = "***"
	}
	if cfg.Kitchen.AMQPURL != "" {
		cfg.Kitchen.AMQPURL = "***"
	}
	return cfg
}
