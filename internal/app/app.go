// Package app wires the ordering assistant from its configuration.
package app

import (
	"fmt"

	logging "github.com/op/go-logging"

	"github.com/iliamunaev/coffee-sms/internal/config"
	"github.com/iliamunaev/coffee-sms/internal/dialog"
	"github.com/iliamunaev/coffee-sms/internal/kitchen"
	"github.com/iliamunaev/coffee-sms/internal/llm"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/order"
	"github.com/iliamunaev/coffee-sms/internal/payment"
	"github.com/iliamunaev/coffee-sms/internal/reply"
	"github.com/iliamunaev/coffee-sms/internal/service/pool"
	"github.com/iliamunaev/coffee-sms/internal/service/tracker"
	"github.com/iliamunaev/coffee-sms/internal/session"
	httptransport "github.com/iliamunaev/coffee-sms/internal/transport/http"
)

var log = logging.MustGetLogger("app")

// App holds the wired components.
type App struct {
	Machine *dialog.Machine
	Book    *order.Book
	Handler *httptransport.Handler

	// Dispatches counts conversations in flight; Calls counts outbound
	// gateway and text-generator calls.
	Dispatches *tracker.Tracker
	Calls      *tracker.Tracker

	publisher kitchen.Publisher
}

// New builds every component cfg asks for. The returned App owns the
// kitchen publisher; call Close when done.
func New(cfg *config.Config) (*App, error) {
	catalog := menu.Default()
	if cfg.CatalogPath != "" {
		c, err := menu.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = c
	}
	log.Infof("catalog: %d items, %d modifiers", len(catalog.Items()), len(catalog.Modifiers()))

	dispatches := &tracker.Tracker{}
	calls := &tracker.Tracker{}

	var (
		renderer   = reply.NewRenderer(nil)
		classifier dialog.Classifier
	)
	if cfg.LLM.Enabled {
		client, err := llm.NewOpenAI(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
		}, pool.New(cfg.LLM.MaxConcurrent), calls, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		renderer = reply.NewRenderer(client)
		classifier = client
		log.Infof("text generation enabled: model=%s", cfg.LLM.Model)
	}

	var gateway payment.Gateway
	if cfg.Payment.Gateway == config.GatewayMock {
		gateway = payment.NewMockGateway(cfg.Payment.Delay, calls)
	}

	publisher, err := newPublisher(cfg.Kitchen)
	if err != nil {
		return nil, err
	}

	book := order.NewBook()
	m := dialog.New(dialog.Config{
		Catalog:    catalog,
		Store:      session.NewStore(cfg.SessionTimeout),
		Book:       book,
		Renderer:   renderer,
		Gateway:    gateway,
		Fulfiller:  order.NewFulfiller(cfg.RequestTimeout, kitchen.Step(publisher)),
		Classifier: classifier,
		Tracker:    dispatches,
		PrepTime:   cfg.PrepTime,
	})

	return &App{
		Machine:    m,
		Book:       book,
		Handler:    httptransport.New(m, book, dispatches, cfg.RequestTimeout),
		Dispatches: dispatches,
		Calls:      calls,
		publisher:  publisher,
	}, nil
}

func newPublisher(cfg config.Kitchen) (kitchen.Publisher, error) {
	if cfg.AMQPURL == "" {
		log.Info("kitchen tickets: in memory")
		return kitchen.NewMemoryPublisher(), nil
	}
	p, err := kitchen.DialAMQP(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		return nil, fmt.Errorf("kitchen: %w", err)
	}
	log.Infof("kitchen tickets: amqp exchange %s", cfg.Exchange)
	return p, nil
}

// Close releases the kitchen publisher.
func (a *App) Close() error {
	return a.publisher.Close()
}
