// Command depthsync ingests live depth-delta and aggregated-trade streams
// from the exchanges in its config file, reconciles them against REST
// snapshots, and serves the resulting bounded ladders over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/BullionBear/depthsync/internal/adapter"
	"github.com/BullionBear/depthsync/internal/api"
	"github.com/BullionBear/depthsync/internal/config"
	"github.com/BullionBear/depthsync/internal/depth"
	"github.com/BullionBear/depthsync/internal/depthbook"
	"github.com/BullionBear/depthsync/internal/exchange/binance"
	"github.com/BullionBear/depthsync/internal/ingest"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/BullionBear/depthsync/internal/mdqueue"
	"github.com/BullionBear/depthsync/internal/natsconn"
	"github.com/BullionBear/depthsync/internal/pubsub"
	"github.com/BullionBear/depthsync/internal/reconcile"
	"github.com/BullionBear/depthsync/pkg/logger"
	"github.com/BullionBear/depthsync/pkg/shutdown"
	evbus "github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
)

func main() {
	var (
		instrumentsFlag string
		numConn         int
		configPath      string
		delayLimit      uint64
		httpPort        string
		natsURI         string
	)
	flag.StringVar(&instrumentsFlag, "instruments", "BTCUSDT", "comma-separated raw symbols to track")
	flag.IntVar(&numConn, "num-conn", 3, "redundant connections per exchange")
	flag.StringVar(&configPath, "config-path", "endpoints.toml", "exchange endpoint config file")
	flag.Uint64Var(&delayLimit, "delay-limit", 100, "staleness horizon in sequence ids")
	flag.StringVar(&httpPort, "http-port", "8080", "port for the read-only book HTTP surface")
	flag.StringVar(&natsURI, "nats", "", "optional nats:// URI to publish ladders to, e.g. nats://localhost:4222?subject=depthsync.ladder")
	flag.Parse()

	logger.InitLogger(true)
	symbols := strings.Split(instrumentsFlag, ",")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}

	sd := shutdown.NewShutdown(logger.Log)
	ctx := sd.Context()

	const depthLimit = depth.DefaultDepthLimit
	skipLimit := depthbook.SequenceID(delayLimit)

	queue := mdqueue.New(mdqueue.DefaultCapacity)
	adapters := make(map[instrument.Exchange]adapter.Adapter, len(cfg.Exchanges))
	var tracked []instrument.Instrument

	for _, exCfg := range cfg.Exchanges {
		a := binance.NewAdapter(exCfg, depthLimit)
		adapters[instrument.Exchange(exCfg.Exchange)] = a

		infoCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		all, err := a.InstrumentInfo(infoCtx)
		cancel()
		if err != nil {
			logger.Log.Error().Err(err).Str("exchange", exCfg.Exchange).Msg("failed to fetch instrument metadata")
			os.Exit(1)
		}

		cache := instrument.NewCache(instrument.Exchange(exCfg.Exchange), 24*time.Hour, 36*time.Hour)
		var exchangeInsts []instrument.Instrument
		for _, inst := range all {
			if !containsSymbol(symbols, inst.RawSymbol) {
				continue
			}
			cache.Put(inst)
			exchangeInsts = append(exchangeInsts, inst)
			tracked = append(tracked, inst)
		}
		if len(exchangeInsts) == 0 {
			logger.Log.Warn().Str("exchange", exCfg.Exchange).Msg("none of the requested instruments were found")
			continue
		}

		for i := 0; i < numConn; i++ {
			task := ingest.New(a, exchangeInsts, cache.AliasMap, queue)
			go func(i int) {
				if err := task.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Log.Error().Err(err).Int("conn", i).Str("exchange", exCfg.Exchange).Msg("ingestion task exited")
				}
			}(i)
		}
	}

	registry := depthbook.NewRegistry(tracked, depthLimit, skipLimit, logger.Log)
	bus := evbus.New()

	if natsURI != "" {
		natsCfg, err := natsconn.ParseConnectionString(natsURI)
		if err != nil {
			logger.Log.Error().Err(err).Msg("invalid --nats connection string")
			os.Exit(1)
		}
		publisher, err := pubsub.NewPublisher(natsCfg)
		if err != nil {
			logger.Log.Error().Err(err).Msg("failed to connect nats publisher")
			os.Exit(1)
		}
		bus.SubscribeAsync(reconcile.LadderUpdatedTopic, func(inst instrument.Instrument, buy, sell []depth.Level) {
			if err := publisher.Publish(inst, buy, sell); err != nil {
				logger.Log.Error().Err(err).Str("instrument", inst.String()).Msg("failed to publish ladder to nats")
			}
		}, false)
		sd.HookShutdownCallback("nats-publisher", publisher.Close, 5*time.Second)
	}

	loop := reconcile.New(registry, queue, adapters, bus)
	go loop.Run(ctx)
	loop.ScheduleWarmupSnapshots(ctx, 2*time.Second)

	router := gin.Default()
	v1 := router.Group("/api/v1")
	api.RegisterBooks(v1, registry)
	srv := &http.Server{Addr: ":" + httpPort, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error().Err(err).Msg("http server failed")
		}
	}()
	sd.HookShutdownCallback("http-server", func() { srv.Close() }, 10*time.Second)
	sd.HookShutdownCallback("reconciliation-queue", queue.Close, 5*time.Second)

	logger.Log.Info().
		Int("instruments", len(tracked)).
		Int("numConn", numConn).
		Str("httpPort", httpPort).
		Msg("depthsync started")

	sd.WaitForShutdown(syscall.SIGINT, syscall.SIGTERM)
}

func containsSymbol(symbols []string, raw string) bool {
	for _, s := range symbols {
		if strings.EqualFold(strings.TrimSpace(s), raw) {
			return true
		}
	}
	return false
}

