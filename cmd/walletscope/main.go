package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gabapcia/walletscope/internal/chainregistry"
	"github.com/gabapcia/walletscope/internal/config"
	"github.com/gabapcia/walletscope/internal/handlers/cli"
	relayhttp "github.com/gabapcia/walletscope/internal/handlers/relay"
	"github.com/gabapcia/walletscope/internal/infra/storage/memory"
	"github.com/gabapcia/walletscope/internal/infra/storage/redis"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/relay"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "walletscope:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var logOpts []logger.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile))
	}

	if err := logger.Init(cfg.LogLevel, logOpts...); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	shutdown, err := telemetry.Init(ctx, "walletscope",
		telemetry.WithEnabled(cfg.OTELEnabled),
		telemetry.WithVersion(version),
	)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "telemetry shutdown failed", "error", err)
		}
	}()

	registry, err := chainregistry.New(ctx, chainregistry.Deps{
		RelayURL:        cfg.RelayURL,
		HTTPTimeout:     cfg.HTTPTimeout,
		EtherscanAPIKey: cfg.EtherscanAPIKey,
		SubscanAPIKey:   cfg.SubscanAPIKey,
		SolanaRPC:       cfg.SolanaRPCURL,
		HyperliquidURL:  cfg.HyperliquidURL,
		ChainsFile:      cfg.ChainsFile,
	})
	if err != nil {
		return fmt.Errorf("build chain registry: %w", err)
	}

	return cli.Run(ctx, registry, relayFactory(cfg, registry))
}

// relayFactory wires the relay service with the cache the configuration
// selects: Redis when RELAY_REDIS_ADDR is set, process memory otherwise, none
// when RELAY_CACHE_TTL is zero.
func relayFactory(cfg config.Config, registry *chainregistry.Registry) cli.RelayFactory {
	return func(ctx context.Context) (http.Handler, func() error, error) {
		allowList := append(registry.RelayHosts(), cfg.RelayExtraHosts...)
		closeFn := func() error { return nil }

		var opts []relay.Option
		switch {
		case cfg.RelayCacheTTL <= 0:
			logger.Info(ctx, "relay cache disabled")
		case cfg.RelayRedisAddr != "":
			store, err := redis.NewClient(ctx, cfg.RelayRedisAddr,
				redis.WithCredentials(cfg.RelayRedisUsername, cfg.RelayRedisPassword),
				redis.WithDB(cfg.RelayRedisDB),
			)
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, relay.WithCache(store, cfg.RelayCacheTTL))
			closeFn = store.Close
		default:
			opts = append(opts, relay.WithCache(memory.New(memory.DefaultCleanupInterval), cfg.RelayCacheTTL))
		}

		client := transporthttp.NewClient(
			transporthttp.WithTimeout(cfg.HTTPTimeout),
			transporthttp.WithRetryMax(0),
			transporthttp.WithoutRedirects(),
		)

		svc, err := relay.New(client, allowList, opts...)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}

		logger.Info(ctx, "relay allow-list ready", "hosts", len(allowList))
		return relayhttp.NewHandler(svc), closeFn, nil
	}
}
