package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/nearlens/nearlens/internal/config"
	"github.com/nearlens/nearlens/internal/handlers/cli"
	"github.com/nearlens/nearlens/internal/infra/fastnear"
	"github.com/nearlens/nearlens/internal/infra/nearrpc"
	redisstorage "github.com/nearlens/nearlens/internal/infra/storage/redis"
	"github.com/nearlens/nearlens/internal/pkg/logger"
	"github.com/nearlens/nearlens/internal/pkg/resilience/retry"
	"github.com/nearlens/nearlens/internal/pkg/telemetry"
	transporthttp "github.com/nearlens/nearlens/internal/pkg/transport/http"
	"github.com/nearlens/nearlens/internal/pkg/transport/jsonrpc"
	"github.com/nearlens/nearlens/internal/tokenmeta"
	"github.com/nearlens/nearlens/internal/txlookup"
)

const serviceName = "nearlens"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry init failed: %v\n", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	api := fastnear.NewClient(
		cfg.APIBaseURL,
		transporthttp.NewClient(transporthttp.WithTimeout(cfg.HTTPTimeout)),
	)

	rpc := jsonrpc.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.RPCEndpoint)
	source := nearrpc.NewClient(rpc, retry.New(retry.WithAttempts(3), retry.WithLastErrorOnly(true)))

	metaOpts := []tokenmeta.Option{tokenmeta.WithNetwork(cfg.Network)}
	if cfg.RedisEnabled {
		store, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal(ctx, "redis connection failed", "addr", cfg.RedisAddr, "error", err)
		}
		defer store.Close()

		metaOpts = append(metaOpts, tokenmeta.WithStorage(store))
	}

	svc := cli.Services{
		API:          api,
		Transactions: txlookup.NewService(api),
		TokenMeta:    tokenmeta.NewService(source, metaOpts...),
		PageSize:     cfg.PageSize,
		BatchPages:   cfg.BatchPages,
	}

	if err := cli.Run(ctx, svc); err != nil {
		logger.Fatal(ctx, "command failed", "error", err)
	}
}
