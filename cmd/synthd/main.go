package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"synthchain/config"
	"synthchain/core/state"
	"synthchain/native/oracle"
	"synthchain/native/synth"
	"synthchain/observability/logging"
	"synthchain/rpc"
	"synthchain/storage"
)

const rpcTokenEnv = "SYNTH_RPC_TOKEN"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("SYNTH_ENV"))
	logger := logging.Setup("synthd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	manager := state.NewManager(db)
	engine := synth.NewEngine(manager)
	engine.SetOracle(buildOracle(cfg, logger))
	engine.SetEmitter(&synth.EventLog{})
	for _, mint := range cfg.CollateralMints {
		engine.RegisterCollateral(mint)
	}

	if cfg.MetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("starting metrics server", "addr", cfg.MetricsAddress)
			if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	token := strings.TrimSpace(cfg.RPCAuthToken)
	if override := strings.TrimSpace(os.Getenv(rpcTokenEnv)); override != "" {
		token = override
	}
	server := rpc.NewServer(engine, rpc.ServerConfig{
		AuthToken: token,
		RateLimit: cfg.RPCRateLimit,
		RateBurst: cfg.RPCRateBurst,
		Logger:    logger,
	})
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// buildOracle wires the configured HTTP feeds behind the freshness-checked
// aggregator. With no feeds configured every price request fails until an
// operator registers a source, which keeps mint and burn safely closed.
func buildOracle(cfg *config.Config, logger *slog.Logger) oracle.PriceOracle {
	aggregator := oracle.NewAggregator(cfg.Oracle.Priority, cfg.Oracle.MaxAge())
	client := &http.Client{Timeout: 10 * time.Second}
	for _, feed := range cfg.Oracle.Feeds {
		aggregator.Register(feed.Name, oracle.NewHTTPFeed(feed.Name, client, feed.Endpoint, feed.APIKey))
		logger.Info("registered oracle feed", "name", feed.Name, "endpoint", feed.Endpoint)
	}
	return aggregator
}
