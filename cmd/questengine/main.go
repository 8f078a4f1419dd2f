// File path: cmd/questengine/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pulse360/questengine/internal/api"
	"github.com/pulse360/questengine/internal/bank"
	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/llm"
	"github.com/pulse360/questengine/internal/oracle"
	"github.com/pulse360/questengine/internal/pipeline"
	"github.com/pulse360/questengine/internal/sqlite"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("questengine: .env file not loaded", "error", err)
	} else {
		logger.Info("questengine: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite template catalog")
	cacheTTL := flag.String("oracle-cache-ttl", envDefault("ORACLE_CACHE_TTL", "10m"), "oracle response cache TTL (0 disables)")
	breakerThreshold := flag.Int("breaker-threshold", envIntDefault("ORACLE_BREAKER_THRESHOLD", 5), "oracle failures before the circuit opens")
	breakerRecovery := flag.String("breaker-recovery", envDefault("ORACLE_BREAKER_RECOVERY", "30s"), "time before a half-open probe of the oracle")
	flag.Parse()

	logger.Info("questengine: startup initiated", "addr", *addr, "catalog", *catalogPath)

	if dir := filepath.Dir(*catalogPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("questengine: catalog directory creation failed", "error", err)
			fmt.Println("catalog directory error:", err)
			os.Exit(1)
		}
	}
	catalog, err := sqlite.Open(*catalogPath)
	if err != nil {
		logger.Error("questengine: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer catalog.Close()

	provider := llm.NewProvider()
	logger.Info("questengine: llm provider ready", "provider", provider.Name())

	var oracleOpts []oracle.Option
	if recovery, err := time.ParseDuration(strings.TrimSpace(*breakerRecovery)); err != nil {
		logger.Warn("questengine: invalid breaker recovery, using default", "value", *breakerRecovery, "error", err)
		oracleOpts = append(oracleOpts, oracle.WithBreaker(*breakerThreshold, 0))
	} else {
		oracleOpts = append(oracleOpts, oracle.WithBreaker(*breakerThreshold, recovery))
	}
	if ttl, err := time.ParseDuration(strings.TrimSpace(*cacheTTL)); err != nil {
		logger.Warn("questengine: invalid cache TTL, caching disabled", "value", *cacheTTL, "error", err)
	} else if ttl > 0 {
		oracleOpts = append(oracleOpts, oracle.WithCacheTTL(ttl))
	}
	client := oracle.NewClient(provider, oracleOpts...)

	questionBank := bank.New()
	generator := pipeline.New(client, questionBank)

	server, err := api.NewServer(generator, catalog)
	if err != nil {
		logger.Error("questengine: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("questengine: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("questengine: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultCatalogPath() string {
	return filepath.Join("data", "catalog.db")
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envIntDefault(key string, fallback int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
