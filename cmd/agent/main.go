// Package main provides the unified trading agent service:
// - Tick scheduler (interval): reconciliation → exits → selection → entries
// - Control surface (HTTP): settings, stats, manual tick, notifications
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/market"
	"solana-trade-agent/internal/notify"
	"solana-trade-agent/internal/observability"
	"solana-trade-agent/internal/orchestrator"
	"solana-trade-agent/internal/safety"
	"solana-trade-agent/internal/solana"
	"solana-trade-agent/internal/stats"
	"solana-trade-agent/internal/storage"
	"solana-trade-agent/internal/storage/memory"
	"solana-trade-agent/internal/storage/migrations"
	pgstore "solana-trade-agent/internal/storage/postgres"
	"solana-trade-agent/internal/swap"
)

// Agent holds all components of the unified service.
type Agent struct {
	orch     *orchestrator.Orchestrator
	stores   *agentStores
	notifier notify.Notifier
	metrics  *observability.Metrics
	logger   *log.Logger

	// State
	mu         sync.Mutex
	started    time.Time
	lastReport domain.TickReport
	tickRuns   int
}

// agentStores holds all storage implementations.
type agentStores struct {
	settings storage.SettingsStore
	position storage.PositionStore
	ledger   storage.TradeLedger
	guard    storage.TickGuard
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, confirmation fast path)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	listenAddr := flag.String("listen-addr", ":8080", "Control surface HTTP address")
	tickInterval := flag.Duration("tick-interval", 60*time.Second, "Tick scheduler interval")
	candidateLimit := flag.Int("candidate-limit", 0, "Candidates considered per tick (0 = default)")
	pairsQuery := flag.String("pairs-query", "", "DexScreener search query override")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[agent] ", log.LstdFlags)

	// Validate required configuration; these are fatal at startup
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	keypairRaw := os.Getenv("WALLET_KEYPAIR")
	if keypairRaw == "" {
		logger.Fatal("WALLET_KEYPAIR is required (base58 or JSON byte array)")
	}
	keypair, err := solana.ParseKeypair(keypairRaw)
	if err != nil {
		logger.Fatalf("Failed to parse WALLET_KEYPAIR: %v", err)
	}
	logger.Printf("Custody wallet: %s", keypair.PublicKey())

	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Notifier is optional; a missing token disables delivery
	notifier, err := notify.NewTelegram(os.Getenv("TELEGRAM_BOT_TOKEN"), logger)
	if err != nil {
		logger.Fatalf("Failed to create notifier: %v", err)
	}

	// Create collaborator clients
	rpc := solana.NewHTTPClient(*rpcEndpoint)
	priceClient := market.NewPriceClient()
	var pairsOpts []market.PairsOption
	if *pairsQuery != "" {
		pairsOpts = append(pairsOpts, market.WithPairsQuery(*pairsQuery))
	}
	pairsClient := market.NewPairsClient(pairsOpts...)
	safetyClient := safety.NewClient()
	venue := swap.NewJupiterClient()

	executor := swap.NewExecutor(venue, rpc, keypair,
		swap.WithLogger(log.New(os.Stdout, "[swap] ", log.LstdFlags)))

	var reconcilerOpts []swap.ReconcilerOption
	if *wsEndpoint != "" {
		reconcilerOpts = append(reconcilerOpts,
			swap.WithConfirmationClient(solana.NewConfirmationClient(*wsEndpoint)))
	}
	reconcilerOpts = append(reconcilerOpts,
		swap.WithReconcilerLogger(log.New(os.Stdout, "[reconcile] ", log.LstdFlags)))
	reconciler := swap.NewReconciler(rpc, reconcilerOpts...)

	metrics := observability.NewMetrics("")

	orch := orchestrator.New(orchestrator.Options{
		SettingsStore:  stores.settings,
		PositionStore:  stores.position,
		TradeLedger:    stores.ledger,
		TickGuard:      stores.guard,
		PriceSource:    priceClient,
		PairSource:     pairsClient,
		SafetySource:   safetyClient,
		SwapExecutor:   executor,
		Reconciler:     reconciler,
		Balance:        rpc,
		Notifier:       notifier,
		Observer:       metrics,
		WalletAddress:  keypair.PublicKey(),
		CandidateLimit: *candidateLimit,
		Logger:         log.New(os.Stdout, "[tick] ", log.LstdFlags),
	})

	agent := &Agent{
		orch:     orch,
		stores:   stores,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		started:  time.Now(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Start HTTP control surface
	go agent.startHTTPServer(ctx, *listenAddr)

	// Run the tick scheduler until cancelled
	agent.runScheduler(ctx, *tickInterval)

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN string, useMemory bool) (*agentStores, func(), error) {
	if useMemory {
		stores := &agentStores{
			settings: memory.NewSettingsStore(),
			position: memory.NewPositionStore(),
			ledger:   memory.NewTradeLedger(),
			guard:    memory.NewTickGuard(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	stores := &agentStores{
		settings: pgstore.NewSettingsStore(pool),
		position: pgstore.NewPositionStore(pool),
		ledger:   pgstore.NewTradeLedger(pool),
		guard:    pgstore.NewTickGuard(pool),
	}
	return stores, pool.Close, nil
}

// runScheduler invokes the orchestrator once per interval.
func (a *Agent) runScheduler(ctx context.Context, interval time.Duration) {
	a.logger.Printf("Starting tick scheduler (interval: %v)...", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runTick(ctx)
		}
	}
}

// runTick executes one tick and records its report.
func (a *Agent) runTick(ctx context.Context) domain.TickReport {
	report := a.orch.Tick(ctx)
	a.metrics.ObserveTick(report)

	if open, err := a.stores.position.List(ctx); err == nil {
		a.metrics.PositionsOpen.Set(float64(len(open)))
	}

	a.mu.Lock()
	a.lastReport = report
	a.tickRuns++
	a.mu.Unlock()

	a.logger.Printf("Tick %d %s: %s (closed=%d opened=%d screened=%d in %v)",
		report.Seq, report.Status, report.Message,
		report.Closed, report.Opened, report.ScreenedOut, report.Elapsed)
	return report
}

// startHTTPServer starts the HTTP control surface.
func (a *Agent) startHTTPServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", a.handleStatus)
	mux.HandleFunc("/settings", a.handleSettings)
	mux.HandleFunc("/stats", a.handleStats)
	mux.HandleFunc("/tick", a.handleTick)
	mux.HandleFunc("/notify/test", a.handleNotifyTest)

	a.logger.Printf("Starting HTTP server on %s", addr)
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.logger.Printf("HTTP server error: %v", err)
	}
}

// settingsPatch enumerates the patchable settings fields. Unknown fields in
// the request body are ignored.
type settingsPatch struct {
	Run          *bool    `json:"run"`
	RiskMode     *string  `json:"riskMode"`
	CustomUSD    *float64 `json:"customUsd"`
	NotifyTarget *string  `json:"notifyTarget"`
}

// handleSettings serves GET (current document) and POST (partial update).
// The store read happens inside the method arms so an unsupported method
// answers 405 without touching the store.
func (a *Agent) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		settings, err := a.stores.settings.Get(ctx)
		if err != nil {
			http.Error(w, "settings unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, settings)

	case http.MethodPost:
		var patch settingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		settings, err := a.stores.settings.Get(ctx)
		if err != nil {
			http.Error(w, "settings unavailable", http.StatusInternalServerError)
			return
		}
		if patch.Run != nil {
			settings.Run = *patch.Run
		}
		if patch.RiskMode != nil {
			mode := domain.RiskMode(*patch.RiskMode)
			if !mode.Valid() {
				http.Error(w, "unknown risk mode", http.StatusBadRequest)
				return
			}
			settings.RiskMode = mode
		}
		if patch.CustomUSD != nil {
			settings.CustomUSD = *patch.CustomUSD
		}
		if patch.NotifyTarget != nil {
			settings.NotifyTarget = *patch.NotifyTarget
		}
		settings.LastUpdated = time.Now().UnixMilli()

		if err := a.stores.settings.Put(ctx, settings); err != nil {
			http.Error(w, "settings write failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, settings)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStats serves the ledger PnL window summary.
func (a *Agent) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := a.stores.ledger.List(r.Context())
	if err != nil {
		http.Error(w, "ledger unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats.Compute(records, time.Now()))
}

// handleTick triggers one tick immediately. The response is always 200 with
// a structured report; internal faults surface in the report status.
func (a *Agent) handleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, a.runTick(r.Context()))
}

// handleNotifyTest sends a test notification to the configured target.
func (a *Agent) handleNotifyTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	settings, err := a.stores.settings.Get(r.Context())
	if err != nil {
		writeJSON(w, map[string]bool{"ok": false})
		return
	}

	ok := false
	if a.notifier != nil {
		ok = a.notifier.Send(settings.NotifyTarget, "Trade agent notification test")
	}
	writeJSON(w, map[string]bool{"ok": ok})
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	TickRuns   int               `json:"tick_runs"`
	LastReport domain.TickReport `json:"last_report"`
}

// handleStatus returns agent status as JSON.
func (a *Agent) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	writeJSON(w, StatusResponse{
		Status:     "running",
		Uptime:     time.Since(a.started).String(),
		TickRuns:   a.tickRuns,
		LastReport: a.lastReport,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
