// Package orchestrator runs the tick pipeline.
// It coordinates: settlement reconciliation → exit evaluation → candidate
// selection → per-candidate screening, sizing, and swap execution.
package orchestrator

import (
	"context"
	"log"
	"os"
	"time"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/exits"
	"solana-trade-agent/internal/market"
	"solana-trade-agent/internal/notify"
	"solana-trade-agent/internal/safety"
	"solana-trade-agent/internal/selector"
	"solana-trade-agent/internal/sizing"
	"solana-trade-agent/internal/solana"
	"solana-trade-agent/internal/storage"
)

// DefaultLeaseTTL bounds the tick lease of a crashed invocation.
const DefaultLeaseTTL = 5 * time.Minute

// Collaborator interfaces, narrowed to what the tick needs so tests can
// substitute fakes.

// PriceSource quotes the base asset in fiat terms.
type PriceSource interface {
	SOLUSD(ctx context.Context) (float64, error)
}

// PairSource lists newly listed trading pairs.
type PairSource interface {
	NewPairs(ctx context.Context) ([]market.Pair, error)
}

// SafetySource looks up a token safety assessment.
type SafetySource interface {
	Assess(ctx context.Context, mint string) (*safety.Assessment, error)
}

// SwapExecutor opens a position for an accepted candidate.
type SwapExecutor interface {
	Execute(ctx context.Context, c domain.Candidate, sizeUSD, solUSD float64) (*domain.Position, error)
}

// SettlementReconciler resolves the fate of submitted entries.
type SettlementReconciler interface {
	Reconcile(ctx context.Context, positions []domain.Position) (kept []domain.Position, promoted, dropped int)
}

// BalanceSource reports the custody wallet balance in lamports.
type BalanceSource interface {
	GetBalance(ctx context.Context, pubkey string) (uint64, error)
}

// CollaboratorObserver records the latency and outcome of outbound calls.
type CollaboratorObserver interface {
	ObserveCollaborator(name string, elapsed time.Duration, err error)
}

// Orchestrator coordinates one tick of the trading agent.
type Orchestrator struct {
	settings  storage.SettingsStore
	positions storage.PositionStore
	ledger    storage.TradeLedger
	guard     storage.TickGuard

	price      PriceSource
	pairs      PairSource
	safety     SafetySource
	executor   SwapExecutor
	reconciler SettlementReconciler
	balance    BalanceSource

	wallet         string
	exitEvaluator  *exits.Evaluator
	candidateLimit int
	leaseTTL       time.Duration
	notifier       notify.Notifier
	observer       CollaboratorObserver
	logger         *log.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	SettingsStore storage.SettingsStore
	PositionStore storage.PositionStore
	TradeLedger   storage.TradeLedger
	TickGuard     storage.TickGuard

	// Required collaborators
	PriceSource  PriceSource
	PairSource   PairSource
	SafetySource SafetySource
	SwapExecutor SwapExecutor
	Balance      BalanceSource

	// Optional collaborators
	Reconciler SettlementReconciler
	Notifier   notify.Notifier
	Observer   CollaboratorObserver

	// WalletAddress is the custody wallet public key used for valuation.
	WalletAddress string

	ExitEvaluator  *exits.Evaluator
	CandidateLimit int           // 0 means selector.DefaultLimit
	LeaseTTL       time.Duration // 0 means DefaultLeaseTTL
	Logger         *log.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		settings:       opts.SettingsStore,
		positions:      opts.PositionStore,
		ledger:         opts.TradeLedger,
		guard:          opts.TickGuard,
		price:          opts.PriceSource,
		pairs:          opts.PairSource,
		safety:         opts.SafetySource,
		executor:       opts.SwapExecutor,
		reconciler:     opts.Reconciler,
		balance:        opts.Balance,
		notifier:       opts.Notifier,
		observer:       opts.Observer,
		wallet:         opts.WalletAddress,
		exitEvaluator:  opts.ExitEvaluator,
		candidateLimit: opts.CandidateLimit,
		leaseTTL:       opts.LeaseTTL,
		logger:         opts.Logger,
	}
	if o.candidateLimit <= 0 {
		o.candidateLimit = selector.DefaultLimit
	}
	if o.leaseTTL <= 0 {
		o.leaseTTL = DefaultLeaseTTL
	}
	if o.exitEvaluator == nil {
		o.exitEvaluator = exits.NewEvaluator(exits.DefaultDecayFraction, opts.Logger)
	}
	if o.logger == nil {
		o.logger = log.New(os.Stdout, "[tick] ", log.LstdFlags)
	}
	return o
}

// Tick runs one full pipeline invocation. It always returns a report and
// never an error: every internal fault is folded into the report status.
func (o *Orchestrator) Tick(ctx context.Context) domain.TickReport {
	started := time.Now()

	seq, ok, err := o.guard.Acquire(ctx, started, o.leaseTTL)
	if err != nil {
		return report(domain.TickFailed, "tick guard unavailable: "+err.Error(), 0, started)
	}
	if !ok {
		return report(domain.TickSkipped, "previous tick still holds the lease", 0, started)
	}
	defer func() {
		if err := o.guard.Release(ctx, seq); err != nil {
			o.logger.Printf("tick %d: lease release failed: %v", seq, err)
		}
	}()

	settings, err := o.settings.Get(ctx)
	if err != nil {
		o.logger.Printf("tick %d: settings unreadable, using defaults: %v", seq, err)
		settings = domain.DefaultSettings()
	}
	if !settings.Run {
		return report(domain.TickDisabled, "agent disabled", seq, started)
	}

	r := domain.TickReport{Status: domain.TickCompleted, Seq: seq}

	positions, err := o.positions.List(ctx)
	if err != nil {
		return report(domain.TickFailed, "position store unavailable: "+err.Error(), seq, started)
	}

	// Phase 1: settle the fate of previously submitted entries.
	if o.reconciler != nil {
		positions, r.Promoted, r.Dropped = o.reconciler.Reconcile(ctx, positions)
		if r.Promoted > 0 || r.Dropped > 0 {
			o.logger.Printf("tick %d: reconciled entries, %d confirmed, %d failed on-chain", seq, r.Promoted, r.Dropped)
		}
	}

	// Phase 2: exit evaluation. The ledger write lands before the position
	// write so a mid-tick crash re-closes rather than losing the record.
	open, closed := o.exitEvaluator.Evaluate(positions, started)
	if len(closed) > 0 {
		if err := o.ledger.Append(ctx, closed...); err != nil {
			return report(domain.TickFailed, "ledger append failed: "+err.Error(), seq, started)
		}
	}
	if err := o.positions.Replace(ctx, open); err != nil {
		return report(domain.TickFailed, "position write failed: "+err.Error(), seq, started)
	}
	r.Closed = len(closed)
	for _, t := range closed {
		o.notify(settings.NotifyTarget, "Closed %s after time-stop, PnL %.2f USD", t.Symbol, t.PnLUSD)
	}

	// Phase 3: entry pipeline. A missing reference price or pair feed skips
	// entries for this tick; exits above have already run.
	priceStart := time.Now()
	solUSD, err := o.price.SOLUSD(ctx)
	o.observe("price", priceStart, err)
	if err != nil {
		o.logger.Printf("tick %d: SOL price unavailable, entries skipped: %v", seq, err)
		r.Message = "entries skipped: price unavailable"
		r.Elapsed = time.Since(started)
		return r
	}

	balanceStart := time.Now()
	lamports, err := o.balance.GetBalance(ctx, o.wallet)
	o.observe("balance", balanceStart, err)
	if err != nil {
		o.logger.Printf("tick %d: wallet balance unavailable, entries skipped: %v", seq, err)
		r.Message = "entries skipped: wallet balance unavailable"
		r.Elapsed = time.Since(started)
		return r
	}
	walletUSD := float64(lamports) / solana.LamportsPerSOL * solUSD

	pairsStart := time.Now()
	pairs, err := o.pairs.NewPairs(ctx)
	o.observe("pairs", pairsStart, err)
	if err != nil {
		o.logger.Printf("tick %d: pair feed unavailable, entries skipped: %v", seq, err)
		r.Message = "entries skipped: pair feed unavailable"
		r.Elapsed = time.Since(started)
		return r
	}

	candidates := selector.Select(pairs, o.candidateLimit)
	r.Considered = len(candidates)

	held := make(map[string]bool, len(open))
	for _, p := range open {
		held[p.Mint] = true
	}

	// Phase 4: per-candidate loop. Each iteration is fault-isolated; a
	// failure in any stage skips only that candidate.
	for _, c := range candidates {
		if held[c.Mint] {
			o.logger.Printf("tick %d: already holding %s, skipped", seq, c.Mint)
			r.Skipped++
			continue
		}

		safetyStart := time.Now()
		assessment, err := o.safety.Assess(ctx, c.Mint)
		o.observe("safety", safetyStart, err)
		if err != nil {
			o.logger.Printf("tick %d: safety lookup failed for %s, screened out: %v", seq, c.Mint, err)
			assessment = nil // fail closed
		}
		if !safety.Passes(assessment) {
			r.ScreenedOut++
			continue
		}

		size := sizing.Size(settings.RiskMode, settings.CustomUSD, walletUSD)
		if size < sizing.MinTradeUSD {
			o.logger.Printf("tick %d: size %.4f below minimum for %s, skipped", seq, size, c.Mint)
			r.Skipped++
			continue
		}

		swapStart := time.Now()
		pos, err := o.executor.Execute(ctx, c, size, solUSD)
		o.observe("swap", swapStart, err)
		if err != nil {
			o.logger.Printf("tick %d: entry failed for %s: %v", seq, c.Mint, err)
			r.Skipped++
			continue
		}

		open = append(open, *pos)
		if err := o.positions.Replace(ctx, open); err != nil {
			o.logger.Printf("tick %d: position write failed after entry %s: %v", seq, pos.EntryTxSig, err)
			r.Message = "position write failed mid-loop"
			break
		}
		held[pos.Mint] = true
		r.Opened++
		o.notify(settings.NotifyTarget, "Opened %s for %.2f USD (%s)", pos.Symbol, pos.SizeUSD, pos.EntryTxSig)
	}

	if r.Message == "" {
		r.Message = "tick completed"
	}
	r.Elapsed = time.Since(started)
	return r
}

// observe records one outbound collaborator call when an observer is set.
func (o *Orchestrator) observe(name string, started time.Time, err error) {
	if o.observer == nil {
		return
	}
	o.observer.ObserveCollaborator(name, time.Since(started), err)
}

// notify delivers a best-effort message; failures never affect the tick.
func (o *Orchestrator) notify(target, format string, args ...any) {
	if o.notifier == nil || target == "" {
		return
	}
	o.notifier.Sendf(target, format, args...)
}

func report(status domain.TickStatus, message string, seq int64, started time.Time) domain.TickReport {
	return domain.TickReport{
		Status:  status,
		Message: message,
		Seq:     seq,
		Elapsed: time.Since(started),
	}
}
