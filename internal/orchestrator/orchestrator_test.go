package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/market"
	"solana-trade-agent/internal/safety"
	"solana-trade-agent/internal/storage/memory"
)

// Fakes counting collaborator calls.

type fakePrice struct {
	calls int
	usd   float64
	err   error
}

func (f *fakePrice) SOLUSD(context.Context) (float64, error) {
	f.calls++
	return f.usd, f.err
}

type fakePairs struct {
	calls int
	pairs []market.Pair
	err   error
}

func (f *fakePairs) NewPairs(context.Context) ([]market.Pair, error) {
	f.calls++
	return f.pairs, f.err
}

type fakeSafety struct {
	calls       int
	assessments map[string]*safety.Assessment
	err         error
}

func (f *fakeSafety) Assess(_ context.Context, mint string) (*safety.Assessment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.assessments[mint], nil
}

type fakeExecutor struct {
	calls   int
	failFor map[string]error
}

func (f *fakeExecutor) Execute(_ context.Context, c domain.Candidate, sizeUSD, _ float64) (*domain.Position, error) {
	f.calls++
	if err, ok := f.failFor[c.Mint]; ok {
		return nil, err
	}
	return &domain.Position{
		PositionID: "pos-" + c.Mint,
		Mint:       c.Mint,
		Symbol:     c.Symbol,
		OpenedAt:   time.Now().UnixMilli(),
		SizeUSD:    sizeUSD,
		EntryTxSig: "sig-" + c.Mint,
		Phase:      domain.PhaseSubmitted,
	}, nil
}

type fakeBalance struct {
	calls    int
	lamports uint64
	err      error
}

func (f *fakeBalance) GetBalance(context.Context, string) (uint64, error) {
	f.calls++
	return f.lamports, f.err
}

type fakeReconciler struct {
	promoted int
	dropped  int
}

func (f *fakeReconciler) Reconcile(_ context.Context, positions []domain.Position) ([]domain.Position, int, int) {
	return positions, f.promoted, f.dropped
}

type observedCall struct {
	name   string
	failed bool
}

type fakeObserver struct {
	calls []observedCall
}

func (f *fakeObserver) ObserveCollaborator(name string, _ time.Duration, err error) {
	f.calls = append(f.calls, observedCall{name: name, failed: err != nil})
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(_, msg string) bool { f.sent = append(f.sent, msg); return true }
func (f *fakeNotifier) Sendf(target, format string, args ...any) bool {
	return f.Send(target, fmt.Sprintf(format, args...))
}

type harness struct {
	orch     *Orchestrator
	settings *memory.SettingsStore
	position *memory.PositionStore
	ledger   *memory.TradeLedger
	price    *fakePrice
	pairs    *fakePairs
	safety   *fakeSafety
	executor *fakeExecutor
	balance  *fakeBalance
	notifier *fakeNotifier
}

func goodPair(mint, symbol string, m5, h1 float64) market.Pair {
	return market.Pair{
		ChainID:     "solana",
		BaseToken:   market.Token{Address: mint, Symbol: symbol},
		PriceChange: &market.PriceChange{M5: m5, H1: h1},
	}
}

func safeAssessment() *safety.Assessment {
	return &safety.Assessment{Score: 90}
}

func newHarness(t *testing.T, enabled bool) *harness {
	t.Helper()

	h := &harness{
		settings: memory.NewSettingsStore(),
		position: memory.NewPositionStore(),
		ledger:   memory.NewTradeLedger(),
		price:    &fakePrice{usd: 125},
		pairs:    &fakePairs{},
		safety:   &fakeSafety{assessments: map[string]*safety.Assessment{}},
		executor: &fakeExecutor{failFor: map[string]error{}},
		balance:  &fakeBalance{lamports: 10_000_000_000}, // 10 SOL
		notifier: &fakeNotifier{},
	}

	s := domain.DefaultSettings()
	s.Run = enabled
	s.RiskMode = domain.RiskModeMedium
	s.NotifyTarget = "42"
	if err := h.settings.Put(context.Background(), s); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	h.orch = New(Options{
		SettingsStore: h.settings,
		PositionStore: h.position,
		TradeLedger:   h.ledger,
		TickGuard:     memory.NewTickGuard(),
		PriceSource:   h.price,
		PairSource:    h.pairs,
		SafetySource:  h.safety,
		SwapExecutor:  h.executor,
		Balance:       h.balance,
		Notifier:      h.notifier,
		WalletAddress: "wallet",
	})
	return h
}

func TestTick_DisabledShortCircuit(t *testing.T) {
	h := newHarness(t, false)

	r := h.orch.Tick(context.Background())

	if r.Status != domain.TickDisabled {
		t.Fatalf("status = %s, want DISABLED", r.Status)
	}
	if h.price.calls+h.pairs.calls+h.safety.calls+h.executor.calls+h.balance.calls != 0 {
		t.Error("disabled tick must perform zero collaborator calls")
	}
}

func TestTick_PerCandidateIsolation(t *testing.T) {
	h := newHarness(t, true)
	h.pairs.pairs = []market.Pair{
		goodPair("mintA", "AAA", 5, 5),
		goodPair("mintB", "BBB", 4, 4),
		goodPair("mintC", "CCC", 3, 3),
	}
	h.safety.assessments["mintA"] = safeAssessment()
	h.safety.assessments["mintB"] = safeAssessment()
	h.safety.assessments["mintC"] = safeAssessment()
	h.executor.failFor["mintB"] = errors.New("venue rejected quote")

	r := h.orch.Tick(context.Background())

	if r.Status != domain.TickCompleted {
		t.Fatalf("status = %s, want COMPLETED", r.Status)
	}
	if r.Considered != 3 || r.Opened != 2 || r.Skipped != 1 {
		t.Errorf("considered/opened/skipped = %d/%d/%d, want 3/2/1", r.Considered, r.Opened, r.Skipped)
	}

	open, err := h.position.List(context.Background())
	if err != nil {
		t.Fatalf("list positions: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open positions, got %d", len(open))
	}
	for _, p := range open {
		if p.Mint == "mintB" {
			t.Error("failed candidate must not produce a position")
		}
	}
}

func TestTick_FailClosedScreening(t *testing.T) {
	h := newHarness(t, true)
	h.pairs.pairs = []market.Pair{
		goodPair("mintA", "AAA", 5, 5), // lookup failure
		goodPair("mintB", "BBB", 4, 4), // honeypot
		goodPair("mintC", "CCC", 3, 3), // low score
	}
	h.safety.assessments["mintB"] = &safety.Assessment{Score: 95, IsHoneypot: true}
	h.safety.assessments["mintC"] = &safety.Assessment{Score: 40}

	r := h.orch.Tick(context.Background())

	if r.ScreenedOut != 3 || r.Opened != 0 {
		t.Errorf("screenedOut/opened = %d/%d, want 3/0", r.ScreenedOut, r.Opened)
	}
	if h.executor.calls != 0 {
		t.Error("screened-out candidates must never reach the executor")
	}
}

func TestTick_PriceUnavailableStillRunsExits(t *testing.T) {
	h := newHarness(t, true)
	h.price.err = market.ErrUnavailable

	expired := domain.Position{
		PositionID:      "p1",
		Mint:            "mintOld",
		Symbol:          "OLD",
		OpenedAt:        time.Now().Add(-2 * time.Hour).UnixMilli(),
		SizeUSD:         50,
		TimeStopMinutes: 60,
		Phase:           domain.PhaseConfirmed,
	}
	if err := h.position.Replace(context.Background(), []domain.Position{expired}); err != nil {
		t.Fatalf("seed position: %v", err)
	}

	r := h.orch.Tick(context.Background())

	if r.Status != domain.TickCompleted {
		t.Fatalf("status = %s, want COMPLETED", r.Status)
	}
	if r.Closed != 1 {
		t.Errorf("closed = %d, want 1", r.Closed)
	}
	if h.pairs.calls != 0 {
		t.Error("pair feed must not be consulted when the price is unavailable")
	}

	records, err := h.ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(records))
	}
	if records[0].PnLUSD >= 0 {
		t.Errorf("time-stop close must realize a loss, got %f", records[0].PnLUSD)
	}
	open, _ := h.position.List(context.Background())
	if len(open) != 0 {
		t.Errorf("expired position should be removed, %d remain", len(open))
	}
}

func TestTick_HeldMintNotReentered(t *testing.T) {
	h := newHarness(t, true)
	h.pairs.pairs = []market.Pair{goodPair("mintA", "AAA", 5, 5)}
	h.safety.assessments["mintA"] = safeAssessment()

	held := domain.Position{
		PositionID:      "p1",
		Mint:            "mintA",
		OpenedAt:        time.Now().UnixMilli(),
		SizeUSD:         10,
		TimeStopMinutes: 60,
		Phase:           domain.PhaseConfirmed,
	}
	if err := h.position.Replace(context.Background(), []domain.Position{held}); err != nil {
		t.Fatalf("seed position: %v", err)
	}

	r := h.orch.Tick(context.Background())

	if r.Opened != 0 || r.Skipped != 1 {
		t.Errorf("opened/skipped = %d/%d, want 0/1", r.Opened, r.Skipped)
	}
	if h.executor.calls != 0 {
		t.Error("held mint must not reach the executor")
	}
}

func TestTick_OverlappingInvocationSkipped(t *testing.T) {
	h := newHarness(t, true)
	guard := memory.NewTickGuard()
	h.orch.guard = guard

	now := time.Now()
	if _, ok, err := guard.Acquire(context.Background(), now, time.Minute); err != nil || !ok {
		t.Fatalf("seed lease: ok=%v err=%v", ok, err)
	}

	r := h.orch.Tick(context.Background())

	if r.Status != domain.TickSkipped {
		t.Fatalf("status = %s, want SKIPPED", r.Status)
	}
	if h.price.calls != 0 {
		t.Error("skipped tick must perform no collaborator calls")
	}
}

func TestTick_RecloseAfterCrashAppendsSingleRecord(t *testing.T) {
	h := newHarness(t, true)

	expired := domain.Position{
		PositionID:      "p1",
		Mint:            "mintOld",
		Symbol:          "OLD",
		OpenedAt:        time.Now().Add(-2 * time.Hour).UnixMilli(),
		SizeUSD:         50,
		TimeStopMinutes: 60,
		Phase:           domain.PhaseConfirmed,
	}
	if err := h.position.Replace(context.Background(), []domain.Position{expired}); err != nil {
		t.Fatalf("seed position: %v", err)
	}

	r := h.orch.Tick(context.Background())
	if r.Closed != 1 {
		t.Fatalf("closed = %d, want 1", r.Closed)
	}

	// A crash between the ledger append and the position write leaves the
	// closed position behind; re-seed it and run the tick again.
	if err := h.position.Replace(context.Background(), []domain.Position{expired}); err != nil {
		t.Fatalf("re-seed position: %v", err)
	}

	r = h.orch.Tick(context.Background())
	if r.Status != domain.TickCompleted {
		t.Fatalf("status = %s, want COMPLETED", r.Status)
	}

	records, err := h.ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("one closed position produced %d ledger records, want 1", len(records))
	}
	open, _ := h.position.List(context.Background())
	if len(open) != 0 {
		t.Errorf("re-closed position should be removed, %d remain", len(open))
	}
}

func TestTick_ReportsReconcilerCounts(t *testing.T) {
	h := newHarness(t, true)
	h.orch.reconciler = &fakeReconciler{promoted: 2, dropped: 1}

	r := h.orch.Tick(context.Background())

	if r.Status != domain.TickCompleted {
		t.Fatalf("status = %s, want COMPLETED", r.Status)
	}
	if r.Promoted != 2 || r.Dropped != 1 {
		t.Errorf("promoted/dropped = %d/%d, want 2/1", r.Promoted, r.Dropped)
	}
}

func TestTick_ObserverRecordsCollaboratorCalls(t *testing.T) {
	h := newHarness(t, true)
	obs := &fakeObserver{}
	h.orch.observer = obs
	h.pairs.pairs = []market.Pair{goodPair("mintA", "AAA", 5, 5)}
	h.safety.assessments["mintA"] = safeAssessment()

	h.orch.Tick(context.Background())

	counts := map[string]int{}
	for _, c := range obs.calls {
		counts[c.name]++
		if c.failed {
			t.Errorf("collaborator %s recorded as failed on a healthy tick", c.name)
		}
	}
	for _, name := range []string{"price", "balance", "pairs", "safety", "swap"} {
		if counts[name] != 1 {
			t.Errorf("collaborator %s observed %d times, want 1", name, counts[name])
		}
	}
}

func TestTick_ObserverRecordsFailures(t *testing.T) {
	h := newHarness(t, true)
	obs := &fakeObserver{}
	h.orch.observer = obs
	h.price.err = market.ErrUnavailable

	h.orch.Tick(context.Background())

	if len(obs.calls) != 1 || obs.calls[0].name != "price" || !obs.calls[0].failed {
		t.Fatalf("expected one failed price observation, got %+v", obs.calls)
	}
}

func TestTick_NotifiesOnOpenAndClose(t *testing.T) {
	h := newHarness(t, true)
	h.pairs.pairs = []market.Pair{goodPair("mintA", "AAA", 5, 5)}
	h.safety.assessments["mintA"] = safeAssessment()

	expired := domain.Position{
		PositionID:      "p0",
		Mint:            "mintOld",
		Symbol:          "OLD",
		OpenedAt:        time.Now().Add(-2 * time.Hour).UnixMilli(),
		SizeUSD:         50,
		TimeStopMinutes: 60,
		Phase:           domain.PhaseConfirmed,
	}
	if err := h.position.Replace(context.Background(), []domain.Position{expired}); err != nil {
		t.Fatalf("seed position: %v", err)
	}

	r := h.orch.Tick(context.Background())

	if r.Closed != 1 || r.Opened != 1 {
		t.Fatalf("closed/opened = %d/%d, want 1/1", r.Closed, r.Opened)
	}
	if len(h.notifier.sent) != 2 {
		t.Errorf("expected 2 notifications, got %d: %v", len(h.notifier.sent), h.notifier.sent)
	}
}
