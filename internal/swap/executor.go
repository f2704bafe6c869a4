package swap

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"solana-trade-agent/internal/domain"
	"solana-trade-agent/internal/idhash"
	"solana-trade-agent/internal/solana"
)

// Default execution parameters.
const (
	DefaultSlippageBps      = 10
	DefaultSubmitRetries    = 3
	DefaultSubmitRetryDelay = 200 * time.Millisecond
)

// Executor turns an accepted candidate into an open position.
type Executor struct {
	venue           Venue
	rpc             solana.RPCClient
	keypair         *solana.Keypair
	slippageBps     int
	submitRetries   int
	retryDelay      time.Duration
	timeStopMinutes int
	logger          *log.Logger
}

// ExecutorOption configures Executor.
type ExecutorOption func(*Executor)

// WithSlippageBps sets the quote slippage tolerance in basis points.
func WithSlippageBps(bps int) ExecutorOption {
	return func(e *Executor) {
		e.slippageBps = bps
	}
}

// WithSubmitRetries sets the bounded number of submission retries.
func WithSubmitRetries(n int) ExecutorOption {
	return func(e *Executor) {
		e.submitRetries = n
	}
}

// WithRetryDelay sets the initial submission retry delay.
func WithRetryDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.retryDelay = d
	}
}

// WithTimeStop sets the time-stop assigned to opened positions.
func WithTimeStop(minutes int) ExecutorOption {
	return func(e *Executor) {
		e.timeStopMinutes = minutes
	}
}

// WithLogger sets the executor diagnostics logger.
func WithLogger(logger *log.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor.
func NewExecutor(venue Venue, rpc solana.RPCClient, keypair *solana.Keypair, opts ...ExecutorOption) *Executor {
	e := &Executor{
		venue:           venue,
		rpc:             rpc,
		keypair:         keypair,
		slippageBps:     DefaultSlippageBps,
		submitRetries:   DefaultSubmitRetries,
		retryDelay:      DefaultSubmitRetryDelay,
		timeStopMinutes: domain.DefaultTimeStopMinutes,
		logger:          log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the full entry pipeline for one candidate: convert sizeUSD to
// lamports at solUSD, quote SOL→token, build the swap transaction, sign with
// the custody key, and submit skipPreflight with bounded retries.
//
// Submission is optimistic: a returned signature is success and the position
// is recorded phase=SUBMITTED without awaiting finality. Settlement is
// observed later by the Reconciler. Any step failure returns an error and
// affects only this candidate.
func (e *Executor) Execute(ctx context.Context, c domain.Candidate, sizeUSD, solUSD float64) (*domain.Position, error) {
	if solUSD <= 0 {
		return nil, fmt.Errorf("no reference SOL price")
	}
	if sizeUSD <= 0 {
		return nil, fmt.Errorf("non-positive trade size")
	}

	lamports := uint64(sizeUSD / solUSD * solana.LamportsPerSOL)
	if lamports == 0 {
		return nil, fmt.Errorf("trade size %.4f USD rounds to zero lamports", sizeUSD)
	}

	quote, err := e.venue.Quote(ctx, solana.WSOLMint, c.Mint, lamports, e.slippageBps)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", c.Mint, err)
	}

	txBase64, err := e.venue.SwapTransaction(ctx, quote, e.keypair.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("build swap transaction: %w", err)
	}

	signed, err := solana.SignTransaction(e.keypair, txBase64)
	if err != nil {
		return nil, fmt.Errorf("sign swap transaction: %w", err)
	}

	signature, err := e.submit(ctx, signed)
	if err != nil {
		return nil, err
	}

	openedAt := time.Now().UnixMilli()
	return &domain.Position{
		PositionID:      idhash.ComputePositionID(c.Mint, openedAt),
		Mint:            c.Mint,
		Symbol:          c.Symbol,
		OpenedAt:        openedAt,
		SizeUSD:         sizeUSD,
		EntryTxSig:      signature,
		TimeStopMinutes: e.timeStopMinutes,
		Phase:           domain.PhaseSubmitted,
	}, nil
}

// submit sends the signed transaction with bounded retries and exponential
// backoff. Preflight simulation is skipped.
func (e *Executor) submit(ctx context.Context, signedTx string) (string, error) {
	delay := e.retryDelay
	var lastErr error

	for attempt := 0; attempt <= e.submitRetries; attempt++ {
		if attempt > 0 {
			e.logger.Printf("submit attempt %d after %v: %v", attempt+1, delay, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		signature, err := e.rpc.SendTransaction(ctx, signedTx, true)
		if err == nil {
			return signature, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("submit exhausted %d retries: %w", e.submitRetries, lastErr)
}
