package ths

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Login retry parameters.
const (
	// MaxLoginAttempts is the total number of logon attempts.
	MaxLoginAttempts = 5

	// LoginRetryDelay is the wait between consecutive attempts.
	LoginRetryDelay = 5 * time.Second

	// VerifyDelay is the pause before each verification query.
	VerifyDelay = 2 * time.Second
)

// verifyQueries are issued after a successful logon. Logon alone does not
// prove the trading gateway answers, so both must succeed.
var verifyQueries = []QueryCategory{QueryHoldings, QueryPendingOrders}

// Session is the part of Client the login protocol drives.
type Session interface {
	Logon(server *Server, account *Account, addr Address) error
	QueryData(category QueryCategory) ([]byte, error)
}

// LoginState is a state of the login state machine.
type LoginState int

// Login states.
const (
	StateAttempting LoginState = iota
	StateRetryWait
	StateLoggedIn
	StateFailed
)

func (s LoginState) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateRetryWait:
		return "retry_wait"
	case StateLoggedIn:
		return "logged_in"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type loginOptions struct {
	sleep    SleepFunc
	logger   Logger
	observer func(state LoginState, attempt int)
}

// LoginOption configures LoginWithRetry.
type LoginOption func(*loginOptions)

// WithSleep replaces the wait used for all pauses.
func WithSleep(fn SleepFunc) LoginOption {
	return func(o *loginOptions) { o.sleep = fn }
}

// WithLogger sets the logger for attempt progress.
func WithLogger(l Logger) LoginOption {
	return func(o *loginOptions) { o.logger = l }
}

// WithStateObserver registers a callback for every state transition.
func WithStateObserver(fn func(state LoginState, attempt int)) LoginOption {
	return func(o *loginOptions) { o.observer = fn }
}

// LoginWithRetry drives s through logon and health verification.
//
// Each attempt logs on to the server's first address, then after VerifyDelay
// queries holdings, then after another VerifyDelay queries today's orders.
// A failure at any step fails the attempt. backoff.Retry drives up to
// MaxLoginAttempts attempts with LoginRetryDelay between them.
//
// Returns:
//   - nil once an attempt passes verification
//   - ErrLoginExhausted (wrapping the last failure) after the final attempt
//   - the context error if ctx is cancelled
func LoginWithRetry(ctx context.Context, s Session, server *Server, account *Account, opts ...LoginOption) error {
	o := loginOptions{
		sleep:    sleepContext,
		logger:   noopLogger{},
		observer: func(LoginState, int) {},
	}
	for _, opt := range opts {
		opt(&o)
	}

	addr, err := server.PrimaryAddress()
	if err != nil {
		o.observer(StateFailed, 0)
		return err
	}

	// The retry wait runs through o.sleep at the start of the next attempt,
	// so Retry itself never waits and nothing waits after the final attempt.
	var (
		attempt int
		stopErr error
	)
	operation := func() (struct{}, error) {
		attempt++
		if attempt > 1 {
			if err := o.sleep(ctx, LoginRetryDelay); err != nil {
				stopErr = err
				return struct{}{}, backoff.Permanent(err)
			}
		}

		o.observer(StateAttempting, attempt)
		o.logger.Info("logon attempt", "attempt", attempt, "account", account.Name, "host", addr.Host, "port", addr.Port)

		err := attemptLogin(ctx, s, server, account, addr, o)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				stopErr = ctxErr
				return struct{}{}, backoff.Permanent(ctxErr)
			}
		}
		return struct{}{}, err
	}
	notify := func(err error, _ time.Duration) {
		o.logger.Warn("logon attempt failed", "attempt", attempt, "error", err)
		o.observer(StateRetryWait, attempt)
		o.logger.Info("waiting before next logon attempt", "delay", LoginRetryDelay, "next_attempt", attempt+1)
	}

	_, lastErr := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(MaxLoginAttempts),
		backoff.WithNotify(notify),
	)
	switch {
	case lastErr == nil:
		o.logger.Info("logon verified", "attempt", attempt)
		o.observer(StateLoggedIn, attempt)
		return nil
	case stopErr != nil:
		o.observer(StateFailed, attempt)
		return stopErr
	case ctx.Err() != nil:
		o.observer(StateFailed, attempt)
		return ctx.Err()
	}

	o.logger.Warn("logon attempt failed", "attempt", attempt, "error", lastErr)
	o.observer(StateFailed, attempt)
	return fmt.Errorf("%w after %d attempts: %w", ErrLoginExhausted, attempt, lastErr)
}

func attemptLogin(ctx context.Context, s Session, server *Server, account *Account, addr Address, o loginOptions) error {
	if err := s.Logon(server, account, addr); err != nil {
		return fmt.Errorf("logon: %w", err)
	}

	for _, category := range verifyQueries {
		if err := o.sleep(ctx, VerifyDelay); err != nil {
			return err
		}
		if _, err := s.QueryData(category); err != nil {
			return fmt.Errorf("verify %s: %w", category, err)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsLoginExhausted reports whether err ended the retry protocol.
func IsLoginExhausted(err error) bool {
	return errors.Is(err, ErrLoginExhausted)
}
