package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Guard holds what every instrumented call goes through. Nil members are skipped.
type Guard struct {
	Provider string
	Model    string
	Budget   BudgetChecker
	Limiter  *rate.Limiter
	Breaker  *Breaker
	Logger   *zap.Logger
}

// run checks the budget, waits for the limiter, executes fn through the breaker and
// records the tokens fn reports. An open breaker yields domain.ErrLLMUnavailable.
func run[T any](
	ctx context.Context, g *Guard, op string,
	fn func(context.Context) (T, error), tokens func(T) int,
) (T, error) {
	var zero T

	if g.Budget != nil {
		if err := g.Budget.Check(ctx); err != nil {
			g.Logger.Error("Budget exceeded",
				zap.String("provider", g.Provider),
				zap.String("model", g.Model),
				zap.String("op", op),
				zap.Error(err),
			)
			return zero, fmt.Errorf("budget check: %w", err)
		}
	}

	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()

	var (
		result T
		err    error
	)
	if g.Breaker != nil {
		var out any
		out, err = g.Breaker.Execute(func() (any, error) {
			return fn(ctx)
		})
		if isBreakerRejection(err) {
			metrics.LLMErrorsTotal.WithLabelValues(g.Provider, g.Model, "breaker_open").Inc()
			return zero, fmt.Errorf("%s: %v: %w", op, err, domain.ErrLLMUnavailable)
		}
		if out != nil {
			result, _ = out.(T)
		}
	} else {
		result, err = fn(ctx)
	}

	duration := time.Since(start)

	if err != nil {
		g.Logger.Error("LLM request failed",
			zap.String("provider", g.Provider),
			zap.String("model", g.Model),
			zap.String("op", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	used := tokens(result)
	domain.UsageFromContext(ctx).AddTokens(used)

	if g.Budget != nil && used > 0 {
		g.Budget.Record(int64(used))
		remaining := metrics.LLMBudgetTokensRemaining
		remaining.WithLabelValues(g.Provider, "daily").Set(float64(g.Budget.RemainingDaily()))
		remaining.WithLabelValues(g.Provider, "monthly").Set(float64(g.Budget.RemainingMonthly()))
	}

	g.Logger.Debug("LLM request completed",
		zap.String("provider", g.Provider),
		zap.String("model", g.Model),
		zap.String("op", op),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", used),
	)

	return result, nil
}

// InstrumentedExtractor wraps a MenuExtractor with budget, throttling and breaker.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedExtractor struct {
	inner domain.MenuExtractor
	guard *Guard
}

// NewInstrumentedExtractor wraps an extractor.
func NewInstrumentedExtractor(inner domain.MenuExtractor, guard *Guard) *InstrumentedExtractor {
	return &InstrumentedExtractor{inner: inner, guard: withLogger(guard)}
}

// ExtractMenu implements domain.MenuExtractor.
func (e *InstrumentedExtractor) ExtractMenu(
	ctx context.Context, img domain.MenuImage,
) (domain.MenuExtraction, error) {
	return run(ctx, e.guard, "extract",
		func(ctx context.Context) (domain.MenuExtraction, error) {
			return e.inner.ExtractMenu(ctx, img)
		},
		func(r domain.MenuExtraction) int { return r.TotalTokens },
	)
}

// InstrumentedRater wraps a WineRater with budget, throttling and breaker.
type InstrumentedRater struct {
	inner domain.WineRater
	guard *Guard
}

// NewInstrumentedRater wraps a rater.
func NewInstrumentedRater(inner domain.WineRater, guard *Guard) *InstrumentedRater {
	return &InstrumentedRater{inner: inner, guard: withLogger(guard)}
}

// RateWines implements domain.WineRater.
func (r *InstrumentedRater) RateWines(
	ctx context.Context, req domain.RatingRequest,
) (domain.RatingResult, error) {
	return run(ctx, r.guard, "rate",
		func(ctx context.Context) (domain.RatingResult, error) {
			return r.inner.RateWines(ctx, req)
		},
		func(res domain.RatingResult) int { return res.TotalTokens },
	)
}

func withLogger(g *Guard) *Guard {
	if g == nil {
		g = &Guard{}
	}
	if g.Logger == nil {
		cp := *g
		cp.Logger = zap.NewNop()
		return &cp
	}
	return g
}
