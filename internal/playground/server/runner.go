package server

import (
	"context"
	"time"

	"github.com/google/uuid"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/internal/history/store"
	"github.com/msto63/frege/pkg/core/cache"
)

// runner executes one program per request and records it in the history
type runner struct {
	engine  *script.Engine
	history store.RunStore
	timeout time.Duration
	logger  *flog.Logger

	// results holds finished runs by source; nil disables caching
	results *cache.Cache[cachedRun]
}

// cachedRun is a run whose outcome depends on the source alone
type cachedRun struct {
	result *script.Result
	err    error
}

// cacheable reports whether a run would end the same way every time.
// Runtime failures are excluded since they include cancellation and timeouts.
func cacheable(err error) bool {
	switch script.KindOf(err) {
	case script.KindNone, script.KindSyntax, script.KindSemantic:
		return true
	default:
		return false
	}
}

// execute runs source or serves it from the result cache
func (r *runner) execute(ctx context.Context, runID, source string) (*script.Result, bool, error) {
	if r.results == nil {
		result, err := r.engine.RunWithID(ctx, runID, source)
		return result, false, err
	}

	key := cache.HashKey(source)
	if hit, ok := r.results.Get(key); ok {
		r.logger.WithRunID(runID).Debug("served from result cache")
		return hit.result, true, hit.err
	}

	result, err := r.engine.RunWithID(ctx, runID, source)
	if cacheable(err) {
		r.results.Set(key, cachedRun{result: result, err: err})
	}
	return result, false, err
}

// run executes source under its own run ID and timeout. It returns the
// response payload, either a ResultPayload or an ErrorPayload.
func (r *runner) run(ctx context.Context, source string) (string, interface{}) {
	runID := uuid.New().String()
	startedAt := time.Now()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result, cached, err := r.execute(ctx, runID, source)
	r.record(runID, startedAt, source, result, err)

	if err != nil {
		output := []string{}
		if result != nil && result.Output != nil {
			output = result.Output
		}
		return TypeError, ErrorPayload{
			ID:      runID,
			Kind:    script.KindOf(err),
			Code:    string(script.Code(err)),
			Message: script.Describe(err),
			Output:  output,
			Cached:  cached,
		}
	}

	return TypeResult, ResultPayload{
		ID:         runID,
		Output:     result.Output,
		Statements: len(result.Statements),
		DurationMs: float64(result.Duration.Nanoseconds()) / 1e6,
		Cached:     cached,
	}
}

func (r *runner) record(runID string, startedAt time.Time, source string, result *script.Result, runErr error) {
	if r.history == nil {
		return
	}

	rec := store.NewRunRecord(store.OriginPlayground, source, result, runErr)
	rec.ID = runID
	rec.StartedAt = startedAt

	// The request context may already be cancelled; recording must not depend on it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.history.Record(ctx, rec); err != nil {
		r.logger.WithRunID(runID).LogError("failed to record run", err)
	}
}
