package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lepinkainen/partly/internal/datasheet"
	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newOrchestrator(lookup datasheet.Lookup, opts Options) *Orchestrator {
	resolver := manufacturer.NewDefaultResolver()
	return New(resolver, lookup, part.NewRanker(resolver, part.DefaultOptions()), opts)
}

// echoLookup returns one candidate per key, reported by "Texas Instruments".
func echoLookup(calls *atomic.Int32) datasheet.LookupFunc {
	return func(_ context.Context, key mpn.Key, _ manufacturer.Resolved) ([]part.Candidate, error) {
		if calls != nil {
			calls.Add(1)
		}
		return []part.Candidate{{Manufacturer: "Texas Instruments", MPN: key.String(), Key: key, Confidence: 0.9, Source: "test"}}, nil
	}
}

func TestRun_PreservesOrderAndCount(t *testing.T) {
	mpns := make([]string, 50)
	for i := range mpns {
		mpns[i] = fmt.Sprintf("part-%02d", i)
	}

	lookup := datasheet.LookupFunc(func(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
		// Items ending in a low digit finish last
		last := key[len(key)-1] - '0'
		time.Sleep(time.Duration(9-last) * 100 * time.Microsecond)
		return echoLookup(nil)(ctx, key, m)
	})

	result, err := newOrchestrator(lookup, Options{Workers: 4}).Run(context.Background(), Request{MPNs: mpns})
	require.NoError(t, err)
	require.Equal(t, len(mpns), result.Count())

	for i, item := range result.Items {
		assert.Equal(t, mpns[i], item.MPN)
		assert.Equal(t, mpn.Normalize(mpns[i]), item.Key)
		assert.Equal(t, part.OutcomeMatched, item.Result.Outcome())
	}
}

func TestRun_EmptyRequest(t *testing.T) {
	var calls atomic.Int32
	result, err := newOrchestrator(echoLookup(&calls), Options{}).Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count())
	assert.Empty(t, result.Items)
	assert.Zero(t, calls.Load())
}

func TestRun_FailureIsolatedToItem(t *testing.T) {
	lookup := datasheet.LookupFunc(func(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
		if key == "BAD1" {
			return nil, errors.New("upstream returned garbage")
		}
		return echoLookup(nil)(ctx, key, m)
	})

	result, err := newOrchestrator(lookup, Options{Workers: 2}).Run(context.Background(), Request{MPNs: []string{"GOOD1", "bad-1", "GOOD2"}})
	require.NoError(t, err)
	require.Equal(t, 3, result.Count())

	assert.True(t, result.Items[0].Result.OK())
	assert.Equal(t, part.OutcomeError, result.Items[1].Result.Outcome())
	assert.Equal(t, "upstream returned garbage", result.Items[1].Result.Error())
	assert.True(t, result.Items[2].Result.OK())
}

func TestRun_BlankMPNSkipsLookup(t *testing.T) {
	var calls atomic.Int32
	result, err := newOrchestrator(echoLookup(&calls), Options{}).Run(context.Background(), Request{MPNs: []string{"", "  -- ", "LM358N"}})
	require.NoError(t, err)
	require.Equal(t, 3, result.Count())

	for _, item := range result.Items[:2] {
		assert.Equal(t, part.OutcomeError, item.Result.Outcome())
		assert.Equal(t, part.ErrBlankMPN.Error(), item.Result.Error())
		assert.True(t, item.Key.IsEmpty())
	}
	assert.True(t, result.Items[2].Result.OK())
	assert.Equal(t, int32(1), calls.Load())
}

func TestRun_DuplicatesReportedIndependently(t *testing.T) {
	result, err := newOrchestrator(echoLookup(nil), Options{}).Run(context.Background(), Request{
		MPNs:         []string{"abc-123", "ABC123"},
		Manufacturer: "TI",
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Count())

	assert.Equal(t, "abc-123", result.Items[0].MPN)
	assert.Equal(t, "ABC123", result.Items[1].MPN)
	for _, item := range result.Items {
		assert.Equal(t, mpn.Key("ABC123"), item.Key)
		assert.Equal(t, manufacturer.Known("Texas Instruments"), item.Manufacturer)
		assert.Equal(t, part.OutcomeMatched, item.Result.Outcome())
	}
}

func TestRun_SharesInFlightLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 10)

	lookup := datasheet.LookupFunc(func(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return echoLookup(nil)(ctx, key, m)
	})

	done := make(chan *Result)
	go func() {
		result, _ := newOrchestrator(lookup, Options{Workers: 4}).Run(context.Background(), Request{MPNs: []string{"LM358N", "lm358n", "LM 358 N"}})
		done <- result
	}()

	<-started
	// Give the duplicates time to join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(release)

	result := <-done
	require.Equal(t, 3, result.Count())
	assert.Equal(t, int32(1), calls.Load())
	for _, item := range result.Items {
		assert.Equal(t, part.OutcomeMatched, item.Result.Outcome())
	}
}

func TestRun_PanicBecomesItemError(t *testing.T) {
	lookup := datasheet.LookupFunc(func(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
		if key == "BOOM" {
			panic("nil map write")
		}
		return echoLookup(nil)(ctx, key, m)
	})

	result, err := newOrchestrator(lookup, Options{}).Run(context.Background(), Request{MPNs: []string{"boom", "LM358N"}})
	require.NoError(t, err)

	assert.Equal(t, part.OutcomeError, result.Items[0].Result.Outcome())
	assert.Contains(t, result.Items[0].Result.Error(), "nil map write")
	assert.True(t, result.Items[1].Result.OK())
}

type panickingRanker struct{}

func (panickingRanker) Rank(manufacturer.Resolved, []part.Candidate) part.Result {
	panic("ranker exploded")
}

func TestRun_RankerPanicBecomesItemError(t *testing.T) {
	o := New(manufacturer.NewDefaultResolver(), echoLookup(nil), panickingRanker{}, Options{})

	result, err := o.Run(context.Background(), Request{MPNs: []string{"LM358N"}})
	require.NoError(t, err)
	assert.Equal(t, part.OutcomeError, result.Items[0].Result.Outcome())
	assert.Contains(t, result.Items[0].Result.Error(), "ranker exploded")
}

func TestRun_LookupTimeout(t *testing.T) {
	lookup := datasheet.LookupFunc(func(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	result, err := newOrchestrator(lookup, Options{LookupTimeout: 20 * time.Millisecond}).Run(context.Background(), Request{MPNs: []string{"LM358N"}})
	require.NoError(t, err)
	assert.Equal(t, part.OutcomeError, result.Items[0].Result.Outcome())
	assert.Contains(t, result.Items[0].Result.Error(), "deadline exceeded")
}

func TestRun_CancellationDiscardsPartialWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 1)

	lookup := datasheet.LookupFunc(func(lctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
		if key == "SLOW" {
			select {
			case started <- struct{}{}:
			default:
			}
			<-lctx.Done()
			return nil, lctx.Err()
		}
		return echoLookup(nil)(lctx, key, m)
	})

	var completed atomic.Bool
	o := newOrchestrator(lookup, Options{Workers: 2, OnComplete: func(context.Context, *Result) { completed.Store(true) }})

	go func() {
		<-started
		cancel()
	}()

	result, err := o.Run(ctx, Request{MPNs: []string{"FAST", "slow", "FAST2"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.False(t, completed.Load())
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	result, err := newOrchestrator(echoLookup(&calls), Options{}).Run(ctx, Request{MPNs: []string{"LM358N"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Zero(t, calls.Load())
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	lookup := datasheet.LookupFunc(func(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	})

	mpns := make([]string, 30)
	for i := range mpns {
		mpns[i] = fmt.Sprintf("P%d", i)
	}

	result, err := newOrchestrator(lookup, Options{Workers: 3}).Run(context.Background(), Request{MPNs: mpns})
	require.NoError(t, err)
	assert.Equal(t, 30, result.Count())
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for _, item := range result.Items {
		assert.Equal(t, part.OutcomeNotFound, item.Result.Outcome())
	}
}

func TestRun_AmbiguousWithinMargin(t *testing.T) {
	lookup := datasheet.LookupFunc(func(_ context.Context, key mpn.Key, _ manufacturer.Resolved) ([]part.Candidate, error) {
		return []part.Candidate{
			{Manufacturer: "Texas Instruments", MPN: "LM358", Key: key, Confidence: 0.8, Source: "a"},
			{Manufacturer: "onsemi", MPN: "LM358", Key: key, Confidence: 0.8, Source: "b"},
		}, nil
	})

	result, err := newOrchestrator(lookup, Options{}).Run(context.Background(), Request{MPNs: []string{"LM358"}})
	require.NoError(t, err)

	item := result.Items[0]
	assert.Equal(t, part.OutcomeAmbiguous, item.Result.Outcome())
	assert.Len(t, item.Result.Candidates(), 2)
}

func TestRun_OnCompleteReceivesResult(t *testing.T) {
	var got *Result
	o := newOrchestrator(echoLookup(nil), Options{OnComplete: func(_ context.Context, r *Result) { got = r }})

	result, err := o.Run(context.Background(), Request{MPNs: []string{"LM358N"}})
	require.NoError(t, err)
	assert.Same(t, result, got)
}

func TestNew_Defaults(t *testing.T) {
	o := New(manufacturer.NewDefaultResolver(), echoLookup(nil), part.NewRanker(nil, part.DefaultOptions()), Options{})
	assert.Equal(t, defaultWorkers, o.workers)
	assert.Equal(t, defaultLookupTimeout, o.timeout)
}

func TestResult_CountNil(t *testing.T) {
	var r *Result
	assert.Zero(t, r.Count())
}
