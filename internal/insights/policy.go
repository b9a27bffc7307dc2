package insights

import (
	"errors"

	"github.com/ignite/insight-stream/internal/graph"
)

// Decision is the outcome an ErrorPolicy chooses for a classifiable error.
type Decision int

const (
	// Fail aborts the whole run.
	Fail Decision = iota
	// Retry re-issues the current request. The policy owns termination:
	// the collector will retry for as long as the policy keeps saying so.
	Retry
	// Skip drops the current metric/event and moves on.
	Skip
)

// ErrorPolicy routes classifiable errors (API error envelopes, transport
// and parse failures) raised while fetching one metric. Skippable empty
// results never reach the policy.
type ErrorPolicy interface {
	Handle(req MetricRequest, err error) Decision
}

// FailAll treats every classifiable error as fatal for the run.
type FailAll struct{}

func (FailAll) Handle(MetricRequest, error) Decision { return Fail }

// SkipMissing resolves API errors that indicate missing or inaccessible
// data on the current item to a skip of the current metric. Which error
// codes count as "missing" is configuration, not hard-coded: Codes lists
// them, and IgnoreAll extends the skip to every API-reported error.
// Anything else, including transport and parse failures, is fatal.
type SkipMissing struct {
	codes     map[int]bool
	ignoreAll bool
}

// NewSkipMissing builds the default policy: skip the configured missing-data
// codes, fail everything else. With ignoreAll set, any API error envelope
// resolves to a skip.
func NewSkipMissing(codes []int, ignoreAll bool) *SkipMissing {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return &SkipMissing{codes: set, ignoreAll: ignoreAll}
}

func (p *SkipMissing) Handle(_ MetricRequest, err error) Decision {
	var apiErr *graph.Error
	if errors.As(err, &apiErr) && (p.ignoreAll || p.codes[apiErr.Code]) {
		return Skip
	}
	return Fail
}

// RetryN re-issues a failing request up to max times, then delegates to the
// next policy. The retry budget is per request per run: a request that
// eventually succeeds keeps whatever budget it spent.
type RetryN struct {
	max      int
	next     ErrorPolicy
	attempts map[MetricRequest]int
}

// NewRetryN wraps next with a bounded retry. A nil next fails after the
// budget is spent.
func NewRetryN(max int, next ErrorPolicy) *RetryN {
	if next == nil {
		next = FailAll{}
	}
	return &RetryN{max: max, next: next, attempts: make(map[MetricRequest]int)}
}

func (p *RetryN) Handle(req MetricRequest, err error) Decision {
	p.attempts[req]++
	if p.attempts[req] <= p.max {
		return Retry
	}
	return p.next.Handle(req, err)
}
