package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/insight-stream/internal/graph"
	"github.com/ignite/insight-stream/internal/pkg/logger"
)

// ErrDone signals that the stream has produced every batch and no more
// pulls will be serviced.
var ErrDone = errors.New("insights: stream exhausted")

// Options configures a Stream. Client, ItemType, Items and at least one
// metric are required; everything else has defaults.
type Options struct {
	Client   *graph.Client
	ItemType ItemType

	// Items are the configured item references. Token is the run default
	// access token, applied to every item without its own override.
	Items []ItemRef
	Token string

	// PastDays bounds the lookback window; 0 means unbounded. MaxSpanDays
	// caps a single query window (default 90).
	PastDays    int
	MaxSpanDays int

	// Period is the aggregation period query parameter (default "day").
	Period string

	// Metrics are plain insight metrics. When Events is non-empty the run
	// targets the audience API instead: Metrics[0] is paired with every
	// event and its aggregation mode.
	Metrics []string
	Events  []string

	// Breakdowns split each date's value into one row per dimension tuple.
	Breakdowns []string

	// Aggregate includes the aggregateBy parameter on event queries.
	Aggregate bool

	// Policy routes classifiable fetch errors (default: fail on
	// everything).
	Policy ErrorPolicy

	// NameCache, when set, short-circuits item name resolution.
	NameCache NameCache

	// OnProgress, when set, observes one update per completed
	// (item, date-range) unit.
	OnProgress func(Progress)

	// Now overrides the range-planning anchor (tests).
	Now func() time.Time
}

type streamState int

const (
	stateUninitialized streamState = iota
	stateReady
	stateDone
	stateErrored
)

// workUnit is one (date-range, item) pair, with the URL template shared by
// every fetch in the range.
type workUnit struct {
	tmpl *graph.Template
	item Item
}

// Stream is the pull-driven production unit: every Next call yields the
// complete row set of one (item, date-range) pair, until the work queue is
// drained. Date ranges and resolved items are computed once, on the first
// pull.
type Stream struct {
	opts  Options
	runID string

	state  streamState
	err    error
	work   []workUnit
	total  int
	loaded int
}

// NewStream validates the options and returns an uninitialized stream; no
// network traffic happens until the first Next call.
func NewStream(opts Options) (*Stream, error) {
	if opts.Client == nil {
		return nil, errors.New("insights: Client is required")
	}
	if opts.ItemType != ItemTypePage && opts.ItemType != ItemTypeApp {
		return nil, fmt.Errorf("insights: unsupported item type %q", opts.ItemType)
	}
	if len(opts.Items) == 0 {
		return nil, errors.New("insights: at least one item is required")
	}
	if len(opts.Metrics) == 0 {
		return nil, errors.New("insights: at least one metric is required")
	}
	if opts.MaxSpanDays == 0 {
		opts.MaxSpanDays = DefaultMaxSpanDays
	}
	if opts.Period == "" {
		opts.Period = "day"
	}
	if opts.Policy == nil {
		opts.Policy = FailAll{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Stream{opts: opts, runID: uuid.NewString()}, nil
}

// Next produces the next batch: the full row set for one item × one date
// range (possibly empty when every metric was skippable). It returns ErrDone
// once the work queue is drained, and the terminal error after a fatal
// failure; an errored stream services no further pulls.
func (s *Stream) Next(ctx context.Context) ([]Row, error) {
	switch s.state {
	case stateErrored:
		return nil, s.err
	case stateDone:
		return nil, ErrDone
	case stateUninitialized:
		if err := s.init(ctx); err != nil {
			return s.fail(err)
		}
	}

	if len(s.work) == 0 {
		s.state = stateDone
		logger.Info("insights: stream drained", "run", s.runID, "units", s.total)
		return nil, ErrDone
	}

	unit := s.work[0]
	s.work = s.work[1:]

	col := newCollector(s.opts.Client, unit.tmpl, s.opts.ItemType, unit.item,
		s.requests(), s.opts.Breakdowns, s.opts.Policy)
	buf, err := col.run(ctx)
	if err != nil {
		return s.fail(err)
	}

	s.loaded++
	s.emitProgress()

	return assembleRows(buf, unit.item, s.opts.ItemType), nil
}

// Err returns the terminal error, if the stream has failed.
func (s *Stream) Err() error {
	if s.state == stateErrored {
		return s.err
	}
	return nil
}

// init runs the one-time setup: plan the date ranges, resolve the items,
// and build the work queue ordered date-range-major (all items are visited
// for the most recent range before moving to the next one).
func (s *Stream) init(ctx context.Context) error {
	ranges := PlanRanges(s.opts.PastDays, s.opts.MaxSpanDays, s.opts.Now())

	resolver := NewResolver(s.opts.Client, s.opts.Token, s.opts.NameCache)
	items, err := resolver.Resolve(ctx, s.opts.Items)
	if err != nil {
		return err
	}

	for _, rng := range ranges {
		tmpl := graph.NewTemplate(s.opts.Client.BaseURL(), graph.TemplateOptions{
			Edge:       s.opts.ItemType.Edge(),
			Period:     s.opts.Period,
			Bounded:    rng.Bounded,
			Since:      rng.Since.Unix(),
			Until:      rng.Until.Unix(),
			HasEvents:  len(s.opts.Events) > 0,
			Aggregate:  s.opts.Aggregate,
			Breakdowns: s.opts.Breakdowns,
		})
		for _, item := range items {
			s.work = append(s.work, workUnit{tmpl: tmpl, item: item})
		}
	}

	s.total = len(s.work)
	s.state = stateReady

	logger.Info("insights: stream initialized",
		"run", s.runID,
		"itemType", string(s.opts.ItemType),
		"items", len(items),
		"ranges", len(ranges),
		"units", s.total)
	return nil
}

// requests builds the pending queue for one collection unit: one request
// per metric, or one per event (paired with Metrics[0] and the event's
// aggregation mode) when the run is event-based.
func (s *Stream) requests() []MetricRequest {
	if len(s.opts.Events) > 0 {
		metric := s.opts.Metrics[0]
		reqs := make([]MetricRequest, 0, len(s.opts.Events))
		for _, ev := range s.opts.Events {
			reqs = append(reqs, MetricRequest{
				Metric:      metric,
				Event:       ev,
				Aggregation: AggregationFor(ev),
			})
		}
		return reqs
	}

	reqs := make([]MetricRequest, 0, len(s.opts.Metrics))
	for _, m := range s.opts.Metrics {
		reqs = append(reqs, MetricRequest{Metric: m})
	}
	return reqs
}

func (s *Stream) emitProgress() {
	p := Progress{
		Total:   s.total,
		Loaded:  s.loaded,
		Message: "{{remaining}} " + string(s.opts.ItemType) + "s remaining",
	}
	logger.Debug("insights: progress", "run", s.runID,
		"loaded", p.Loaded, "total", p.Total)
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(p)
	}
}

func (s *Stream) fail(err error) ([]Row, error) {
	s.state = stateErrored
	s.err = err
	logger.Error("insights: stream failed", "run", s.runID, "error", err.Error())
	return nil, err
}
