// Package ingest holds the currently loaded document and its summary, and
// mediates between content sources and the summary client.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"smart-docs/internal/domain"
	"smart-docs/internal/source"
	"smart-docs/internal/summary"
)

// LoadStatus is the state of the most recent load for one origin.
type LoadStatus struct {
	State domain.RequestState `json:"state"`
	Error string              `json:"error,omitempty"`
}

// View is a point-in-time copy of the coordinator state.
type View struct {
	Document     *domain.Document             `json:"document,omitempty"`
	Summary      *domain.SummaryResult        `json:"summary,omitempty"`
	SummaryState domain.RequestState          `json:"summary_state"`
	SummaryError string                       `json:"summary_error,omitempty"`
	Loads        map[domain.Origin]LoadStatus `json:"loads"`
}

type loadEntry struct {
	ticket uint64
	status LoadStatus
}

// Coordinator owns the current document and summary. All state changes happen
// under one mutex; summary requests run on their own goroutine and commit only
// if the document they were issued for is still current.
type Coordinator struct {
	summarizer     summary.Client
	log            *slog.Logger
	recorder       Recorder
	baseCtx        context.Context
	summaryTimeout time.Duration

	mu           sync.Mutex
	document     *domain.Document
	summary      *domain.SummaryResult
	summaryState domain.RequestState
	summaryErr   string
	generation   uint64
	inflight     *Future
	loadTicket   uint64
	loads        map[domain.Origin]loadEntry

	wg sync.WaitGroup
}

type Option func(*Coordinator)

func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithBaseContext sets the parent context of summary requests and recorder
// calls. Cancelling it aborts in-flight requests.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.baseCtx = ctx }
}

// WithSummaryTimeout bounds each summary request. Zero means no bound.
func WithSummaryTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.summaryTimeout = d }
}

// New creates a coordinator with no document loaded.
func New(summarizer summary.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		summarizer:   summarizer,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder:     noopRecorder{},
		baseCtx:      context.Background(),
		summaryState: domain.StateIdle,
		loads:        make(map[domain.Origin]loadEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDocument makes doc current, clears any summary and supersedes in-flight
// loads and summary requests.
func (c *Coordinator) SetDocument(doc domain.Document) {
	c.mu.Lock()
	c.loadTicket++
	c.replaceDocumentLocked(doc)
	c.mu.Unlock()

	c.recordLoaded(doc)
}

func (c *Coordinator) replaceDocumentLocked(doc domain.Document) {
	c.document = &doc
	c.summary = nil
	c.summaryState = domain.StateIdle
	c.summaryErr = ""
	c.generation++
	c.inflight = nil
}

// RequestSummary starts a summary request for the current document. It
// returns nil when no document is loaded and the in-flight future when a
// request is already running.
func (c *Coordinator) RequestSummary() *Future {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.document == nil {
		return nil
	}
	if c.summaryState == domain.StateLoading && c.inflight != nil {
		return c.inflight
	}

	f := newFuture()
	c.inflight = f
	c.summaryState = domain.StateLoading
	c.summaryErr = ""

	gen, doc := c.generation, *c.document
	c.wg.Add(1)
	go c.summarize(gen, doc, f)
	return f
}

func (c *Coordinator) summarize(gen uint64, doc domain.Document, f *Future) {
	defer c.wg.Done()

	ctx, cancel := c.requestContext()
	res, err := c.summarizer.Summarize(ctx, doc.Content)
	cancel()
	if err != nil && !errors.Is(err, domain.ErrSummaryGeneration) {
		err = fmt.Errorf("%w: %w", domain.ErrUpstreamError, err)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.log.Info("discarding stale summary", "document_id", doc.ID)
		f.resolve(domain.SummaryResult{}, domain.ErrStaleResult)
		return
	}
	c.inflight = nil
	if err != nil {
		c.summaryState = domain.StateFailed
		c.summaryErr = domain.UserMessage(err)
		c.mu.Unlock()
		c.log.Error("summary request failed", "document_id", doc.ID, "err", err)
		f.resolve(domain.SummaryResult{}, err)
		return
	}
	c.summary = &res
	c.summaryState = domain.StateSucceeded
	c.mu.Unlock()

	if err := c.recorder.SummaryCompleted(c.baseCtx, doc, res); err != nil {
		c.log.Warn("failed to record summary", "document_id", doc.ID, "err", err)
	}
	f.resolve(res, nil)
}

func (c *Coordinator) requestContext() (context.Context, context.CancelFunc) {
	if c.summaryTimeout > 0 {
		return context.WithTimeout(c.baseCtx, c.summaryTimeout)
	}
	return context.WithCancel(c.baseCtx)
}

// Load runs src and, on success, makes its document current. A load overtaken
// by a newer load or SetDocument returns domain.ErrSuperseded and leaves the
// current document alone.
func (c *Coordinator) Load(ctx context.Context, src source.Source) (domain.Document, error) {
	origin := src.Origin()

	c.mu.Lock()
	c.loadTicket++
	ticket := c.loadTicket
	c.loads[origin] = loadEntry{ticket: ticket, status: LoadStatus{State: domain.StateLoading}}
	c.mu.Unlock()

	doc, err := src.Load(ctx)

	c.mu.Lock()
	if ticket != c.loadTicket {
		if e := c.loads[origin]; e.ticket == ticket {
			c.loads[origin] = loadEntry{ticket: ticket, status: LoadStatus{State: domain.StateIdle}}
		}
		c.mu.Unlock()
		c.log.Info("discarding superseded load", "origin", origin)
		return domain.Document{}, domain.ErrSuperseded
	}
	if err != nil {
		c.loads[origin] = loadEntry{ticket: ticket, status: LoadStatus{State: domain.StateFailed, Error: domain.UserMessage(err)}}
		c.mu.Unlock()
		c.log.Warn("load failed", "origin", origin, "err", err)
		return domain.Document{}, err
	}
	c.loads[origin] = loadEntry{ticket: ticket, status: LoadStatus{State: domain.StateSucceeded}}
	c.replaceDocumentLocked(doc)
	c.mu.Unlock()

	c.recordLoaded(doc)
	return doc, nil
}

func (c *Coordinator) recordLoaded(doc domain.Document) {
	if err := c.recorder.DocumentLoaded(c.baseCtx, doc); err != nil {
		c.log.Warn("failed to record document", "document_id", doc.ID, "err", err)
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		SummaryState: c.summaryState,
		SummaryError: c.summaryErr,
		Loads: map[domain.Origin]LoadStatus{
			domain.OriginFile:       {State: domain.StateIdle},
			domain.OriginRepository: {State: domain.StateIdle},
		},
	}
	if c.document != nil {
		doc := *c.document
		v.Document = &doc
	}
	if c.summary != nil {
		res := *c.summary
		v.Summary = &res
	}
	for origin, e := range c.loads {
		v.Loads[origin] = e.status
	}
	return v
}

// Wait blocks until every started summary request has resolved.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
