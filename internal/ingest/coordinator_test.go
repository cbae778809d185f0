package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"smart-docs/internal/domain"
	"smart-docs/internal/source"
	"smart-docs/internal/summary"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose init starts a worker that never exits.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func waitFuture(t *testing.T, f *Future) (domain.SummaryResult, error) {
	t.Helper()
	require.NotNil(t, f)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

// blockingSource loads a fixed document once release is closed.
type blockingSource struct {
	origin  domain.Origin
	doc     domain.Document
	err     error
	started chan struct{}
	release chan struct{}
}

func newBlockingSource(origin domain.Origin, doc domain.Document) *blockingSource {
	return &blockingSource{origin: origin, doc: doc, started: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingSource) Origin() domain.Origin { return s.origin }

func (s *blockingSource) Load(ctx context.Context) (domain.Document, error) {
	close(s.started)
	select {
	case <-ctx.Done():
		return domain.Document{}, ctx.Err()
	case <-s.release:
	}
	return s.doc, s.err
}

func TestRequestSummaryWithoutDocument(t *testing.T) {
	client := new(summary.MockClient)
	c := New(client)

	assert.Nil(t, c.RequestSummary())
	assert.Equal(t, domain.StateIdle, c.Snapshot().SummaryState)
	client.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestRequestSummaryCommitsResult(t *testing.T) {
	payload := summary.DefaultPayload()
	doc := domain.NewDocument(domain.OriginFile, "notes.md", "# Hi")

	client := new(summary.MockClient)
	client.On("Summarize", mock.Anything, "# Hi").Return(payload, nil).Once()
	rec := new(MockRecorder)
	rec.On("DocumentLoaded", mock.Anything, doc).Return(nil).Once()
	rec.On("SummaryCompleted", mock.Anything, doc, payload).Return(nil).Once()

	c := New(client, WithRecorder(rec))
	c.SetDocument(doc)

	res, err := waitFuture(t, c.RequestSummary())
	require.NoError(t, err)
	assert.Equal(t, payload, res)

	v := c.Snapshot()
	assert.Equal(t, domain.StateSucceeded, v.SummaryState)
	require.NotNil(t, v.Summary)
	assert.Equal(t, payload, *v.Summary)
	assert.Empty(t, v.SummaryError)
	client.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestRequestSummaryFailure(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    error
		wantMessage string
	}{
		{
			name:        "upstream timeout",
			err:         domain.ErrUpstreamTimeout,
			wantKind:    domain.ErrUpstreamTimeout,
			wantMessage: "The summary service took too long to respond. Please try again.",
		},
		{
			name:        "payload too large",
			err:         domain.ErrPayloadTooLarge,
			wantKind:    domain.ErrPayloadTooLarge,
			wantMessage: "The document is too large to summarize.",
		},
		{
			name:        "unclassified error becomes upstream error",
			err:         errors.New("boom"),
			wantKind:    domain.ErrUpstreamError,
			wantMessage: "Failed to generate summary. Please try again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(summary.MockClient)
			client.On("Summarize", mock.Anything, "# Hi").Return(domain.SummaryResult{}, tt.err).Once()

			c := New(client)
			c.SetDocument(domain.NewDocument(domain.OriginFile, "notes.md", "# Hi"))

			_, err := waitFuture(t, c.RequestSummary())
			assert.ErrorIs(t, err, tt.wantKind)
			assert.ErrorIs(t, err, domain.ErrSummaryGeneration)

			v := c.Snapshot()
			assert.Equal(t, domain.StateFailed, v.SummaryState)
			assert.Equal(t, tt.wantMessage, v.SummaryError)
			assert.Nil(t, v.Summary)
		})
	}
}

func TestRequestSummaryRetryAfterFailure(t *testing.T) {
	payload := summary.DefaultPayload()
	client := new(summary.MockClient)
	client.On("Summarize", mock.Anything, "# Hi").Return(domain.SummaryResult{}, domain.ErrUpstreamError).Once()
	client.On("Summarize", mock.Anything, "# Hi").Return(payload, nil).Once()

	c := New(client)
	c.SetDocument(domain.NewDocument(domain.OriginFile, "notes.md", "# Hi"))

	_, err := waitFuture(t, c.RequestSummary())
	require.Error(t, err)
	assert.Equal(t, domain.StateFailed, c.Snapshot().SummaryState)

	_, err = waitFuture(t, c.RequestSummary())
	require.NoError(t, err)
	assert.Equal(t, domain.StateSucceeded, c.Snapshot().SummaryState)
	client.AssertNumberOfCalls(t, "Summarize", 2)
}

func TestSetDocumentClearsSummary(t *testing.T) {
	client := new(summary.MockClient)
	client.On("Summarize", mock.Anything, "one").Return(summary.DefaultPayload(), nil).Once()

	c := New(client)
	c.SetDocument(domain.NewDocument(domain.OriginFile, "one.md", "one"))
	_, err := waitFuture(t, c.RequestSummary())
	require.NoError(t, err)
	require.NotNil(t, c.Snapshot().Summary)

	d2 := domain.NewDocument(domain.OriginFile, "two.md", "two")
	c.SetDocument(d2)

	v := c.Snapshot()
	assert.Nil(t, v.Summary)
	assert.Equal(t, domain.StateIdle, v.SummaryState)
	require.NotNil(t, v.Document)
	assert.Equal(t, d2, *v.Document)
}

func TestStaleResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := new(summary.MockClient)
	client.On("Summarize", mock.Anything, "one").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(summary.DefaultPayload(), nil).Once()

	c := New(client)
	c.SetDocument(domain.NewDocument(domain.OriginFile, "one.md", "one"))
	f := c.RequestSummary()
	<-started

	d2 := domain.NewDocument(domain.OriginRepository, "https://github.com/foo/bar", "two")
	c.SetDocument(d2)
	close(release)

	_, err := waitFuture(t, f)
	assert.ErrorIs(t, err, domain.ErrStaleResult)

	v := c.Snapshot()
	assert.Nil(t, v.Summary)
	assert.Equal(t, domain.StateIdle, v.SummaryState)
	assert.Equal(t, d2.ID, v.Document.ID)
	client.AssertExpectations(t)
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	client := new(summary.MockClient)
	client.On("Summarize", mock.Anything, "one").
		Run(func(mock.Arguments) { <-release }).
		Return(domain.SummaryResult{}, domain.ErrUpstreamError).Once()

	c := New(client)
	c.SetDocument(domain.NewDocument(domain.OriginFile, "one.md", "one"))
	f := c.RequestSummary()
	c.SetDocument(domain.NewDocument(domain.OriginFile, "two.md", "two"))
	close(release)

	_, err := waitFuture(t, f)
	assert.ErrorIs(t, err, domain.ErrStaleResult)
	v := c.Snapshot()
	assert.Equal(t, domain.StateIdle, v.SummaryState)
	assert.Empty(t, v.SummaryError)
}

func TestNewRequestAfterReplacementCommits(t *testing.T) {
	release := make(chan struct{})
	payload := summary.DefaultPayload()
	client := new(summary.MockClient)
	client.On("Summarize", mock.Anything, "one").
		Run(func(mock.Arguments) { <-release }).
		Return(payload, nil).Once()
	client.On("Summarize", mock.Anything, "two").Return(payload, nil).Once()

	c := New(client)
	c.SetDocument(domain.NewDocument(domain.OriginFile, "one.md", "one"))
	stale := c.RequestSummary()

	c.SetDocument(domain.NewDocument(domain.OriginFile, "two.md", "two"))
	fresh := c.RequestSummary()
	require.NotSame(t, stale, fresh)

	_, err := waitFuture(t, fresh)
	require.NoError(t, err)
	close(release)
	_, err = waitFuture(t, stale)
	assert.ErrorIs(t, err, domain.ErrStaleResult)

	v := c.Snapshot()
	assert.Equal(t, domain.StateSucceeded, v.SummaryState)
	assert.NotNil(t, v.Summary)
	client.AssertExpectations(t)
}

func TestRequestSummaryWhileLoadingIsNoOp(t *testing.T) {
	release := make(chan struct{})
	client := new(summary.MockClient)
	client.On("Summarize", mock.Anything, "# Hi").
		Run(func(mock.Arguments) { <-release }).
		Return(summary.DefaultPayload(), nil).Once()

	c := New(client)
	c.SetDocument(domain.NewDocument(domain.OriginFile, "notes.md", "# Hi"))

	first := c.RequestSummary()
	second := c.RequestSummary()
	assert.Same(t, first, second)
	assert.Equal(t, domain.StateLoading, c.Snapshot().SummaryState)

	close(release)
	_, err := waitFuture(t, first)
	require.NoError(t, err)
	c.Wait()
	client.AssertNumberOfCalls(t, "Summarize", 1)
}

func TestSummaryTimeout(t *testing.T) {
	c := New(summary.NewStub(time.Minute), WithSummaryTimeout(20*time.Millisecond))
	c.SetDocument(domain.NewDocument(domain.OriginFile, "notes.md", "# Hi"))

	_, err := waitFuture(t, c.RequestSummary())
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
	assert.Equal(t, domain.StateFailed, c.Snapshot().SummaryState)
}

func TestBaseContextCancelsRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(summary.NewStub(time.Minute), WithBaseContext(ctx))
	c.SetDocument(domain.NewDocument(domain.OriginFile, "notes.md", "# Hi"))

	f := c.RequestSummary()
	cancel()
	_, err := waitFuture(t, f)
	assert.ErrorIs(t, err, domain.ErrUpstreamError)
	assert.NotErrorIs(t, err, domain.ErrUpstreamTimeout)
	assert.Equal(t, "Failed to generate summary. Please try again.", c.Snapshot().SummaryError)
	c.Wait()
}

func TestRecorderErrorsAreNotFatal(t *testing.T) {
	rec := new(MockRecorder)
	rec.On("DocumentLoaded", mock.Anything, mock.Anything).Return(errors.New("store down"))
	rec.On("SummaryCompleted", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("store down"))

	c := New(summary.NewStub(0), WithRecorder(rec))
	c.SetDocument(domain.NewDocument(domain.OriginFile, "notes.md", "# Hi"))

	_, err := waitFuture(t, c.RequestSummary())
	require.NoError(t, err)
	assert.Equal(t, domain.StateSucceeded, c.Snapshot().SummaryState)
}

func TestLoadFile(t *testing.T) {
	c := New(new(summary.MockClient))

	doc, err := c.Load(context.Background(), source.File{
		Name:     "notes.md",
		Body:     strings.NewReader("# Hi"),
		MaxBytes: 1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "notes.md", doc.OriginLabel)

	v := c.Snapshot()
	require.NotNil(t, v.Document)
	assert.Equal(t, doc, *v.Document)
	assert.Equal(t, domain.StateSucceeded, v.Loads[domain.OriginFile].State)
	assert.Equal(t, domain.StateIdle, v.Loads[domain.OriginRepository].State)
}

func TestLoadFailureKeepsCurrentDocument(t *testing.T) {
	c := New(new(summary.MockClient))
	current := domain.NewDocument(domain.OriginFile, "notes.md", "# Hi")
	c.SetDocument(current)

	_, err := c.Load(context.Background(), source.Repository{URL: "not-a-link"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	v := c.Snapshot()
	assert.Equal(t, current, *v.Document)
	assert.Equal(t, domain.StateFailed, v.Loads[domain.OriginRepository].State)
	assert.Equal(t, "Please enter a valid GitHub repository URL", v.Loads[domain.OriginRepository].Error)
}

func TestLoadClearsSummary(t *testing.T) {
	c := New(summary.NewStub(0))
	c.SetDocument(domain.NewDocument(domain.OriginFile, "one.md", "one"))
	_, err := waitFuture(t, c.RequestSummary())
	require.NoError(t, err)

	_, err = c.Load(context.Background(), source.File{Name: "two.txt", Body: strings.NewReader("two"), MaxBytes: 10})
	require.NoError(t, err)
	assert.Nil(t, c.Snapshot().Summary)
	assert.Equal(t, domain.StateIdle, c.Snapshot().SummaryState)
}

func TestLoadSupersededBySetDocument(t *testing.T) {
	c := New(new(summary.MockClient))
	src := newBlockingSource(domain.OriginRepository, domain.NewDocument(domain.OriginRepository, "https://github.com/foo/bar", "readme"))

	type result struct {
		doc domain.Document
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := c.Load(context.Background(), src)
		done <- result{doc, err}
	}()
	<-src.started
	assert.Equal(t, domain.StateLoading, c.Snapshot().Loads[domain.OriginRepository].State)

	dropped := domain.NewDocument(domain.OriginFile, "notes.md", "# Hi")
	c.SetDocument(dropped)
	close(src.release)

	r := <-done
	assert.ErrorIs(t, r.err, domain.ErrSuperseded)
	v := c.Snapshot()
	assert.Equal(t, dropped.ID, v.Document.ID)
	assert.Equal(t, domain.StateIdle, v.Loads[domain.OriginRepository].State)
}

func TestLatestLoadWins(t *testing.T) {
	c := New(new(summary.MockClient))
	slow := newBlockingSource(domain.OriginRepository, domain.NewDocument(domain.OriginRepository, "https://github.com/foo/slow", "slow"))

	errc := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background(), slow)
		errc <- err
	}()
	<-slow.started

	fast, err := c.Load(context.Background(), source.Repository{
		URL:     "https://github.com/foo/fast",
		Fetcher: source.StubFetcher{Readme: "fast"},
	})
	require.NoError(t, err)

	close(slow.release)
	assert.ErrorIs(t, <-errc, domain.ErrSuperseded)

	v := c.Snapshot()
	assert.Equal(t, fast.ID, v.Document.ID)
	assert.Equal(t, domain.StateSucceeded, v.Loads[domain.OriginRepository].State)
}

func TestFutureWaitHonoursContext(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	f.resolve(summary.DefaultPayload(), nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("future should be resolved")
	}
}
