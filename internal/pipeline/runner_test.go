package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docread/internal/extractor"
)

type stubExtractor struct {
	inFlight, peak atomic.Int32
	delay          func(req extractor.DocumentRequest) time.Duration
}

func (s *stubExtractor) Extract(_ context.Context, req extractor.DocumentRequest) extractor.Result {
	n := s.inFlight.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay != nil {
		time.Sleep(s.delay(req))
	}
	s.inFlight.Add(-1)
	return extractor.Result{Request: req, Succeeded: true, Text: req.DisplayName, Backend: extractor.Primary}
}

func requests(names ...string) []extractor.DocumentRequest {
	reqs := make([]extractor.DocumentRequest, 0, len(names))
	for _, n := range names {
		reqs = append(reqs, extractor.DocumentRequest{Path: "/in/" + n, DisplayName: n})
	}
	return reqs
}

func TestRunner_PreservesOrder(t *testing.T) {
	stub := &stubExtractor{delay: func(req extractor.DocumentRequest) time.Duration {
		// Earlier documents finish last.
		if req.DisplayName == "a.doc" {
			return 30 * time.Millisecond
		}
		return time.Millisecond
	}}
	r := NewRunner(stub, 3, nil)

	var seen []string
	r.OnResult = func(res extractor.Result) { seen = append(seen, res.Request.DisplayName) }

	results := r.Run(context.Background(), requests("a.doc", "b.doc", "c.doc"))
	require.Len(t, results, 3)
	for i, want := range []string{"a.doc", "b.doc", "c.doc"} {
		assert.Equal(t, want, results[i].Text)
	}
	assert.Equal(t, []string{"a.doc", "b.doc", "c.doc"}, seen)
}

func TestRunner_SequentialByDefault(t *testing.T) {
	stub := &stubExtractor{delay: func(extractor.DocumentRequest) time.Duration { return 2 * time.Millisecond }}
	NewRunner(stub, 0, nil).Run(context.Background(), requests("a", "b", "c", "d"))
	assert.Equal(t, int32(1), stub.peak.Load())
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	stub := &stubExtractor{delay: func(extractor.DocumentRequest) time.Duration { return 10 * time.Millisecond }}
	NewRunner(stub, 2, nil).Run(context.Background(), requests("a", "b", "c", "d", "e"))
	assert.LessOrEqual(t, stub.peak.Load(), int32(2))
}

func TestRunner_Empty(t *testing.T) {
	results := NewRunner(&stubExtractor{}, 4, nil).Run(context.Background(), nil)
	assert.Empty(t, results)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewRunner(&stubExtractor{}, 1, nil).Run(ctx, requests("a", "b"))
	require.Len(t, results, 2)
	for _, res := range results {
		if res.Succeeded {
			continue
		}
		assert.Equal(t, context.Canceled.Error(), res.Error)
	}
}
