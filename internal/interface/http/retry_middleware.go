package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/omniluck/internal/infra/config"
)

// maxReplayBody bounds the JSON body kept in memory for replays. Luck and
// chart requests are a few hundred bytes.
const maxReplayBody = 64 << 10

var errReplayBodyTooLarge = errors.New("request body too large to replay")

// replayer re-runs POST requests whose scoring pipeline failed with a 5xx,
// typically a weather, geomagnetic or LLM upstream hiccup. Every luck POST is
// a pure function of its body and history is only queued once scoring
// succeeds, so a failed attempt leaves nothing behind.
type replayer struct {
	next     http.Handler
	attempts int
	backoff  time.Duration
	skip     map[string]struct{}
	logger   *slog.Logger
}

func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	skip := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		skip[path] = struct{}{}
	}
	return &replayer{
		next:     handler,
		attempts: cfg.MaxAttempts,
		backoff:  cfg.BaseBackoff,
		skip:     skip,
		logger:   logger.With("component", "http.retry"),
	}
}

func (p *replayer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, excluded := p.skip[r.URL.Path]; excluded || r.Method != http.MethodPost {
		p.next.ServeHTTP(w, r)
		return
	}
	body, err := bufferBody(r)
	if err != nil {
		if errors.Is(err, errReplayBodyTooLarge) {
			writeHTTPError(w, NewHTTPError(http.StatusRequestEntityTooLarge, codeBodyTooLarge, err.Error(), err))
			return
		}
		writeHTTPError(w, invalidRequest("unreadable request body", err))
		return
	}

	for attempt := 1; ; attempt++ {
		buffered := newBufferedResponse()
		p.next.ServeHTTP(buffered, withBody(r, body))
		if !buffered.transient() || attempt >= p.attempts {
			buffered.flushTo(w)
			return
		}
		p.logger.Warn("luck request failed upstream, replaying",
			"path", r.URL.Path, "status", buffered.status, "attempt", attempt, "request_id", r.Header.Get(requestIDHeader))
		if !p.wait(r, attempt) {
			writeHTTPError(w, NewHTTPError(http.StatusServiceUnavailable, codeRequestCancelled, "request cancelled while waiting to retry", r.Context().Err()))
			return
		}
	}
}

// wait sleeps base*2^(attempt-1) and reports false if the client went away.
func (p *replayer) wait(r *http.Request, attempt int) bool {
	delay := p.backoff << (attempt - 1)
	if delay <= 0 {
		return r.Context().Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-r.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxReplayBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxReplayBody {
		return nil, errReplayBodyTooLarge
	}
	return data, nil
}

func withBody(r *http.Request, body []byte) *http.Request {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	return clone
}

// bufferedResponse holds one attempt's response until we know whether it is
// the one the client gets.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
	sealed bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.sealed {
		return
	}
	b.status = status
	b.sealed = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.sealed = true
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

// transient treats 5xx as worth a replay, except 501 which never changes.
func (b *bufferedResponse) transient() bool {
	return b.status >= http.StatusInternalServerError && b.status != http.StatusNotImplemented
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k := range dst {
		dst.Del(k)
	}
	for k, values := range b.header {
		dst[k] = append([]string(nil), values...)
	}
	w.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
