package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/softfab/taskrunner/internal/errs"
)

// DefaultRetryDelay is how long the queue waits before retrying a
// transiently failed request, grounded on ControlCenter.java's
// RETRY_DELAY constant.
const DefaultRetryDelay = 10 * time.Second

// Listener receives the outcome of one submitted request. ServerReplied
// is given a borrowed reader; the queue closes it after the callback
// returns, so the listener must not close it itself. Any error returned
// from ServerReplied is treated as transient and causes the request to
// be retried; I/O failures are not distinguished from other errors.
type Listener interface {
	ServerReplied(body io.Reader) error
	ServerFailed(err error)
}

type queuedRequest struct {
	req      Request
	listener Listener
}

// Queue is the single-worker, FIFO, retrying outbound request queue
// described by ControlCenter.java's worker loop.
type Queue struct {
	baseURL    string
	authHeader string
	client     *http.Client
	logger     *slog.Logger
	retryDelay time.Duration

	mu      sync.Mutex
	pending []queuedRequest
	wake    chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New returns a queue that POSTs against baseURL (which must already end
// with "/") using HTTP Basic auth with the given token pair.
func New(baseURL, tokenID, tokenPass string, logger *slog.Logger) *Queue {
	q := &Queue{
		baseURL:    baseURL,
		authHeader: basicAuthHeader(tokenID, tokenPass),
		client:     &http.Client{},
		logger:     logger,
		retryDelay: DefaultRetryDelay,
		wake:       make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func basicAuthHeader(tokenID, tokenPass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(tokenID+":"+tokenPass))
}

// Submit enqueues req for delivery, preserving submission order relative
// to every other Submit call.
func (q *Queue) Submit(req Request, listener Listener) {
	q.mu.Lock()
	q.pending = append(q.pending, queuedRequest{req, listener})
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close waits until every request submitted so far has been delivered or
// has failed permanently, then stops the worker goroutine. Requests
// submitted after Close returns are never delivered.
func (q *Queue) Close() {
	q.stopOnce.Do(func() { close(q.stopCh) })
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		head, ok := q.peekHead()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-q.stopCh:
				return
			}
		}

		retry := q.deliver(head)
		if !retry {
			q.popHead()
		}

		if retry {
			// Close is honoured only once the queue is empty, so a
			// retry wait is never cut short by it.
			time.Sleep(q.retryDelay)
		}
	}
}

func (q *Queue) peekHead() (queuedRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return queuedRequest{}, false
	}
	return q.pending[0], true
}

func (q *Queue) popHead() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) > 0 {
		q.pending = q.pending[1:]
	}
}

// deliver sends one request and returns true if it should be retried.
func (q *Queue) deliver(qr queuedRequest) bool {
	body, err := q.send(qr.req)
	if err != nil {
		var perm *errs.PermanentRequestFailure
		if errors.As(err, &perm) {
			q.logger.Warn("request failed permanently", "page", qr.req.Page(), "err", err)
			qr.listener.ServerFailed(err)
			return false
		}
		q.logger.Warn("request failed transiently, will retry", "page", qr.req.Page(), "err", err)
		return true
	}
	defer body.Close()

	if err := qr.listener.ServerReplied(body); err != nil {
		q.logger.Warn("listener returned an error, will retry", "page", qr.req.Page(), "err", err)
		return true
	}
	return false
}

// send performs the HTTP exchange and classifies the response per
// ControlCenter.java's status-code table. The caller owns the returned
// body and must close it.
func (q *Queue) send(req Request) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	target := q.baseURL + req.Page()
	if qs := req.QueryString(); qs != "" {
		target += "?" + qs
	}

	var bodyReader io.Reader
	bodyType := req.BodyType()
	if bodyType != "" {
		bodyReader = bytes.NewReader(req.Body())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bodyReader)
	if err != nil {
		return nil, &errs.TransientTransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Authorization", q.authHeader)
	if bodyType != "" {
		httpReq.Header.Set("Content-Type", bodyType)
	}

	resp, err := q.client.Do(httpReq)
	if err != nil {
		return nil, &errs.TransientTransportError{Err: err}
	}

	switch {
	case resp.StatusCode < 400:
		return resp.Body, nil
	case isPermanentStatus(resp.StatusCode):
		resp.Body.Close()
		return nil, &errs.PermanentRequestFailure{StatusCode: resp.StatusCode, Status: resp.Status}
	default:
		resp.Body.Close()
		return nil, &errs.TransientTransportError{Err: fmt.Errorf("http status %s", resp.Status)}
	}
}

func isPermanentStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusProxyAuthRequired,
		http.StatusForbidden,
		http.StatusLengthRequired:
		return true
	}
	return false
}
