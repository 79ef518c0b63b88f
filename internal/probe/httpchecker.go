package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
)

const (
	userAgent   = "MUDA-Pay-Health-Monitor/1.0"
	maxBodySize = 64 << 10 // stored response bodies are truncated to 64KiB
)

// HTTPChecker probes a service with a single GET and classifies the outcome
// against the service's expected response body.
type HTTPChecker struct {
	Client         *http.Client
	DefaultTimeout time.Duration // used when the service carries no timeout
}

func NewHTTPChecker(defaultTimeout time.Duration) *HTTPChecker {
	if defaultTimeout <= 0 {
		defaultTimeout = 10 * time.Second
	}
	return &HTTPChecker{
		Client:         &http.Client{},
		DefaultTimeout: defaultTimeout,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, svc domain.Service) Outcome {
	timeout := svc.Timeout
	if timeout <= 0 {
		timeout = h.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	elapsed := func() int64 { return time.Since(start).Milliseconds() }

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.URL, nil)
	if err != nil {
		return Outcome{Status: domain.StatusError, ResponseTimeMS: elapsed(), ErrorMessage: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.Client.Do(req)
	if err != nil {
		return classifyFailure(err, elapsed())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return classifyFailure(err, elapsed())
	}
	body := string(raw)
	ms := elapsed()

	if resp.StatusCode == http.StatusOK && body == svc.ExpectedResponse {
		return Outcome{
			Status:         domain.StatusOK,
			ResponseTimeMS: ms,
			ResponseBody:   body,
			HasBody:        true,
		}
	}
	return Outcome{
		Status:         domain.StatusError,
		ResponseTimeMS: ms,
		ResponseBody:   body,
		HasBody:        true,
		ErrorMessage:   "Unexpected response: " + body,
	}
}

// classifyFailure separates timeouts from every other transport failure
// (DNS, refused connection, TLS, ...).
func classifyFailure(err error, ms int64) Outcome {
	if isTimeout(err) {
		return Outcome{Status: domain.StatusTimeout, ResponseTimeMS: ms, ErrorMessage: "Request timeout"}
	}
	return Outcome{Status: domain.StatusError, ResponseTimeMS: ms, ErrorMessage: err.Error()}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
