// Package callback runs the loopback HTTP listener that receives OAuth authorization codes.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

const (
	// Path is the only route that can complete a login.
	Path = "/oauth/callback"

	// DefaultTimeout bounds how long a login may wait for the browser.
	DefaultTimeout = 5 * time.Minute

	listenAddress     = "127.0.0.1:0"
	shutdownTimeout   = 2 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Outcome tags a callback result.
type Outcome int

const (
	// OutcomeCode means an authorization code was received.
	OutcomeCode Outcome = iota + 1
	// OutcomeError means the provider or the request reported a failure.
	OutcomeError
	// OutcomeTimeout means no callback arrived in time.
	OutcomeTimeout
)

// Result is the settled outcome of a login attempt.
type Result struct {
	Outcome Outcome
	Code    string
	Err     error
}

// Unwrap converts the result into a code or an error.
func (r Result) Unwrap() (string, error) {
	if r.Outcome == OutcomeCode {
		return r.Code, nil
	}
	return "", r.Err
}

// Options configures a callback server.
type Options struct {
	// ExpectedState must match the state query parameter.
	ExpectedState string
	// ErrorPrefix prefixes error codes, e.g. "AWS" or "AWS_SSO".
	ErrorPrefix string
	// SuccessTitle and SuccessContent customize the success page.
	SuccessTitle   string
	SuccessContent string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
}

// Server is a single-use loopback listener.
type Server struct {
	opts     Options
	listener net.Listener
	srv      *http.Server
	port     int
	timer    *time.Timer

	mu      sync.Mutex
	handled bool

	result     chan Result
	settleOnce sync.Once
	closeOnce  sync.Once
}

// Start binds 127.0.0.1 on an ephemeral port and begins serving.
func Start(ctx context.Context, opts Options) (*Server, error) {
	if opts.ErrorPrefix == "" {
		opts.ErrorPrefix = "AWS"
	}
	if opts.SuccessTitle == "" {
		opts.SuccessTitle = DefaultSuccessTitle
	}
	if opts.SuccessContent == "" {
		opts.SuccessContent = DefaultSuccessContent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrCallbackServerStart, err)
	}

	s := &Server{
		opts:     opts,
		listener: listener,
		port:     listener.Addr().(*net.TCPAddr).Port,
		result:   make(chan Result, 1),
	}
	s.srv = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.timer = time.AfterFunc(opts.Timeout, s.onTimeout)

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.timer.Stop()
			s.settle(Result{
				Outcome: OutcomeError,
				Err:     fmt.Errorf("%w: %w", errUtils.ErrCallbackServerFailed, err),
			})
		}
	}()

	log.Debug("Callback server listening", "port", s.port)
	return s, nil
}

// Port returns the bound port.
func (s *Server) Port() int {
	return s.port
}

// RedirectURI returns the callback URL registered with the provider.
func (s *Server) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.port, Path)
}

// Wait blocks until the result is settled or ctx is done.
func (s *Server) Wait(ctx context.Context) Result {
	select {
	case r := <-s.result:
		// Put it back so repeated waits observe the same outcome.
		s.result <- r
		return r
	case <-ctx.Done():
		return Result{Outcome: OutcomeError, Err: ctx.Err()}
	}
}

// Close shuts the server down. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.timer.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			log.Debug("Callback server shutdown", "error", err)
			_ = s.srv.Close()
		}
	})
}

func (s *Server) settle(r Result) {
	s.settleOnce.Do(func() {
		s.result <- r
	})
}

// claim marks the attempt handled and reports whether the caller got there first.
func (s *Server) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handled {
		return false
	}
	s.handled = true
	return true
}

func (s *Server) isHandled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handled
}

func (s *Server) onTimeout() {
	if !s.claim() {
		return
	}
	s.settle(Result{
		Outcome: OutcomeTimeout,
		Err: errUtils.Coded(errUtils.ErrLoginTimeout, s.opts.ErrorPrefix+errUtils.SuffixLoginTimeout,
			"Login timed out. Please try again."),
	})
	go s.Close()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case s.isHandled():
		w.WriteHeader(http.StatusOK)
	case r.URL.Path != Path:
		w.WriteHeader(http.StatusNotFound)
	case !s.claim():
		w.WriteHeader(http.StatusOK)
	default:
		s.timer.Stop()
		s.settle(s.handleCallback(w, r))
	}
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) Result {
	query := r.URL.Query()
	prefix := s.opts.ErrorPrefix

	if providerError := query.Get("error"); providerError != "" {
		writeHTML(w, http.StatusBadRequest, RenderPage(failedTitle, errorContent(providerError), true))
		return Result{
			Outcome: OutcomeError,
			Err: errUtils.Coded(errUtils.ErrLoginFailed, prefix+errUtils.SuffixLoginFailed,
				"Login failed with error: %s. Possible causes include insufficient permissions, expired credentials, or misconfiguration. Please verify your permissions and credentials, then try again.",
				providerError),
		}
	}

	if query.Get("state") != s.opts.ExpectedState {
		writeHTML(w, http.StatusBadRequest, RenderPage(invalidStateTitle, invalidStateContent, true))
		return Result{
			Outcome: OutcomeError,
			Err:     errUtils.Coded(errUtils.ErrLoginStateMismatch, prefix+errUtils.SuffixLoginStateMismatch, "State mismatch"),
		}
	}

	if code := query.Get("code"); code != "" {
		writeHTML(w, http.StatusOK, RenderPage(s.opts.SuccessTitle, s.opts.SuccessContent, false))
		return Result{Outcome: OutcomeCode, Code: code}
	}

	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte("Missing code"))
	return Result{
		Outcome: OutcomeError,
		Err:     errUtils.Coded(errUtils.ErrLoginMissingCode, prefix+errUtils.SuffixLoginMissingCode, "Missing authorization code"),
	}
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
