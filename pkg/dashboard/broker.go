//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=broker.go -destination=mock_broker.go -package=dashboard

package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

const (
	brokerPath       = "/login/broker"
	brokerHandshake  = 30 * time.Second
	brokerCloseGrace = time.Second

	eventReady     = "ready"
	eventFulfilled = "fulfilled"
)

// LoginData is the user session produced by a browser login.
type LoginData struct {
	ID           string
	Name         string
	Email        string
	Username     string
	UserUID      string
	RefreshToken string
	AccessToken  string
	IDToken      string
	// ExpiresAt is in unix milliseconds.
	ExpiresAt int64
}

// UserID returns the id the session is saved under.
func (d *LoginData) UserID() string {
	if d.UserUID != "" {
		return d.UserUID
	}
	return d.ID
}

// LoginBroker starts browser logins over the backend WebSocket broker.
type LoginBroker interface {
	// Start opens a broker connection and returns the pending login once the URL is known.
	Start(ctx context.Context) (Login, error)
}

// Login is a browser login in progress.
type Login interface {
	// URL is the dashboard page the user must open.
	URL() string
	// Wait blocks until the user finishes in the browser.
	Wait(ctx context.Context) (*LoginData, error)
	// Close abandons the login.
	Close()
}

// PendingLogin implements Login over a broker connection.
type PendingLogin struct {
	url     string
	conn    *websocket.Conn
	result  chan loginResult
	closeMu sync.Once
}

type loginResult struct {
	data *LoginData
	err  error
}

// URL implements Login.
func (p *PendingLogin) URL() string {
	return p.url
}

// Wait blocks until the browser login completes or ctx is done.
func (p *PendingLogin) Wait(ctx context.Context) (*LoginData, error) {
	defer p.Close()
	select {
	case res := <-p.result:
		return res.data, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoginBroker, ctx.Err())
	}
}

// Close tears down the broker connection. It is safe to call more than once.
func (p *PendingLogin) Close() {
	p.closeMu.Do(func() {
		deadline := time.Now().Add(brokerCloseGrace)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = p.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = p.conn.Close()
	})
}

// WebSocketBroker implements LoginBroker with gorilla/websocket.
type WebSocketBroker struct {
	coreURL      string
	dashboardURL string
	dialer       *websocket.Dialer
	now          func() time.Time
}

// BrokerOption configures a WebSocketBroker.
type BrokerOption func(*WebSocketBroker)

// WithDialer replaces the WebSocket dialer.
func WithDialer(d *websocket.Dialer) BrokerOption {
	return func(b *WebSocketBroker) {
		b.dialer = d
	}
}

// WithBrokerClock replaces time.Now.
func WithBrokerClock(now func() time.Time) BrokerOption {
	return func(b *WebSocketBroker) {
		b.now = now
	}
}

// NewWebSocketBroker returns a broker for the given backend and dashboard base URLs.
func NewWebSocketBroker(coreURL, dashboardURL string, opts ...BrokerOption) *WebSocketBroker {
	b := &WebSocketBroker{
		coreURL:      strings.TrimRight(coreURL, "/"),
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: brokerHandshake,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BrokerURL returns the WebSocket URL of the login broker.
func (b *WebSocketBroker) BrokerURL() (string, error) {
	u, err := url.Parse(b.coreURL + brokerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUtils.ErrLoginBroker, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// Start implements LoginBroker.
func (b *WebSocketBroker) Start(ctx context.Context) (Login, error) {
	brokerURL, err := b.BrokerURL()
	if err != nil {
		return nil, err
	}

	conn, resp, err := b.dialer.DialContext(ctx, brokerURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %w", errUtils.ErrLoginBroker, brokerURL, err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"login"}`)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoginBroker, err)
	}

	pending := &PendingLogin{conn: conn, result: make(chan loginResult, 1)}
	ready := make(chan string, 1)
	go b.readLoop(pending, ready)

	select {
	case transactionID := <-ready:
		query := url.Values{"client": {"cli"}, "transactionId": {transactionID}}
		pending.url = b.dashboardURL + "?" + query.Encode()
		log.Debug("Login broker ready", "url", pending.url)
		return pending, nil
	case res := <-pending.result:
		pending.Close()
		if res.err == nil {
			res.err = fmt.Errorf("%w: login completed before it started", errUtils.ErrUnexpectedBrokerMessage)
		}
		return nil, res.err
	case <-ctx.Done():
		pending.Close()
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoginBroker, ctx.Err())
	}
}

// readLoop dispatches broker events until the login is fulfilled or fails.
func (b *WebSocketBroker) readLoop(p *PendingLogin, ready chan<- string) {
	for {
		_, message, err := p.conn.ReadMessage()
		if err != nil {
			p.result <- loginResult{err: fmt.Errorf("%w: %w", errUtils.ErrLoginBroker, err)}
			return
		}

		event := gjson.GetBytes(message, "event").String()
		switch event {
		case eventReady:
			select {
			case ready <- gjson.GetBytes(message, "transactionId").String():
			default:
			}
		case eventFulfilled:
			data, err := b.sanitize(message)
			p.result <- loginResult{data: data, err: err}
			return
		default:
			p.result <- loginResult{err: fmt.Errorf("%w: %q", errUtils.ErrUnexpectedBrokerMessage, event)}
			return
		}
	}
}

// sanitize turns a fulfilled event into LoginData using the unverified id token claims.
func (b *WebSocketBroker) sanitize(message []byte) (*LoginData, error) {
	msg := gjson.ParseBytes(message)
	idToken := msg.Get("id_token").String()

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("%w: decoding id token: %w", errUtils.ErrUnexpectedBrokerMessage, err)
	}
	claim := func(name string) string {
		s, _ := claims[name].(string)
		return s
	}

	data := &LoginData{
		ID:           claim("tracking_id"),
		Name:         claim("name"),
		Email:        claim("email"),
		Username:     msg.Get("username").String(),
		UserUID:      msg.Get("user_uid").String(),
		RefreshToken: msg.Get("refresh_token").String(),
		AccessToken:  msg.Get("access_token").String(),
		IDToken:      idToken,
		ExpiresAt:    msg.Get("expires_at").Int(),
	}
	if data.ID == "" {
		data.ID = claim("sub")
	}
	if expiresIn := msg.Get("expires_in").Int(); expiresIn > 0 {
		data.ExpiresAt = b.now().UnixMilli() + expiresIn
	}
	return data, nil
}

// IDTokenExpired reports whether the exp claim of idToken has elapsed. Undecodable tokens count as expired.
func IDTokenExpired(idToken string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !exp.After(now)
}
