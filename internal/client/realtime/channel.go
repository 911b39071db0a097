package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/poputchiki/internal/common"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

const DefaultURL = "ws://poputchiki.ru/api/realtime"

var (
	ErrAlreadyConnected   = errors.New("realtime channel already connected")
	ErrClosedWhileDialing = errors.New("realtime channel closed while connecting")
)

type State int

const (
	Closed State = iota
	Connecting
	Open
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return "closed"
	}
}

type Message struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

// Handler processes one frame. Handlers run on the read goroutine and must
// not call Close.
type Handler func(ctx context.Context, msg Message) error

type Options struct {
	URL    string
	Token  string
	Dialer *websocket.Dialer
	Logger logging.Logger
	// OnClose runs once when an open channel closes, for any reason.
	OnClose func()
}

type Channel struct {
	url     string
	token   string
	dialer  *websocket.Dialer
	log     logging.Logger
	onClose func()

	mu       sync.Mutex
	state    State
	shut     bool
	conn     *websocket.Conn
	done     chan struct{}
	handlers map[string]Handler
}

func New(opts Options) *Channel {
	c := &Channel{
		url:      opts.URL,
		token:    opts.Token,
		dialer:   opts.Dialer,
		log:      opts.Logger,
		onClose:  opts.OnClose,
		handlers: map[string]Handler{},
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.dialer == nil {
		c.dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		}
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	c.log = c.log.With("component", "realtime")
	return c
}

// Handle registers h for frames of the given type, replacing any earlier
// handler for it.
func (c *Channel) Handle(typ string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == nil {
		delete(c.handlers, typ)
		return
	}
	c.handlers[typ] = h
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) dialURL() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parse realtime url: %w", err)
	}
	if c.token != "" {
		q := u.Query()
		q.Set(common.TokenQueryParam, c.token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Connect dials the server. It is only valid from Closed, and never after
// Close.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.shut {
		c.mu.Unlock()
		return ErrClosedWhileDialing
	}
	if c.state != Closed {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = Connecting
	c.mu.Unlock()

	conn, err := c.dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.state == Connecting {
			c.state = Closed
		}
		c.log.Warn(ctx, "realtime connect failed", "error", err)
		return err
	}
	if c.state != Connecting {
		_ = conn.Close()
		return ErrClosedWhileDialing
	}

	c.state = Open
	c.conn = conn
	c.done = make(chan struct{})
	go c.readLoop(conn, c.done)
	c.log.Info(ctx, "realtime connected")
	return nil
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	target, err := c.dialURL()
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if c.token != "" {
		header.Add("Cookie", (&http.Cookie{Name: common.TokenCookieName, Value: c.token}).String())
	}
	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime handshake: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("realtime dial: %w", err)
	}
	return conn, nil
}

// Close moves the channel to Closed for good. Once it returns no handler
// runs again and Connect fails.
func (c *Channel) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	wasOpen := c.state == Open
	c.state = Closed
	c.shut = true
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := conn.Close()
	<-done
	if wasOpen {
		c.closed(context.Background(), nil)
	}
	return err
}

func (c *Channel) closed(ctx context.Context, cause error) {
	if cause != nil {
		c.log.Info(ctx, "realtime closed", "error", cause)
	} else {
		c.log.Info(ctx, "realtime closed")
	}
	if c.onClose != nil {
		c.onClose()
	}
}

func (c *Channel) current(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Open && c.conn == conn
}

func (c *Channel) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	ctx := context.Background()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			mine := c.conn == conn
			if mine {
				c.state = Closed
				c.conn = nil
			}
			c.mu.Unlock()
			if mine {
				_ = conn.Close()
				c.closed(ctx, err)
			}
			return
		}
		if !c.current(conn) {
			return
		}
		c.dispatch(ctx, data)
	}
}

func (c *Channel) dispatch(ctx context.Context, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		c.log.Warn(ctx, "dropping malformed frame", "error", err, "size", len(data))
		return
	}

	c.mu.Lock()
	h := c.handlers[msg.Type]
	c.mu.Unlock()
	if h == nil {
		c.log.Debug(ctx, "no handler for frame", "type", msg.Type)
		return
	}
	if err := h(ctx, msg); err != nil {
		c.log.Warn(ctx, "frame handler failed", "type", msg.Type, "error", err)
	}
}
