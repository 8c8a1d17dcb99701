// Package ledger implements the WebSocket client for a ledger node: it
// submits signed transactions, queries validated outcomes and looks up
// issuer transfer rates.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/gorilla/websocket"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/singleflight"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/codec"
	"github.com/ledgerwallet/wallet-engine/pkg/log"
)

var (
	// ErrNotFound means the ledger has no record of the queried object yet.
	ErrNotFound = errors.New("not found on the ledger")
	// ErrClosed means the client connection is gone.
	ErrClosed = errors.New("client is closed")
)

// TransportError wraps a failure occurring before the node confirmed
// anything. Whether the request reached the node is unknown, so callers
// must not assume either way.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClientConfig holds connection tuning. Zero values fall back to defaults.
type ClientConfig struct {
	URL             string        `json:"url"`
	RequestTimeout  time.Duration `json:"requestTimeout"`
	RequestsPerSec  int           `json:"requestsPerSec"`
	RateCacheExpiry time.Duration `json:"rateCacheExpiry"`
}

func (c *ClientConfig) SetDefault() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.RequestsPerSec == 0 {
		c.RequestsPerSec = 20
	}
	if c.RateCacheExpiry == 0 {
		c.RateCacheExpiry = 5 * time.Minute
	}
}

type wsRequest map[string]interface{}

type wsResponse struct {
	ID           int             `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	ErrorCode    string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

// Client is a request-response WebSocket connection to one ledger node.
// Safe for concurrent use; outbound requests share one rate limiter.
type Client struct {
	logger  log.Logger
	config  *ClientConfig
	conn    *websocket.Conn
	limiter ratelimit.Limiter

	writeMutex sync.Mutex

	pendingMutex sync.Mutex
	pending      map[int]chan *wsResponse
	nextID       int

	rateCache *gocache.Cache
	rateGroup singleflight.Group

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to the node and starts the read pump.
func Dial(ctx context.Context, cfg *ClientConfig, logger log.Logger) (*Client, error) {
	config := cfg
	if config == nil {
		config = &ClientConfig{}
	}
	config.SetDefault()
	if config.URL == "" {
		return nil, errors.New("node URL is required")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.URL, nil)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	client := &Client{
		logger:    logger,
		config:    config,
		conn:      conn,
		limiter:   ratelimit.New(config.RequestsPerSec),
		pending:   make(map[int]chan *wsResponse),
		rateCache: gocache.New(config.RateCacheExpiry, 2*config.RateCacheExpiry),
		closed:    make(chan struct{}),
	}
	go client.readPump()
	return client, nil
}

// Close tears down the connection. Pending calls fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
		c.pendingMutex.Lock()
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.pendingMutex.Unlock()
	})
	return err
}

func (c *Client) readPump() {
	for {
		resp := &wsResponse{}
		if err := c.conn.ReadJSON(resp); err != nil {
			select {
			case <-c.closed:
			default:
				c.logger.Errorf("Connection read failed with %v", err)
				c.Close()
			}
			return
		}
		c.pendingMutex.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMutex.Unlock()
		if !ok {
			c.logger.Debugf("Dropping response with unknown id %d", resp.ID)
			continue
		}
		ch <- resp
	}
}

// call performs one correlated request-response round trip.
func (c *Client) call(ctx context.Context, command string, params wsRequest) (json.RawMessage, error) {
	select {
	case <-c.closed:
		return nil, &TransportError{Op: command, Err: ErrClosed}
	default:
	}
	c.limiter.Take()

	c.pendingMutex.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan *wsResponse, 1)
	c.pending[id] = ch
	c.pendingMutex.Unlock()

	req := wsRequest{"id": id, "command": command}
	for key, value := range params {
		req[key] = value
	}

	c.writeMutex.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMutex.Unlock()
	if err != nil {
		c.dropPending(id)
		return nil, &TransportError{Op: command, Err: err}
	}

	timer := time.NewTimer(c.config.RequestTimeout)
	defer timer.Stop()
	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, &TransportError{Op: command, Err: ErrClosed}
		}
		if resp.Status == "error" {
			return nil, &nodeError{Command: command, Code: resp.ErrorCode, Message: resp.ErrorMessage}
		}
		return resp.Result, nil
	case <-timer.C:
		c.dropPending(id)
		return nil, &TransportError{Op: command, Err: errors.New("request timed out")}
	case <-ctx.Done():
		c.dropPending(id)
		return nil, &TransportError{Op: command, Err: ctx.Err()}
	case <-c.closed:
		return nil, &TransportError{Op: command, Err: ErrClosed}
	}
}

func (c *Client) dropPending(id int) {
	c.pendingMutex.Lock()
	delete(c.pending, id)
	c.pendingMutex.Unlock()
}

// nodeError is an application level rejection reported by the node itself,
// distinct from a transport failure.
type nodeError struct {
	Command string
	Code    string
	Message string
}

func (e *nodeError) Error() string {
	return fmt.Sprintf("node rejected %s with %s: %s", e.Command, e.Code, e.Message)
}

// transfer rate lookups are cached and deduplicated; every flow validating
// an issued amount asks for the same handful of issuers.

// TransferRate returns the issuer's configured transfer rate, zero when the
// issuer charges none.
func (c *Client) TransferRate(ctx context.Context, issuer codec.Address) (amount.TransferRate, error) {
	if cached, ok := c.rateCache.Get(issuer.String()); ok {
		return cached.(amount.TransferRate), nil
	}
	rate, err, _ := c.rateGroup.Do(issuer.String(), func() (interface{}, error) {
		info, err := c.AccountInfo(ctx, issuer)
		if err != nil {
			return amount.TransferRate(0), err
		}
		c.rateCache.Set(issuer.String(), info.TransferRate, gocache.DefaultExpiration)
		return info.TransferRate, nil
	})
	if err != nil {
		return 0, err
	}
	return rate.(amount.TransferRate), nil
}
