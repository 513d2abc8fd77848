package server

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pengelbrecht/calc/internal/calculator"
)

// DefaultURL is the websocket endpoint of a server on DefaultAddr.
const DefaultURL = "ws://" + DefaultAddr + "/ws"

// Client evaluates operations on a remote server over one websocket.
// Calls are serialised; a Client is safe for concurrent use.
type Client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	nextID int64
}

// Dial connects to the websocket endpoint at url.
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s (status %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Eval sends one operation and waits for the answer.
// Remote evaluation errors are returned as *RemoteError, which unwraps to
// the matching calculator sentinel.
func (c *Client) Eval(ctx context.Context, op calculator.Op, a, b float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := Request{
		ID: strconv.FormatInt(c.nextID, 10),
		Op: op.String(),
		A:  a,
		B:  b,
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	c.conn.SetWriteDeadline(deadline)
	c.conn.SetReadDeadline(deadline)

	if err := c.conn.WriteJSON(req); err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := c.conn.ReadJSON(&resp); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.ID != req.ID {
		return 0, fmt.Errorf("response id %q does not match request %q", resp.ID, req.ID)
	}
	return resp.Value()
}

// Close sends a normal close frame and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
