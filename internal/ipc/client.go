package ipc

import (
	"net"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
)

// Client sends one framed request per connection, matching the server's
// connection lifecycle.
type Client struct {
	path    string
	timeout time.Duration
}

// NewClient creates a client for the daemon's control socket
func NewClient(path string) *Client {
	if path == "" {
		path = DefaultSocketPath
	}
	return &Client{path: path, timeout: 10 * time.Second}
}

// Send dials the daemon, writes one request and reads one response.
func (c *Client) Send(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return nil, errors.Newf(errors.KindProtocol,
			"cannot connect to daemon at %s (is it running?): %v", c.path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	payload, err := MarshalRequest(req)
	if err != nil {
		return nil, errors.Newf(errors.KindProtocol, "failed to serialize request: %v", err)
	}
	if err := WriteFrame(conn, payload); err != nil {
		return nil, err
	}

	data, err := ReadFrame(conn)
	if err != nil {
		return nil, err
	}
	return UnmarshalResponse(data)
}

// SendNoReply writes one request and does not wait for a response, used
// for Shutdown where the daemon exits without replying.
func (c *Client) SendNoReply(req Request) error {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return errors.Newf(errors.KindProtocol,
			"cannot connect to daemon at %s (is it running?): %v", c.path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	payload, err := MarshalRequest(req)
	if err != nil {
		return errors.Newf(errors.KindProtocol, "failed to serialize request: %v", err)
	}
	return WriteFrame(conn, payload)
}
