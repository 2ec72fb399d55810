package ipc

import (
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSocketPath is the well-known control channel endpoint.
const DefaultSocketPath = "/tmp/kbd-backlight-daemon.sock"

// Handler processes one decoded request and returns the response to
// send back. A nil response means no response is written (Shutdown).
type Handler func(req Request) Response

// Server accepts control-channel connections on a Unix socket and
// serves exactly one request/response exchange per connection.
type Server struct {
	path     string
	listener net.Listener
	logger   *logger.Logger
}

// NewServer binds the control socket, removing a stale endpoint left by
// a previous crashed instance.
func NewServer(path string, log *logger.Logger) (*Server, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Newf(errors.KindStartup, "failed to create socket directory: %v", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return nil, errors.Newf(errors.KindStartup, "failed to remove stale socket: %v", err)
		}
		log.WithField("socket", path).Warn("Removed stale control socket")
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, errors.Newf(errors.KindStartup, "failed to bind control socket %s: %v", path, err)
	}

	log.WithField("socket", path).Info("Control channel listening")
	return &Server{path: path, listener: listener, logger: log}, nil
}

// Connections accepts in a background goroutine and delivers each
// connection over the returned channel; the channel closes when the
// listener shuts down.
func (s *Server) Connections() <-chan net.Conn {
	conns := make(chan net.Conn)
	go func() {
		defer close(conns)
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				// Listener closed during shutdown.
				return
			}
			conns <- conn
		}
	}()
	return conns
}

// Serve runs one request/response exchange on an accepted connection.
// Protocol errors are answered with an Error response when the framing
// still permits a write, then the connection is closed.
func (s *Server) Serve(conn net.Conn, handle Handler) {
	defer conn.Close()

	connID := uuid.New().String()[:8]
	log := s.logger.WithField("conn_id", connID)

	// Serve runs on the event loop, so a slow client must not stall
	// ticks: the request read is bounded tightly, the response write a
	// little looser.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	payload, err := ReadFrame(conn)
	if err != nil {
		log.WithError(err).Warn("Rejected control connection")
		if resp, merr := MarshalResponse(Error{Message: err.Error()}); merr == nil {
			WriteFrame(conn, resp)
		}
		return
	}

	req, err := UnmarshalRequest(payload)
	if err != nil {
		log.WithError(err).Warn("Rejected malformed request")
		if resp, merr := MarshalResponse(Error{Message: err.Error()}); merr == nil {
			WriteFrame(conn, resp)
		}
		return
	}

	log.WithField("request", req.requestType()).Debug("Handling control request")

	resp := handle(req)
	if resp == nil {
		return
	}

	data, err := MarshalResponse(resp)
	if err != nil {
		log.WithError(err).Error("Failed to serialize response")
		return
	}
	if err := WriteFrame(conn, data); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

// Close shuts the listener down and removes the socket file
func (s *Server) Close() error {
	err := s.listener.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) {
		s.logger.WithFields(logrus.Fields{"socket": s.path}).WithError(rmErr).Warn("Failed to remove socket file")
	}
	return err
}
