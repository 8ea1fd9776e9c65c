package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loyalty/backend/internal/application/session"
)

// ErrPeerClosed is returned by Send after the peer has been closed.
var ErrPeerClosed = errors.New("ws: peer closed")

// Peer wraps a websocket connection behind the coordinator's Peer
// interface. Writes are serialized with a mutex because the coordinator
// and the ping loop may both send concurrently.
type Peer struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newPeer(conn *websocket.Conn, writeTimeout time.Duration) *Peer {
	return &Peer{conn: conn, writeTimeout: writeTimeout}
}

// Send marshals msg to JSON and writes it under the write deadline.
func (p *Peer) Send(msg session.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPeerClosed
	}
	if err := p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout)); err != nil {
		return err
	}
	return p.conn.WriteJSON(msg)
}

// Close sends a close frame on a best-effort basis and tears down the
// connection. Safe to call more than once.
func (p *Peer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	deadline := time.Now().Add(p.writeTimeout)
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return p.conn.Close()
}

// ping writes a ping control frame. Control frames are exempt from the
// write mutex per the gorilla concurrency contract.
func (p *Peer) ping() error {
	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(p.writeTimeout))
}
