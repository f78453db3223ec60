package transport

import (
	"net"
	"sync"

	"github.com/drand/bftseq/log"
)

// Cast is a send request: either a Dest-addressed unicast, or a multicast
// to every peer when Dest is empty.
type Cast struct {
	Dest    string // empty means multicast to all peers
	Payload []byte
}

// Sender owns one lazily-dialed, persistent outbound connection per peer
// address. Only the connection map is locked; writes are not, so
// concurrent Send calls to the same peer can interleave frames.
type Sender struct {
	log   log.Logger
	peers []string

	mu    sync.Mutex
	conns map[string]net.Conn
}

// NewSender returns a Sender that multicasts to peers.
func NewSender(peers []string, logger log.Logger) *Sender {
	return &Sender{
		log:   logger.Named("sender"),
		peers: append([]string(nil), peers...),
		conns: make(map[string]net.Conn),
	}
}

// Send delivers cast: a unicast to cast.Dest, or a multicast to every peer
// if cast.Dest is empty. Per-peer dial/write failures are logged and
// skipped rather than aborting the whole multicast — a down peer must not
// stop delivery to the others.
func (s *Sender) Send(cast Cast) {
	if cast.Dest != "" {
		s.sendTo(cast.Dest, cast.Payload)
		return
	}
	for _, peer := range s.peers {
		s.sendTo(peer, cast.Payload)
	}
}

func (s *Sender) sendTo(addr string, payload []byte) {
	conn, err := s.connFor(addr)
	if err != nil {
		s.log.Warn("msg=", "dial failed", "addr=", addr, "err=", err)
		return
	}
	if err := WriteFrame(conn, payload); err != nil {
		s.log.Warn("msg=", "write failed, dropping connection", "addr=", addr, "err=", err)
		s.dropConn(addr)
	}
}

func (s *Sender) connFor(addr string) (net.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conn, ok := s.conns[addr]; ok {
		return conn, nil
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.conns[addr] = conn
	return conn, nil
}

func (s *Sender) dropConn(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn, ok := s.conns[addr]; ok {
		conn.Close()
		delete(s.conns, addr)
	}
}

// Close closes every outbound connection.
func (s *Sender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for addr, conn := range s.conns {
		conn.Close()
		delete(s.conns, addr)
	}
}
