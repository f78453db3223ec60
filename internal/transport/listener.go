package transport

import (
	"net"
	"sync"

	"github.com/drand/bftseq/log"
)

// Listener accepts inbound TCP connections and forwards every frame
// received on any of them to a single channel, mirroring the original
// receiver task that fans every peer connection into one inbound queue.
type Listener struct {
	lis    net.Listener
	log    log.Logger
	inbox  chan []byte
	wg     sync.WaitGroup
	closed chan struct{}
}

// Listen binds bindingAddr and returns a Listener whose Inbox channel
// receives the payload of every frame any peer sends it. Call Serve to
// start accepting connections.
func Listen(bindingAddr string, logger log.Logger, inboxCapacity int) (*Listener, error) {
	lis, err := net.Listen("tcp", bindingAddr)
	if err != nil {
		return nil, err
	}
	return &Listener{
		lis:    lis,
		log:    logger.Named("listener"),
		inbox:  make(chan []byte, inboxCapacity),
		closed: make(chan struct{}),
	}, nil
}

// Inbox is the channel carrying received frame payloads.
func (l *Listener) Inbox() <-chan []byte {
	return l.inbox
}

// Addr returns the address the listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.lis.Addr()
}

// Serve accepts connections until Close is called. Run it in its own
// goroutine; it returns once the listener is closed.
func (l *Listener) Serve() {
	for {
		conn, err := l.lis.Accept()
		if err != nil {
			select {
			case <-l.closed:
				return
			default:
				l.log.Warn("msg=", "accept failed", "err=", err)
				return
			}
		}
		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	remote := conn.RemoteAddr()
	for {
		payload, err := ReadFrame(conn)
		if err != nil {
			l.log.Debug("msg=", "connection closed", "remote=", remote, "err=", err)
			return
		}
		select {
		case l.inbox <- payload:
		case <-l.closed:
			return
		}
	}
}

// Close stops accepting new connections and waits for in-flight handlers
// to drain.
func (l *Listener) Close() error {
	close(l.closed)
	err := l.lis.Close()
	l.wg.Wait()
	return err
}
