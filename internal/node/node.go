// Package node wires together membership, state, transport, and the wire
// codec into the running consistent-broadcast protocol: a dispatcher that
// fans inbound frames out to short-lived handler goroutines, a sender
// task that serializes outbound frames, and a periodic proposer that
// starts a new round once warm-up has elapsed.
package node

import (
	"crypto/sha256"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"

	"github.com/drand/bftseq/internal/crypto"
	"github.com/drand/bftseq/internal/measure"
	"github.com/drand/bftseq/internal/membership"
	"github.com/drand/bftseq/internal/state"
	"github.com/drand/bftseq/internal/transport"
	"github.com/drand/bftseq/internal/wire"
	"github.com/drand/bftseq/log"
)

// Config carries everything a Node needs to start a round on a given
// address book.
type Config struct {
	Group         *membership.Group
	PayloadSize   int
	Warmup        time.Duration
	RoundInterval time.Duration
	InboxCapacity int
	CastCapacity  int
	Clock         clockwork.Clock
	Registry      *prometheus.Registry
	Logger        log.Logger
}

// Node runs one participant of the protocol.
type Node struct {
	cfg      Config
	log      log.Logger
	group    *membership.Group
	keypair  *crypto.KeyPair
	peerKeys *membership.PeerKeys

	payloads  *state.ByteGrid
	hashes    *state.ByteGrid
	echoes    *state.EchoCollector
	sentEcho  *state.BoolGrid
	sentFin   *state.BoolGrid
	sentSup   *state.BoolGrid
	delivered *state.BoolGrid
	supCount  *state.CountGrid

	listener *transport.Listener
	sender   *transport.Sender
	castCh   chan transport.Cast

	measure *measure.MeasureDs

	clock clockwork.Clock

	shutdownCh chan struct{}
}

// New builds a Node bound to its own address in cfg.Group, generating a
// fresh Ed25519 key pair.
func New(cfg Config) (*Node, error) {
	self, ok := cfg.Group.Identity(cfg.Group.Self)
	if !ok {
		return nil, xerrors.New("node: self identity not found in group")
	}

	kp, err := crypto.NewKeyPair()
	if err != nil {
		return nil, xerrors.Errorf("node: generate key pair: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	logger = logger.Named("node").With("index=", cfg.Group.Self)

	lis, err := transport.Listen(self.Address, logger, cfg.InboxCapacity)
	if err != nil {
		return nil, xerrors.Errorf("node: listen on %s: %w", self.Address, err)
	}

	peerAddrs := make([]string, 0, len(cfg.Group.Peers()))
	for _, p := range cfg.Group.Peers() {
		peerAddrs = append(peerAddrs, p.Address)
	}

	n := &Node{
		cfg:       cfg,
		log:       logger,
		group:     cfg.Group,
		keypair:   kp,
		peerKeys:  membership.NewPeerKeys(logger),
		payloads:  state.NewByteGrid(cfg.Group.Len()),
		hashes:    state.NewByteGrid(cfg.Group.Len()),
		echoes:    state.NewEchoCollector(),
		sentEcho:  state.NewBoolGrid(cfg.Group.Len()),
		sentFin:   state.NewBoolGrid(1),
		sentSup:   state.NewBoolGrid(cfg.Group.Len()),
		delivered: state.NewBoolGrid(cfg.Group.Len()),
		supCount:  state.NewCountGrid(cfg.Group.Len()),
		listener:  lis,
		sender:    transport.NewSender(peerAddrs, logger),
		castCh:    make(chan transport.Cast, cfg.CastCapacity),
		measure:   measure.New(cfg.Registry),
		clock:     cfg.Clock,
		shutdownCh: make(chan struct{}),
	}
	if n.clock == nil {
		n.clock = clockwork.NewRealClock()
	}
	return n, nil
}

// Start launches every long-lived goroutine: the connection acceptor, the
// dispatcher, the sender task, and the periodic proposer. It returns once
// all tasks are spawned; call Shutdown to stop them.
func (n *Node) Start() {
	go n.listener.Serve()
	go n.dispatchLoop()
	go n.senderTask()
	go n.proposerTask()

	n.multicast(wire.NewSyn(n.group.Self, n.keypair.Public()))
}

// Shutdown stops accepting connections and writes the final measurement
// file, mirroring the brief grace period the original process gave
// in-flight tasks before exiting. Closing the listener and writing the
// measurement file are independent failures, so both are attempted and
// reported together rather than one masking the other.
func (n *Node) Shutdown(evalPath string) error {
	close(n.shutdownCh)
	n.clock.Sleep(time.Second)

	var result *multierror.Error
	if err := n.listener.Close(); err != nil {
		result = multierror.Append(result, xerrors.Errorf("close listener: %w", err))
	}
	n.sender.Close()
	if err := n.measure.WriteMeasurements(evalPath, n.group.Self, uint32(n.group.Len()), n.cfg.PayloadSize); err != nil {
		result = multierror.Append(result, xerrors.Errorf("write measurements: %w", err))
	}
	return result.ErrorOrNil()
}

func digestOf(payload []byte) [32]byte {
	return sha256.Sum256(payload)
}
