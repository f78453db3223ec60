// Package measure tracks the per-round throughput and delivery latency of
// a running node and writes them to an eval file on shutdown, the same
// shape the original sequencer produced so existing plotting scripts keep
// working.
package measure

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

// MeasureDs accumulates send/receive byte counts per round and the
// latency between a round's start and its delivery.
type MeasureDs struct {
	mu sync.Mutex

	// runID identifies this process invocation in the eval file header,
	// so runs of the same node across restarts don't get confused with
	// one another when eval files are collected centrally.
	runID string

	totalSent []int
	totalRecv []int
	bytesSent int
	bytesRecv int

	roundStart     []time.Time
	deliverLatency []int64 // milliseconds; meaningful only where delivered[i] is true
	delivered      []bool

	sentCounter    prometheus.Counter
	recvCounter    prometheus.Counter
	latencyHistVec prometheus.Histogram
}

// New returns an empty MeasureDs. If registry is non-nil, byte and latency
// counters are registered on it under the bftseq_sequencer namespace.
func New(registry *prometheus.Registry) *MeasureDs {
	m := &MeasureDs{runID: uuid.New().String()}
	if registry == nil {
		return m
	}
	m.sentCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bftseq",
		Subsystem: "sequencer",
		Name:      "bytes_sent_total",
		Help:      "Total bytes sent to peers.",
	})
	m.recvCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bftseq",
		Subsystem: "sequencer",
		Name:      "bytes_received_total",
		Help:      "Total bytes received from peers.",
	})
	m.latencyHistVec = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bftseq",
		Subsystem: "sequencer",
		Name:      "round_delivery_latency_ms",
		Help:      "Delivery latency of own rounds, in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	})
	registry.MustRegister(m.sentCounter, m.recvCounter, m.latencyHistVec)
	return m
}

// IncrBytesSent adds n to the current round's sent-byte tally.
func (m *MeasureDs) IncrBytesSent(n int) {
	m.mu.Lock()
	m.bytesSent += n
	m.mu.Unlock()
	if m.sentCounter != nil {
		m.sentCounter.Add(float64(n))
	}
}

// IncrBytesRecv adds n to the current round's received-byte tally.
func (m *MeasureDs) IncrBytesRecv(n int) {
	m.mu.Lock()
	m.bytesRecv += n
	m.mu.Unlock()
	if m.recvCounter != nil {
		m.recvCounter.Add(float64(n))
	}
}

// AppendRound closes out the current round's byte tallies into the
// per-round history and stamps its start time, to be called once as each
// new round is proposed.
func (m *MeasureDs) AppendRound() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalSent = append(m.totalSent, m.bytesSent)
	m.bytesSent = 0
	m.totalRecv = append(m.totalRecv, m.bytesRecv)
	m.bytesRecv = 0
	m.roundStart = append(m.roundStart, time.Now())
}

// MeasureLatency records the elapsed time since round's start as its
// delivery latency.
func (m *MeasureDs) MeasureLatency(round int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.growLatencyLocked(round)
	if round >= len(m.roundStart) {
		return
	}
	latency := time.Since(m.roundStart[round]).Milliseconds()
	m.deliverLatency[round] = latency
	m.delivered[round] = true
	if m.latencyHistVec != nil {
		m.latencyHistVec.Observe(float64(latency))
	}
}

func (m *MeasureDs) growLatencyLocked(round int) {
	for len(m.deliverLatency) <= round {
		m.deliverLatency = append(m.deliverLatency, 0)
		m.delivered = append(m.delivered, false)
	}
}

// WriteMeasurements writes the per-round history to filename in the
// `r{round:03}: {latency|INF} {sent} {recv}` line format, one line per
// round this node has proposed.
func (m *MeasureDs) WriteMeasurements(filename string, nodeInd, numNodes uint32, payloadSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.Create(filename)
	if err != nil {
		return xerrors.Errorf("measure: create eval file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "index: %d, node_num: %d, payload_size: %d, run_id: %s\n", nodeInd, numNodes, payloadSize, m.runID); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, "deliver_latency(ms) total_sent(byte) total_recv(byte)"); err != nil {
		return err
	}
	for i := range m.totalSent {
		if i < len(m.deliverLatency) && m.delivered[i] {
			if _, err := fmt.Fprintf(f, "r%03d: %d %d %d\n", i, m.deliverLatency[i], m.totalSent[i], m.totalRecv[i]); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(f, "r%03d: INF %d %d\n", i, m.totalSent[i], m.totalRecv[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
