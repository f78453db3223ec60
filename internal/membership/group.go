// Package membership describes the fixed set of nodes participating in a
// round of consistent broadcast: their addresses, their indices, and the
// quorum thresholds derived from n = 3f+1.
package membership

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Identity is one node's position and network address within the group.
type Identity struct {
	Index   uint32
	Address string
}

// Group is the static list of participants for this run, ordered by index
// as read from the configuration file.
type Group struct {
	Nodes []Identity
	Self  uint32
}

// NewGroup builds a Group from an ordered address book and validates that
// self is a valid index into it.
func NewGroup(addresses []string, self uint32) (*Group, error) {
	if len(addresses) == 0 {
		return nil, xerrors.New("membership: empty address book")
	}
	if self >= uint32(len(addresses)) {
		return nil, xerrors.Errorf("membership: node index %d out of range for %d nodes", self, len(addresses))
	}
	nodes := make([]Identity, len(addresses))
	for i, addr := range addresses {
		nodes[i] = Identity{Index: uint32(i), Address: addr}
	}
	return &Group{Nodes: nodes, Self: self}, nil
}

// Len returns the number of nodes in the group.
func (g *Group) Len() int {
	return len(g.Nodes)
}

// F is the maximum number of Byzantine nodes this group tolerates, derived
// from n = 3f+1. For a single-node group f is 0.
func (g *Group) F() int {
	return (g.Len() - 1) / 3
}

// Quorum is the 2f+1 threshold used for both the ECHO and SUP stages.
func (g *Group) Quorum() int {
	return 2*g.F() + 1
}

// Identity returns the Identity at index i.
func (g *Group) Identity(i uint32) (Identity, bool) {
	if int(i) >= len(g.Nodes) {
		return Identity{}, false
	}
	return g.Nodes[i], true
}

// Peers returns every identity other than Self.
func (g *Group) Peers() []Identity {
	out := make([]Identity, 0, len(g.Nodes)-1)
	for _, n := range g.Nodes {
		if n.Index != g.Self {
			out = append(out, n)
		}
	}
	return out
}

func (g *Group) String() string {
	return fmt.Sprintf("Group{n=%d, f=%d, quorum=%d, self=%d}", g.Len(), g.F(), g.Quorum(), g.Self)
}
