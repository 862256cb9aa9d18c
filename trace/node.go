package trace

import (
	"math/rand"
)

// route is what a relay remembers about one forward it passed on: where it came
// from, where it went, and the secret it blinded the value with.
type route struct {
	sID    int
	sNonce uint64
	tID    int
	tNonce uint64
	bGX    uint64
	key    uint64
}

// Node runs the cycle tracing protocol for one vertex of the graph. A node is
// driven by a single goroutine.
type Node struct {
	ID  int
	out []int
	grp Group
	rng *rand.Rand

	keys map[uint64]struct{}
	// secret exponent of every probe this node started, by nonce; first wins
	init map[uint64]uint64
	// routes in creation order, and the first route per outgoing nonce
	routes  []route
	byNonce map[uint64]int
}

func NewNode(id int, out []int, grp Group, rng *rand.Rand) *Node {
	return &Node{
		ID:      id,
		out:     out,
		grp:     grp,
		rng:     rng,
		keys:    make(map[uint64]struct{}),
		init:    make(map[uint64]uint64),
		byNonce: make(map[uint64]int),
	}
}

// NewNodes builds one node per vertex of g. All nodes draw from rng.
func NewNodes(g *Graph, grp Group, rng *rand.Rand) []*Node {
	nodes := make([]*Node, g.Len())
	for i := range nodes {
		nodes[i] = NewNode(i, g.Out[i], grp, rng)
	}
	return nodes
}

// secrets and nonces are both random group elements
func (n *Node) random() uint64 {
	return n.grp.Random(n.rng)
}

// Initiate starts a probe for cycles of up to l hops: one forward per
// neighbour, each under its own secret and nonce.
func (n *Node) Initiate(l int) []Message {
	msgs := make([]Message, 0, len(n.out))
	for _, t := range n.out {
		x, r := n.random(), n.random()
		if _, ok := n.init[r]; !ok {
			n.init[r] = x
		}
		msgs = append(msgs, Message{Type: Forward, Source: n.ID, Target: t, R: r, GX: n.grp.Exp(n.grp.G, x), TTL: l - 1})
	}
	return msgs
}

// Forward handles a probe: remember the shared key, echo a fresh blinded value
// back, and relay the probe to every neighbour while its TTL lasts.
func (n *Node) Forward(m Message) []Message {
	y := n.random()
	n.keys[n.grp.Exp(m.GX, y)] = struct{}{}
	msgs := []Message{{Type: Echo, Source: n.ID, Target: m.Source, R: m.R, GX: n.grp.Exp(n.grp.G, y)}}
	if m.TTL == 0 {
		return msgs
	}
	for _, t := range n.out {
		nonce, k := n.random(), n.random()
		n.routes = append(n.routes, route{
			sID: m.Source, sNonce: m.R,
			tID: t, tNonce: nonce,
			key: k,
		})
		if _, ok := n.byNonce[nonce]; !ok {
			n.byNonce[nonce] = len(n.routes) - 1
		}
		msgs = append(msgs, Message{Type: Forward, Source: n.ID, Target: t, R: nonce, GX: n.grp.Exp(m.GX, k), TTL: m.TTL - 1})
	}
	return msgs
}

// Echo handles a reply. At the node that started the probe, a derived key that
// was already seen as a forward proves the probe came back around, and the
// node starts publishing the path. Relays blind the value and pass it back.
func (n *Node) Echo(m Message) []Message {
	if x, ok := n.init[m.R]; ok {
		key := n.grp.Exp(m.GX, x)
		if _, seen := n.keys[key]; seen {
			return []Message{{Type: Publish, Source: n.ID, Target: m.Source, R: m.R, GX: m.GX, Path: []int{n.ID}}}
		}
		n.keys[key] = struct{}{}
		return nil
	}
	i, ok := n.byNonce[m.R]
	if !ok {
		return nil
	}
	rt := &n.routes[i]
	rt.bGX = m.GX
	return []Message{{Type: Echo, Source: n.ID, Target: rt.sID, R: rt.sNonce, GX: n.grp.Exp(m.GX, rt.key)}}
}

// Publish extends a traced path by this node. When the path is back at its
// first node the cycle is closed and broadcast; otherwise it follows every
// route whose blinded echo matches.
func (n *Node) Publish(m Message) []Message {
	path := make([]int, len(m.Path), len(m.Path)+1)
	copy(path, m.Path)
	path = append(path, n.ID)
	if len(m.Path) > 0 && m.Path[0] == n.ID {
		return []Message{{Type: Broadcast, Source: n.ID, Target: -1, Path: path}}
	}
	var msgs []Message
	for _, rt := range n.routes {
		if rt.sNonce == m.R && n.grp.Exp(rt.bGX, rt.key) == m.GX {
			msgs = append(msgs, Message{Type: Publish, Source: n.ID, Target: rt.tID, R: rt.tNonce, GX: rt.bGX, Path: path})
		}
	}
	return msgs
}
