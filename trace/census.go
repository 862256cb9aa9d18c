// Package trace simulates a privacy-preserving cycle detection protocol on a
// directed graph. Every node probes its neighbourhood with blinded forwards;
// echoes carry the blinding back, and an initiator that recognises its own
// probe publishes the path, which is broadcast once it closes into a cycle.
package trace

import (
	"fmt"
	"time"
)

// Counts holds message totals indexed by MsgType.
type Counts [numMsgTypes]int

// Result summarises one census.
type Result struct {
	// distinct cycles in the global set after the census
	Cycles int
	// sum of the lengths of the cycles each initiator found
	CycleEdges int
	Messages   int
	Counts     Counts
	Runtime    time.Duration
}

func deliver(n *Node, m Message) []Message {
	switch m.Type {
	case Forward:
		return n.Forward(m)
	case Echo:
		return n.Echo(m)
	case Publish:
		return n.Publish(m)
	}
	return nil
}

// Census lets every node in turn look for cycles of up to l hops and merges what
// each finds into global. Each initiator's messages are drained before the next
// one starts.
func Census(nodes []*Node, l int, global CycleSet) (Result, error) {
	var res Result
	if l < 1 {
		return res, fmt.Errorf("cycle length must be at least 1, got %d", l)
	}
	start := time.Now()
	q := NewFIFO(len(nodes) * 4)
	for _, origin := range nodes {
		local := make(map[string]struct{})
		var order []string
		for _, m := range origin.Initiate(l) {
			q.Send(m)
		}
		q.Sync()
		for q.Len() > 0 {
			for {
				m, ok := q.Recv()
				if !ok {
					break
				}
				res.Messages++
				res.Counts[m.Type]++
				if m.Type == Broadcast {
					// the cycle reaches every node; nobody's state changes
					key := m.PathKey()
					if _, seen := local[key]; !seen {
						local[key] = struct{}{}
						order = append(order, key)
						res.CycleEdges += len(m.Path) - 1
					}
					continue
				}
				if m.Target < 0 || m.Target >= len(nodes) {
					return res, fmt.Errorf("%v message from node %d to unknown node %d", m.Type, m.Source, m.Target)
				}
				for _, out := range deliver(nodes[m.Target], m) {
					q.Send(out)
				}
			}
			q.Sync()
		}
		for _, key := range order {
			if _, err := global.Add(key); err != nil {
				return res, fmt.Errorf("recording cycle %q: %w", key, err)
			}
		}
	}
	res.Cycles = global.Len()
	res.Runtime = time.Since(start)
	return res, nil
}
