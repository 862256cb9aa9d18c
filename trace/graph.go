package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// Graph is a directed graph stored as out-adjacency lists indexed by node id.
type Graph struct {
	Out   [][]int
	Edges int
}

func (g *Graph) Len() int {
	return len(g.Out)
}

// AvgDegree is the mean out-degree.
func (g *Graph) AvgDegree() float64 {
	if len(g.Out) == 0 {
		return 0
	}
	return float64(g.Edges) / float64(len(g.Out))
}

// ScaleFree grows a Barabási–Albert style graph. The first m0 nodes form a
// complete digraph; every later node attaches to m distinct earlier nodes
// drawn uniformly, the direction of each new edge chosen by a fair coin. The
// result has m0*(m0-1) + m*(n-m0) edges.
func ScaleFree(rng *rand.Rand, m0, m, n int) (*Graph, error) {
	if m0 < 1 || m < 1 {
		return nil, fmt.Errorf("seed size and growth must be positive, got m0=%d m=%d", m0, m)
	}
	if m > m0 {
		return nil, fmt.Errorf("growth m=%d exceeds the seed size m0=%d", m, m0)
	}
	if n < m0 {
		return nil, fmt.Errorf("graph of %d nodes is smaller than its seed of %d", n, m0)
	}
	g := &Graph{Out: make([][]int, n)}
	for i := 0; i < m0; i++ {
		for j := 0; j < m0; j++ {
			if i != j {
				g.Out[i] = append(g.Out[i], j)
				g.Edges++
			}
		}
	}
	seen := make(map[int]bool, m)
	for i := m0; i < n; i++ {
		for k := range seen {
			delete(seen, k)
		}
		for len(seen) < m {
			k := rng.Intn(i)
			if seen[k] {
				continue
			}
			seen[k] = true
			if rng.Intn(2) == 0 {
				g.Out[i] = append(g.Out[i], k)
			} else {
				g.Out[k] = append(g.Out[k], i)
			}
			g.Edges++
		}
	}
	return g, nil
}

// ReadEdgeList reads a "source,target" edge list. Edges touching a node id
// above maxSize are dropped, and so are edges past the first maxNeighbours of
// a source. Zero disables either limit.
func ReadEdgeList(r io.Reader, maxNeighbours, maxSize int) (*Graph, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	g := &Graph{}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		src, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("edge %d: bad source %q", line, rec[0])
		}
		dst, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("edge %d: bad target %q", line, rec[1])
		}
		if src < 0 || dst < 0 {
			return nil, fmt.Errorf("edge %d: negative node id", line)
		}
		if maxSize > 0 && (src > maxSize || dst > maxSize) {
			continue
		}
		for len(g.Out) <= src || len(g.Out) <= dst {
			g.Out = append(g.Out, nil)
		}
		if maxNeighbours > 0 && len(g.Out[src]) >= maxNeighbours {
			continue
		}
		g.Out[src] = append(g.Out[src], dst)
		g.Edges++
	}
	return g, nil
}
