package trace

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countEdges(g *Graph) int {
	total := 0
	for _, out := range g.Out {
		total += len(out)
	}
	return total
}

func TestScaleFree(t *testing.T) {
	g, err := ScaleFree(rand.New(rand.NewSource(3)), 3, 3, 50)
	require.NoError(t, err)

	assert.Equal(t, 50, g.Len())
	assert.Equal(t, 147, g.Edges)
	assert.Equal(t, 147, countEdges(g))
	assert.InDelta(t, 2.94, g.AvgDegree(), 1e-9)
	// the seed is complete
	assert.ElementsMatch(t, []int{1, 2}, g.Out[0][:2])
}

func TestScaleFreeRejectsBadParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, c := range [][3]int{{0, 1, 5}, {3, 0, 5}, {2, 3, 5}, {5, 5, 4}} {
		_, err := ScaleFree(rng, c[0], c[1], c[2])
		assert.Error(t, err, "m0=%d m=%d n=%d", c[0], c[1], c[2])
	}
}

func TestScaleFreeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("edge count is m0(m0-1) + m(n-m0) and edges are simple", prop.ForAll(
		func(m, extra int, seed int64) bool {
			n := m + extra
			g, err := ScaleFree(rand.New(rand.NewSource(seed)), m, m, n)
			if err != nil {
				return false
			}
			if g.Edges != m*(m-1)+m*(n-m) || countEdges(g) != g.Edges {
				return false
			}
			seen := make(map[[2]int]bool)
			for u, out := range g.Out {
				for _, v := range out {
					// no self loops, no parallel or antiparallel edges outside the seed
					if u == v || seen[[2]int{u, v}] {
						return false
					}
					if (u >= m || v >= m) && seen[[2]int{v, u}] {
						return false
					}
					seen[[2]int{u, v}] = true
				}
			}
			return true
		},
		gen.IntRange(1, 9),
		gen.IntRange(0, 60),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestReadEdgeList(t *testing.T) {
	in := "# transactions\n0,1\n1,2\n1,3\n1,4\n2,0\n9,0\n"
	g, err := ReadEdgeList(strings.NewReader(in), 2, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, g.Len())
	assert.Equal(t, []int{1}, g.Out[0])
	assert.Equal(t, []int{2, 3}, g.Out[1], "neighbours past the cap are dropped")
	assert.Equal(t, []int{0}, g.Out[2])
	assert.Empty(t, g.Out[4])
	assert.Equal(t, 4, g.Edges)

	g, err = ReadEdgeList(strings.NewReader(in), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, g.Len())
	assert.Equal(t, 6, g.Edges)
}

func TestReadEdgeListErrors(t *testing.T) {
	for _, in := range []string{"0,x\n", "a,1\n", "0,1,2\n", "-1,2\n"} {
		_, err := ReadEdgeList(strings.NewReader(in), 0, 0)
		assert.Error(t, err, in)
	}
}
