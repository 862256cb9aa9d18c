package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispersed-ledger/cycletrace/runlog"
	"github.com/dispersed-ledger/cycletrace/trace"
)

func smallSweep(t *testing.T) SweepConfig {
	t.Helper()
	c := DefaultSweepConfig()
	c.N = Range{6, 6}
	c.M = Range{2, 3}
	c.L = Range{2, 4}
	c.Iterations = 2
	c.QBits = 16
	c.Seed = 5
	c.OutDir = t.TempDir()
	require.NoError(t, c.Validate())
	return c
}

func TestPlanOrder(t *testing.T) {
	c := smallSweep(t)
	jobs, err := plan(c, rand.New(rand.NewSource(c.Seed)))
	require.NoError(t, err)
	require.Len(t, jobs, 12)

	var got []string
	for i, j := range jobs {
		assert.Equal(t, i, j.seq)
		assert.Equal(t, 6, j.n)
		assert.Equal(t, j.m, j.graph.Edges)
		got = append(got, fmt.Sprintf("%d%d%d", j.iteration, j.m/5, j.l))
	}
	// iteration, then growth (10 or 15 edges), then l
	assert.Equal(t, []string{
		"022", "023", "024", "032", "033", "034",
		"122", "123", "124", "132", "133", "134",
	}, got)
	assert.Same(t, jobs[0].graph, jobs[2].graph, "one graph per (n, m)")
	assert.NotSame(t, jobs[0].graph, jobs[6].graph, "a new graph per iteration")
}

func TestPlanIsDeterministic(t *testing.T) {
	c := smallSweep(t)
	a, err := plan(c, rand.New(rand.NewSource(c.Seed)))
	require.NoError(t, err)
	b, err := plan(c, rand.New(rand.NewSource(c.Seed)))
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].seed, b[i].seed)
		assert.Equal(t, a[i].graph.Out, b[i].graph.Out)
	}
}

func TestPlanEdgeList(t *testing.T) {
	c := smallSweep(t)
	c.EdgeList = filepath.Join(c.OutDir, "transactions.csv")
	require.NoError(t, os.WriteFile(c.EdgeList, []byte("0,1\n1,2\n2,0\n2,3\n"), 0o644))

	jobs, err := plan(c, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, jobs, 6)
	for _, j := range jobs {
		assert.Equal(t, -1, j.m)
		assert.Equal(t, 4, j.n)
		assert.Equal(t, 4, j.graph.Edges)
	}

	c.EdgeList = filepath.Join(c.OutDir, "missing.csv")
	_, err = plan(c, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

// rowsWithoutTime drops the runtime column so logs of different runs compare.
func rowsWithoutTime(t *testing.T, log string) []string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(log), "\n")
	require.Equal(t, strings.Join(logHeader, ","), lines[0])
	var rows []string
	for _, l := range lines[1:] {
		rows = append(rows, l[:strings.LastIndex(l, ",")])
	}
	sort.Strings(rows)
	return rows
}

func TestSweepWritesRunLog(t *testing.T) {
	c := smallSweep(t)
	grp, err := trace.NewGroup(rand.New(rand.NewSource(c.Seed)), c.QBits, c.RBits)
	require.NoError(t, err)
	jobs, err := plan(c, rand.New(rand.NewSource(c.Seed)))
	require.NoError(t, err)

	var serial bytes.Buffer
	n, err := Sweep(c, grp, jobs, &serial, nil)
	require.NoError(t, err)
	assert.Equal(t, len(jobs), n)

	tb, err := runlog.Read(bytes.NewReader(serial.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, len(jobs), tb.Len())
	davg, _ := tb.Column("d_avg")
	assert.InDelta(t, 10.0/6, davg[0], 1e-6)
	ls, _ := tb.Column("l")
	assert.Equal(t, []float64{2, 3, 4}, ls[:3])

	c.Workers = 4
	c.Store = "leveldb"
	var parallel bytes.Buffer
	n, err = Sweep(c, grp, jobs, &parallel, nil)
	require.NoError(t, err)
	assert.Equal(t, len(jobs), n)
	assert.Equal(t, rowsWithoutTime(t, serial.String()), rowsWithoutTime(t, parallel.String()),
		"a run only depends on its job")
}

func TestSweepReportsProgress(t *testing.T) {
	c := smallSweep(t)
	c.Workers = 2
	grp, err := trace.NewGroup(rand.New(rand.NewSource(c.Seed)), c.QBits, c.RBits)
	require.NoError(t, err)
	jobs, err := plan(c, rand.New(rand.NewSource(c.Seed)))
	require.NoError(t, err)

	pchan := make(chan progress, len(jobs))
	_, err = Sweep(c, grp, jobs, &bytes.Buffer{}, pchan)
	require.NoError(t, err)

	var last progress
	for p := range pchan {
		assert.Equal(t, last.Done+1, p.Done)
		assert.Contains(t, p.Label, "n=6")
		last = p
	}
	assert.Equal(t, len(jobs), last.Done)
}

func TestSweepStopsAtFirstFailure(t *testing.T) {
	c := smallSweep(t)
	grp, err := trace.NewGroup(rand.New(rand.NewSource(c.Seed)), c.QBits, c.RBits)
	require.NoError(t, err)
	g, err := trace.ScaleFree(rand.New(rand.NewSource(1)), 2, 2, 6)
	require.NoError(t, err)

	jobs := []job{
		{seq: 0, n: 6, m: g.Edges, l: 0, graph: g},
		{seq: 1, n: 6, m: g.Edges, l: 2, graph: g},
	}
	var out bytes.Buffer
	n, err := Sweep(c, grp, jobs, &out, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "l=0")
	assert.Zero(t, n)
	assert.Equal(t, strings.Join(logHeader, ",")+"\n", out.String())
}
