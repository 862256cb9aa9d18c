package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"sync"

	"github.com/eapache/channels"
	log "github.com/sirupsen/logrus"

	"github.com/dispersed-ledger/cycletrace/trace"
)

var logHeader = []string{"n", "m", "d_avg", "l", "n_cyc", "c_edge", "n_msg", "n_for", "n_echo", "n_pub", "n_brd", "t"}

// job is one census of the sweep.
type job struct {
	seq       int
	iteration int
	n         int
	// the m column: the edge count of a generated graph, -1 for an edge list
	m     int
	l     int
	graph *trace.Graph
	seed  int64
}

type outcome struct {
	job
	res trace.Result
	err error
}

// plan lays out every census of the sweep in log order. Graphs and per-run
// seeds are drawn from rng up front, so a sweep only depends on its seed and
// not on how many workers run it.
func plan(c SweepConfig, rng *rand.Rand) ([]job, error) {
	var edges *trace.Graph
	if c.EdgeList != "" {
		f, err := os.Open(c.EdgeList)
		if err != nil {
			return nil, err
		}
		edges, err = trace.ReadEdgeList(f, c.MaxNeighbours, c.MaxSize)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading edge list %s: %w", c.EdgeList, err)
		}
	}

	var jobs []job
	add := func(it, n, m int, g *trace.Graph) {
		for l := c.L.Lower; l <= c.L.Upper; l++ {
			jobs = append(jobs, job{seq: len(jobs), iteration: it, n: n, m: m, l: l, graph: g, seed: rng.Int63()})
		}
	}
	for it := 0; it < c.Iterations; it++ {
		if edges != nil {
			add(it, edges.Len(), -1, edges)
			continue
		}
		for n := c.N.Lower; n <= c.N.Upper; n++ {
			for m := c.M.Lower; m <= c.M.Upper; m++ {
				g, err := trace.ScaleFree(rng, m, m, n)
				if err != nil {
					return nil, err
				}
				add(it, n, g.Edges, g)
			}
		}
	}
	return jobs, nil
}

// runJob builds fresh nodes for the job's graph and runs its census.
func runJob(j job, grp trace.Group, store, tmpRoot string) (res trace.Result, err error) {
	set, release, err := openCycleSet(store, tmpRoot)
	if err != nil {
		return res, err
	}
	defer func() {
		if rerr := release(); err == nil {
			err = rerr
		}
	}()
	nodes := trace.NewNodes(j.graph, grp, rand.New(rand.NewSource(j.seed)))
	return trace.Census(nodes, j.l, set)
}

func logRecord(o outcome) []string {
	itoa := strconv.Itoa
	return []string{
		itoa(o.n),
		itoa(o.m),
		strconv.FormatFloat(o.graph.AvgDegree(), 'f', 6, 64),
		itoa(o.l),
		itoa(o.res.Cycles),
		itoa(o.res.CycleEdges),
		itoa(o.res.Messages),
		itoa(o.res.Counts[trace.Forward]),
		itoa(o.res.Counts[trace.Echo]),
		itoa(o.res.Counts[trace.Publish]),
		itoa(o.res.Counts[trace.Broadcast]),
		strconv.FormatInt(o.res.Runtime.Milliseconds(), 10),
	}
}

// Sweep runs the census of every job on c.Workers goroutines and writes one
// log row per run to w, in the order runs finish. Progress is reported on
// pchan, if given, which is closed on return. The first failed run stops the
// sweep; runs already started are waited for.
func Sweep(c SweepConfig, grp trace.Group, jobs []job, w io.Writer, pchan chan<- progress) (int, error) {
	if pchan != nil {
		defer close(pchan)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(logHeader); err != nil {
		return 0, err
	}
	cw.Flush()

	jobCh := make(chan job)
	stop := make(chan struct{})
	// workers never block on a slow writer
	results := channels.NewInfiniteChannel()
	wg := &sync.WaitGroup{}
	for i := 0; i < c.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				res, err := runJob(j, grp, c.Store, c.OutDir)
				results.In() <- outcome{j, res, err}
			}
		}()
	}
	go func() {
	feed:
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-stop:
				break feed
			}
		}
		close(jobCh)
		wg.Wait()
		results.Close()
	}()

	done := 0
	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
			close(stop)
		}
	}
	for v := range results.Out() {
		o := v.(outcome)
		if firstErr != nil {
			continue
		}
		if o.err != nil {
			fail(fmt.Errorf("census n=%d m=%d l=%d: %w", o.n, o.m, o.l, o.err))
			continue
		}
		cw.Write(logRecord(o))
		cw.Flush()
		if err := cw.Error(); err != nil {
			fail(fmt.Errorf("could not write run log: %w", err))
			continue
		}
		done++
		dpLogger.WithFields(log.Fields{
			"iteration": o.iteration,
			"n":         o.n,
			"m":         o.m,
			"d_avg":     fmt.Sprintf("%.2f", o.graph.AvgDegree()),
			"l":         o.l,
			"n_cyc":     o.res.Cycles,
			"c_edge":    o.res.CycleEdges,
			"n_msg":     o.res.Messages,
			"n_for":     o.res.Counts[trace.Forward],
			"n_echo":    o.res.Counts[trace.Echo],
			"n_pub":     o.res.Counts[trace.Publish],
			"n_brd":     o.res.Counts[trace.Broadcast],
			"t":         o.res.Runtime,
		}).Debugln("census finished")
		if pchan != nil {
			pchan <- progress{Done: done, Label: fmt.Sprintf("n=%d m=%d l=%d", o.n, o.m, o.l)}
		}
	}
	return done, firstErr
}
