package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dispersed-ledger/cycletrace/trace"
)

var dpLogger = log.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		dpLogger.Errorln(err)
		os.Exit(1)
	}
}

// applyFlag copies the setting behind the named flag from src to dst.
func applyFlag(dst, src *SweepConfig, name string) {
	switch name {
	case "l-min":
		dst.L.Lower = src.L.Lower
	case "l-max":
		dst.L.Upper = src.L.Upper
	case "n-min":
		dst.N.Lower = src.N.Lower
	case "n-max":
		dst.N.Upper = src.N.Upper
	case "m-min":
		dst.M.Lower = src.M.Lower
	case "m-max":
		dst.M.Upper = src.M.Upper
	case "iterations":
		dst.Iterations = src.Iterations
	case "q-bits":
		dst.QBits = src.QBits
	case "r-bits":
		dst.RBits = src.RBits
	case "seed":
		dst.Seed = src.Seed
	case "workers":
		dst.Workers = src.Workers
	case "store":
		dst.Store = src.Store
	case "out":
		dst.OutDir = src.OutDir
	case "edges":
		dst.EdgeList = src.EdgeList
	case "max-neighbours":
		dst.MaxNeighbours = src.MaxNeighbours
	case "max-size":
		dst.MaxSize = src.MaxSize
	}
}

func newRootCmd() *cobra.Command {
	cfg := DefaultSweepConfig()
	var (
		configPath string
		verbose    bool
		cpuprofile string
		memprofile string
	)

	cmd := &cobra.Command{
		Use:   "emulator",
		Short: "Simulate cycle tracing on generated graphs and log the message cost",
		Long: `emulator sweeps the maximum cycle length l, the graph size n and the growth
rate m. For every combination it grows a scale-free graph, lets every node
trace the cycles it lies on and appends one row to the run log that cycleplot
reads.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dpLogger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			if verbose {
				dpLogger.SetLevel(log.DebugLevel)
			}
			if configPath != "" {
				fileCfg, err := LoadSweepConfig(configPath)
				if err != nil {
					return err
				}
				flagCfg := cfg
				cfg = fileCfg
				cmd.Flags().Visit(func(f *pflag.Flag) {
					applyFlag(&cfg, &flagCfg, f.Name)
				})
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return fmt.Errorf("could not start CPU profile: %w", err)
				}
				defer pprof.StopCPUProfile()
			}

			meta, err := runSweep(cfg, !verbose)
			if err != nil {
				return err
			}
			dpLogger.WithField("run_id", meta.RunID).Infof("%d runs written to %s", meta.Runs, meta.Log)

			if memprofile != "" {
				f, err := os.Create(memprofile)
				if err != nil {
					return fmt.Errorf("could not create memory profile: %w", err)
				}
				defer f.Close()
				runtime.GC()
				if err := pprof.WriteHeapProfile(f); err != nil {
					return fmt.Errorf("could not write memory profile: %w", err)
				}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&configPath, "config", "", "YAML sweep description; flags given explicitly override it")
	fl.IntVar(&cfg.L.Lower, "l-min", cfg.L.Lower, "shortest maximum cycle length")
	fl.IntVar(&cfg.L.Upper, "l-max", cfg.L.Upper, "longest maximum cycle length")
	fl.IntVar(&cfg.N.Lower, "n-min", cfg.N.Lower, "smallest graph size")
	fl.IntVar(&cfg.N.Upper, "n-max", cfg.N.Upper, "largest graph size")
	fl.IntVar(&cfg.M.Lower, "m-min", cfg.M.Lower, "lowest growth rate (edges per new node)")
	fl.IntVar(&cfg.M.Upper, "m-max", cfg.M.Upper, "highest growth rate (edges per new node)")
	fl.IntVarP(&cfg.Iterations, "iterations", "i", cfg.Iterations, "number of times to repeat the sweep")
	fl.IntVar(&cfg.QBits, "q-bits", cfg.QBits, "size of the group order q in bits")
	fl.IntVar(&cfg.RBits, "r-bits", cfg.RBits, "the cofactor r is drawn from [2, 2^bits mod 65535]")
	fl.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed of the group, graphs and nodes")
	fl.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "number of censuses run in parallel")
	fl.StringVar(&cfg.Store, "store", cfg.Store, "where each census keeps its cycles: mem, leveldb or pogreb")
	fl.StringVarP(&cfg.OutDir, "out", "o", cfg.OutDir, "directory of the run log")
	fl.StringVar(&cfg.EdgeList, "edges", cfg.EdgeList, "trace the graph in this source,target CSV instead of generated ones")
	fl.IntVar(&cfg.MaxNeighbours, "max-neighbours", cfg.MaxNeighbours, "keep at most this many out-edges per node of the edge list (0: all)")
	fl.IntVar(&cfg.MaxSize, "max-size", cfg.MaxSize, "drop edge list nodes above this id (0: none)")
	fl.BoolVarP(&verbose, "verbose", "v", false, "log every run instead of drawing a progress bar")
	fl.StringVar(&cpuprofile, "cpuprofile", "", "write CPU profile")
	fl.StringVar(&memprofile, "memprofile", "", "write memory profile at the end of the sweep")
	return cmd
}

// runSweep picks the group, lays out the sweep and runs it into a new log
// named after the current time and the group.
func runSweep(cfg SweepConfig, showProgress bool) (Meta, error) {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return Meta{}, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	grp, err := trace.NewGroup(rng, cfg.QBits, cfg.RBits)
	if err != nil {
		return Meta{}, err
	}
	dpLogger.WithField("group", grp.String()).Infof("graph size [%d,%d] with l [%d,%d] and growth [%d,%d]",
		cfg.N.Lower, cfg.N.Upper, cfg.L.Lower, cfg.L.Upper, cfg.M.Lower, cfg.M.Upper)

	jobs, err := plan(cfg, rng)
	if err != nil {
		return Meta{}, err
	}

	base := filepath.Join(cfg.OutDir, fmt.Sprintf("%d-group[%s]", time.Now().UnixMilli(), grp))
	meta := NewMeta(cfg, grp, base+".log")
	of, err := os.Create(meta.Log)
	if err != nil {
		return meta, fmt.Errorf("could not create run log: %w", err)
	}
	defer of.Close()

	var pchan chan progress
	barDone := make(chan struct{})
	if showProgress {
		pchan = make(chan progress)
		go func() {
			ProgressBar(pchan, len(jobs), 40)
			close(barDone)
		}()
	} else {
		close(barDone)
	}
	meta.Runs, err = Sweep(cfg, grp, jobs, of, pchan)
	<-barDone
	meta.Finished = time.Now()
	if derr := meta.Dump(base + "-meta.json"); err == nil {
		err = derr
	}
	return meta, err
}
