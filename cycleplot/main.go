package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dispersed-ledger/cycletrace/report"
	"github.com/dispersed-ledger/cycletrace/runlog"
)

var dpLogger = log.New()

func getEnvStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		dpLogger.Warnf("ignoring %s=%q: not an integer", key, v)
	}
	return def
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the exit status: 1 when the
// input log is not configured or unusable, 2 on any other failure.
func run(args []string) int {
	dpLogger.SetOutput(os.Stderr)
	dpLogger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	cfg := report.DefaultConfig()
	var (
		verbose  bool
		uploadTo string
		region   string
		profile  string
		serveOn  string
	)

	cmd := &cobra.Command{
		Use:   "cycleplot [logfile]",
		Short: "Plot a cycle census run log against the growth rate",
		Long: `cycleplot reads the run log written by the cycle census emulator and renders
four charts (avg runtime, cycle count, flood/echo messages and trace messages,
each against the growth rate m/(n-1)) as SVG and EPS files.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.LogFile = args[0]
			}
			if verbose {
				dpLogger.SetLevel(log.DebugLevel)
			}
			res, err := report.Run(cfg, dpLogger)
			if err != nil {
				return err
			}
			for _, f := range res.Files {
				dpLogger.Infoln("plotted", f)
			}
			if uploadTo != "" {
				if err := uploadCharts(uploadTo, region, profile, res.Files); err != nil {
					return err
				}
			}
			if serveOn != "" {
				return serveCharts(serveOn, cfg.OutDir, res.Files)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.LogFile, "logfile", getEnvStr("LOGFILE", ""), "run log to plot (or LOGFILE)")
	cmd.Flags().StringVarP(&cfg.OutDir, "out", "o", cfg.OutDir, "directory the charts are written to")
	cmd.Flags().IntVar(&cfg.Nodes, "nodes", getEnvInt("CYCLEPLOT_NODES", cfg.Nodes), "node count of every run; the growth rate is m/(nodes-1), 0 uses each run's own n")
	cmd.Flags().StringVar(&cfg.Palette, "palette", cfg.Palette, "colour palette: colorblind or a ColorBrewer qualitative palette (Dark2, Set1, ...)")
	cmd.Flags().StringVar(&uploadTo, "upload", "", "also publish the charts to s3://bucket/prefix")
	cmd.Flags().StringVar(&region, "region", getEnvStr("AWS_REGION", "us-east-1"), "AWS region of the upload bucket")
	cmd.Flags().StringVar(&profile, "profile", getEnvStr("AWS_PROFILE", ""), "AWS shared credentials profile for the upload")
	cmd.Flags().StringVar(&serveOn, "serve", "", "after plotting, serve a refreshing gallery of the charts at this address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var ce *runlog.ConfigurationError
	if errors.As(err, &ce) {
		fmt.Println("Please set the logfile to a valid run log (argument, --logfile or LOGFILE):", ce)
		return 1
	}
	dpLogger.Errorln(err)
	return 2
}
