// Package report turns a cycle census run log into the four growth-rate
// charts.
package report

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/dispersed-ledger/cycletrace/chart"
	"github.com/dispersed-ledger/cycletrace/runlog"
)

const growthRateLabel = "growth rate m"

// Chart is one of the report's figures. Apart from these fields every chart
// is the same: growth rate on x, log-scale y, one series per run family.
type Chart struct {
	Prefix  string
	YColumn string
	YLabel  string
}

// Charts are rendered in this order.
var Charts = []Chart{
	{Prefix: "degree-vs-avg-runtime", YColumn: "t_avg", YLabel: "avg runtime t (s)"},
	{Prefix: "degree-vs-num-cycles", YColumn: "n_cyc", YLabel: "cycle count c (max length l)"},
	{Prefix: "degree-vs-flood-echo", YColumn: "for_echo_avg", YLabel: "avg total flood/echo messages M(f+e)"},
	{Prefix: "degree-vs-trace-messages", YColumn: "pub_avg", YLabel: "avg total trace messages M(t)"},
}

// Config holds the inputs of a report run.
type Config struct {
	LogFile string `validate:"required,file"`
	OutDir  string `validate:"required,dir"`
	// Nodes is the node count every run must have; the growth rate is
	// m/(Nodes-1). Zero normalizes each run by its own node count.
	Nodes   int `validate:"min=0,ne=1"`
	Palette string
}

// DefaultConfig returns the configuration of the standard 50-node sweep,
// writing into the working directory.
func DefaultConfig() Config {
	return Config{
		OutDir:  ".",
		Nodes:   runlog.DefaultNodes,
		Palette: chart.DefaultPalette,
	}
}

var validate = validator.New()

// Validate checks the configuration. A problem with LogFile is returned as a
// *runlog.ConfigurationError.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.StructField() == "LogFile" {
			if fe.Tag() == "required" {
				return &runlog.ConfigurationError{Reason: "no input path configured"}
			}
			return &runlog.ConfigurationError{Path: c.LogFile, Reason: "does not exist or is not a regular file"}
		}
	}
	fe := verrs[0]
	return fmt.Errorf("invalid %s %v (rule %s=%s)", fe.StructField(), fe.Value(), fe.Tag(), fe.Param())
}

// Result describes a finished report.
type Result struct {
	// Runs is the derived table restricted to the plotted run families.
	Runs  *runlog.Table
	Files []string
}

// Run loads the log, derives the metrics, keeps the plotted run families and
// renders every chart in Charts. Charts are built and exported one at a
// time; the first failure aborts the remaining ones.
func Run(cfg Config, logger logrus.FieldLogger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	all, err := runlog.Load(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	logger.WithField("rows", all.Len()).Debug("loaded run log")

	deg, err := runlog.Derive(all, cfg.Nodes)
	if err != nil {
		return nil, err
	}
	for _, col := range deg.Columns() {
		logger.WithField("column", col).Warnf("%d non-finite values (division by zero node count)", deg[col])
	}

	runs, err := runlog.FilterFamilies(all)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"rows": runs.Len(), "dropped": all.Len() - runs.Len()}).Debug("filtered run families")

	palette, err := chart.Palette(cfg.Palette, len(runlog.Families))
	if err != nil {
		return nil, err
	}

	res := &Result{Runs: runs}
	for _, c := range Charts {
		spec := chart.Spec{
			Prefix:      c.Prefix,
			XColumn:     "m_param",
			XLabel:      growthRateLabel,
			YColumn:     c.YColumn,
			YLabel:      c.YLabel,
			GroupColumn: "l",
			Groups:      runlog.Families,
			Palette:     palette,
			LogY:        true,
		}
		fig, err := chart.Build(runs, spec)
		if err != nil {
			return res, err
		}
		if n := fig.Skipped(); n > 0 {
			logger.WithField("chart", c.Prefix).Warnf("%d runs left out: not finite or not positive on the log axis", n)
		}
		files, err := chart.Export(fig, filepath.Join(cfg.OutDir, c.Prefix))
		res.Files = append(res.Files, files...)
		if err != nil {
			return res, err
		}
		logger.WithField("chart", c.Prefix).Debug("exported")
	}
	return res, nil
}
