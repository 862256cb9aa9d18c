package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dispersed-ledger/cycletrace/trace"
)

// Range is an inclusive integer interval.
type Range struct {
	Lower int `yaml:"lower" json:"lower" validate:"min=1"`
	Upper int `yaml:"upper" json:"upper" validate:"gtefield=Lower"`
}

// SweepConfig describes one simulation sweep. It can be read from YAML; flags
// given on the command line win over the file.
type SweepConfig struct {
	L             Range  `yaml:"l" json:"l"`
	N             Range  `yaml:"n" json:"n"`
	M             Range  `yaml:"m" json:"m"`
	Iterations    int    `yaml:"iterations" json:"iterations" validate:"min=1"`
	QBits         int    `yaml:"q_bits" json:"q_bits" validate:"min=2,max=31"`
	RBits         int    `yaml:"r_bits" json:"r_bits" validate:"min=1"`
	Seed          int64  `yaml:"seed" json:"seed"`
	Workers       int    `yaml:"workers" json:"workers" validate:"min=1"`
	Store         string `yaml:"store" json:"store" validate:"oneof=mem leveldb pogreb"`
	OutDir        string `yaml:"out_dir" json:"out_dir" validate:"required"`
	EdgeList      string `yaml:"edge_list" json:"edge_list,omitempty"`
	MaxNeighbours int    `yaml:"max_neighbours" json:"max_neighbours,omitempty" validate:"min=0"`
	MaxSize       int    `yaml:"max_size" json:"max_size,omitempty" validate:"min=0"`
}

func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		L:          Range{2, 4},
		N:          Range{50, 50},
		M:          Range{3, 9},
		Iterations: 1,
		QBits:      20,
		RBits:      40,
		Seed:       time.Now().UnixNano(),
		Workers:    1,
		Store:      "mem",
		OutDir:     "output",
	}
}

// LoadSweepConfig reads a YAML sweep on top of the defaults.
func LoadSweepConfig(path string) (SweepConfig, error) {
	c := DefaultSweepConfig()
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("could not parse sweep config %s: %w", path, err)
	}
	return c, nil
}

var validate = validator.New()

func (c SweepConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid %s %v (rule %s=%s)", e.Namespace(), e.Value(), e.Tag(), e.Param())
		}
		return err
	}
	// every new node attaches to m of the m0 = m seed nodes and more
	if c.EdgeList == "" && c.M.Upper > c.N.Lower {
		return fmt.Errorf("growth rate m up to %d needs graphs of at least %d nodes, got %d", c.M.Upper, c.M.Upper, c.N.Lower)
	}
	return nil
}

// Meta is written next to the run log and describes how it was produced.
type Meta struct {
	RunID    string      `json:"run_id"`
	Started  time.Time   `json:"started"`
	Finished time.Time   `json:"finished"`
	Runs     int         `json:"runs"`
	Log      string      `json:"log"`
	Group    trace.Group `json:"group"`
	Sweep    SweepConfig `json:"sweep"`
}

func NewMeta(c SweepConfig, g trace.Group, log string) Meta {
	return Meta{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Log:     log,
		Group:   g,
		Sweep:   c,
	}
}

func (m Meta) Dump(outpath string) error {
	of, err := os.Create(outpath)
	if err != nil {
		return fmt.Errorf("could not create meta file: %w", err)
	}
	defer of.Close()

	b, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("unable to encode JSON: %w", err)
	}
	_, err = of.Write(b)
	return err
}

func ParseMeta(inpath string) (Meta, error) {
	var m Meta
	b, err := os.ReadFile(inpath)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}
