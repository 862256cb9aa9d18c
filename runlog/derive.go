package runlog

import (
	"fmt"
	"math"
	"sort"
)

// DefaultNodes is the node count of the standard sweep. The growth rate is
// m/(n-1), so the default divisor is 49.
const DefaultNodes = 50

// RequiredColumns are the columns of a run record that Derive reads.
var RequiredColumns = []string{"n", "l", "m", "n_for", "n_echo", "n_msg", "n_pub", "n_brd", "n_cyc", "t", "c_edge"}

// DerivedColumns are appended by Derive, in this order.
var DerivedColumns = []string{
	"n_for_echo",
	"c_edge_avg",
	"msg_avg",
	"for_avg",
	"echo_avg",
	"pub_avg",
	"brd_avg",
	"t_avg",
	"for_echo_avg",
	"m_param",
}

// Families are the values of l (maximum cycle length) that the report keeps.
var Families = []float64{2, 3, 4}

// Degeneracies counts, per derived column, the cells that came out as +Inf,
// -Inf or NaN. They are kept in the table; the caller decides how to surface them.
type Degeneracies map[string]int

// Total returns the number of non-finite cells.
func (d Degeneracies) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

// Columns returns the affected columns in sorted order.
func (d Degeneracies) Columns() []string {
	var cols []string
	for c := range d {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Derive appends the DerivedColumns to t. With nodes > 0 every row must have
// n == nodes and m_param is m/(nodes-1); a mismatch returns a
// *NormalizationError and leaves t unchanged. With nodes == 0 each row is
// normalized by its own n-1.
// Division is not guarded: a zero n yields Inf or NaN, which is stored and
// counted in the returned Degeneracies.
func Derive(t *Table, nodes int) (Degeneracies, error) {
	if nodes < 0 || nodes == 1 {
		return nil, fmt.Errorf("node count must be 0 or at least 2, got %d", nodes)
	}
	if err := t.Require(RequiredColumns...); err != nil {
		return nil, err
	}
	for _, c := range DerivedColumns {
		if t.Has(c) {
			return nil, &DataShapeError{Column: c, Reason: "derived column already present"}
		}
	}
	col := func(name string) []float64 {
		v, _ := t.Column(name)
		return v
	}
	n := col("n")
	for i, v := range n {
		if nodes != 0 && v != float64(nodes) {
			return nil, &NormalizationError{Row: i + 1, N: v, Want: nodes}
		}
	}

	rows := t.Len()
	perNode := func(src []float64) []float64 {
		out := make([]float64, rows)
		for i := range out {
			out[i] = src[i] / n[i]
		}
		return out
	}

	forEcho := make([]float64, rows)
	nFor, nEcho := col("n_for"), col("n_echo")
	for i := range forEcho {
		forEcho[i] = nFor[i] + nEcho[i]
	}
	mParam := make([]float64, rows)
	for i, m := range col("m") {
		divisor := float64(nodes - 1)
		if nodes == 0 {
			divisor = n[i] - 1
		}
		mParam[i] = m / divisor
	}

	derived := [][]float64{
		forEcho,
		perNode(col("c_edge")),
		perNode(col("n_msg")),
		perNode(nFor),
		perNode(nEcho),
		perNode(col("n_pub")),
		perNode(col("n_brd")),
		perNode(col("t")),
		perNode(forEcho),
		mParam,
	}

	deg := Degeneracies{}
	for i, name := range DerivedColumns {
		for _, v := range derived[i] {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				deg[name]++
			}
		}
		if err := t.AddColumn(name, derived[i]); err != nil {
			return nil, err
		}
	}
	return deg, nil
}

// FilterFamilies keeps the rows whose l is one of Families.
func FilterFamilies(t *Table) (*Table, error) {
	return t.Filter("l", Families...)
}
