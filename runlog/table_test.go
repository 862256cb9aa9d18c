package runlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "n,m,d_avg,l,n_cyc,c_edge,n_msg,n_for,n_echo,n_pub,n_brd,t\n"

func writeLog(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// tableWithFamilies builds a table whose l column holds the given values and
// whose n column numbers the rows, so row order is observable.
func tableWithFamilies(t *testing.T, ls []int) *Table {
	tb, err := New(RequiredColumns...)
	require.NoError(t, err)
	for i, l := range ls {
		row := make([]float64, len(RequiredColumns))
		row[0] = float64(i)
		row[1] = float64(l)
		require.NoError(t, tb.AppendRow(row...))
	}
	return tb
}

func TestLoadConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"missing", filepath.Join(dir, "nope.log")},
		{"directory", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce), "got %v", err)
		})
	}
}

func TestLoadReadsTable(t *testing.T) {
	p := writeLog(t, header+
		"50,147,2.940000,2,3,6,100,40,40,15,5,120\n"+
		"50,147,2.940000,3,7,21,300,140,140,15,5,220\n")

	tb, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, strings.Split(strings.TrimSpace(header), ","), tb.Columns())

	l, err := tb.Column("l")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, l)
	d, err := tb.Column("d_avg")
	require.NoError(t, err)
	assert.InDelta(t, 2.94, d[0], 1e-9)
}

func TestReadMissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("n,m,l\n50,49,2\n"))
	var de *DataShapeError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.Equal(t, "n_for", de.Column)
	assert.Contains(t, err.Error(), "n_for")
}

func TestReadBadCell(t *testing.T) {
	_, err := Read(strings.NewReader(header + "50,49,1.0,2,x,0,0,0,0,0,0,0\n"))
	var de *DataShapeError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.Equal(t, "n_cyc", de.Column)
	assert.Equal(t, 1, de.Row)
}

func TestReadWrongArity(t *testing.T) {
	_, err := Read(strings.NewReader(header + "50,49,1.0,2\n"))
	var de *DataShapeError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.Equal(t, 1, de.Row)
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	var de *DataShapeError
	require.True(t, errors.As(err, &de), "got %v", err)
}

func TestAddColumnRejectsDuplicatesAndShortColumns(t *testing.T) {
	tb := tableWithFamilies(t, []int{2, 3})
	assert.Error(t, tb.AddColumn("l", []float64{1, 2}))
	assert.Error(t, tb.AddColumn("x", []float64{1}))
	assert.NoError(t, tb.AddColumn("x", []float64{1, 2}))
}

func TestFilterFamilies(t *testing.T) {
	tb := tableWithFamilies(t, []int{1, 2, 3, 4, 5, 2, 1, 4})
	out, err := FilterFamilies(tb)
	require.NoError(t, err)

	l, _ := out.Column("l")
	n, _ := out.Column("n")
	assert.Equal(t, []float64{2, 3, 4, 2, 4}, l)
	assert.Equal(t, []float64{1, 2, 3, 5, 7}, n, "original order is kept")
	assert.Equal(t, tb.Columns(), out.Columns())
	assert.Equal(t, 8, tb.Len(), "source table is untouched")
}

func TestFilterUnknownColumn(t *testing.T) {
	tb := tableWithFamilies(t, []int{2})
	_, err := tb.Filter("nope", 1)
	var de *DataShapeError
	assert.True(t, errors.As(err, &de))
}

func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("filtering is idempotent", prop.ForAll(
		func(ls []int) bool {
			tb := tableWithFamilies(t, ls)
			once, err := FilterFamilies(tb)
			if err != nil {
				return false
			}
			twice, err := FilterFamilies(once)
			if err != nil {
				return false
			}
			return assert.ObjectsAreEqual(once, twice)
		},
		gen.SliceOf(gen.IntRange(0, 6)),
	))

	properties.Property("keeps exactly the allowed rows in order", prop.ForAll(
		func(ls []int) bool {
			tb := tableWithFamilies(t, ls)
			out, err := FilterFamilies(tb)
			if err != nil {
				return false
			}
			var want []float64
			for i, l := range ls {
				if l >= 2 && l <= 4 {
					want = append(want, float64(i))
				}
			}
			got, _ := out.Column("n")
			if len(got) != len(want) {
				return false
			}
			for i := range got {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 6)),
	))

	properties.TestingRun(t)
}
