package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = "n,m,d_avg,l,n_cyc,c_edge,n_msg,n_for,n_echo,n_pub,n_brd,t\n" +
	"50,147,2.94,2,4,8,300,100,100,60,4,150\n" +
	"50,196,3.92,3,9,27,900,300,300,150,9,350\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestRunExitCodes(t *testing.T) {
	t.Setenv("LOGFILE", "")
	dir := t.TempDir()
	good := writeFile(t, dir, "good.log", sampleLog)
	bad := writeFile(t, dir, "bad.log", "n,m,l\n50,49,2\n")

	assert.Equal(t, 1, run([]string{"-o", dir}), "no logfile configured")
	assert.Equal(t, 1, run([]string{"-o", dir, filepath.Join(dir, "missing.log")}))
	assert.Equal(t, 2, run([]string{"-o", dir, bad}))
	assert.Equal(t, 2, run([]string{"-o", dir, "--nodes", "40", good}))
	assert.Equal(t, 0, run([]string{"-o", dir, good}))

	_, err := os.Stat(filepath.Join(dir, "degree-vs-trace-messages.eps"))
	assert.NoError(t, err)
}

func TestRunReadsLogfileFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGFILE", writeFile(t, dir, "env.log", sampleLog))
	assert.Equal(t, 0, run([]string{"--out", dir}))
}

func TestParseS3URL(t *testing.T) {
	b, p, err := parseS3URL("s3://charts/runs/2024/")
	require.NoError(t, err)
	assert.Equal(t, "charts", b)
	assert.Equal(t, "runs/2024", p)

	b, p, err = parseS3URL("s3://charts")
	require.NoError(t, err)
	assert.Equal(t, "charts", b)
	assert.Empty(t, p)

	_, _, err = parseS3URL("https://charts/runs")
	assert.Error(t, err)
	_, _, err = parseS3URL("s3:///runs")
	assert.Error(t, err)
}

func TestGallery(t *testing.T) {
	dir := t.TempDir()
	svg := writeFile(t, dir, "degree-vs-num-cycles.svg", "<svg></svg>")
	eps := writeFile(t, dir, "degree-vs-num-cycles.eps", "%!PS")

	srv := httptest.NewServer(galleryHandler(dir, []string{svg, eps}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/view")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Contains(t, string(body), `src="/charts/degree-vs-num-cycles.svg"`)
	assert.NotContains(t, string(body), ".eps")

	res, err = http.Get(srv.URL + "/charts/degree-vs-num-cycles.svg")
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "<svg></svg>", string(body))
}
