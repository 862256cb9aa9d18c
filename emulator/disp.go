package main

import (
	"fmt"
	"strings"

	c "github.com/ahmetalpbalkan/go-cursor"
	"github.com/logrusorgru/aurora"
)

const labelWidth = 24

// progress reports that Done runs have finished, the latest one described by
// Label.
type progress struct {
	Done  int
	Label string
}

// pchan: progress notification
// total: number of runs in the sweep
// width: total width of the pgbar
func ProgressBar(pchan <-chan progress, total int, width int) {
	fmt.Print(c.Hide())
	fmt.Print(c.SaveAttributes())
	draw := func(done int, label string) {
		ticks := width
		if total > 0 {
			ticks = width * done / total
		}
		fmt.Print(c.RestoreAttributes())
		fmt.Print("[")
		fmt.Print(aurora.Faint(strings.Repeat("■", ticks)))
		fmt.Print(strings.Repeat(" ", width-ticks))
		fmt.Printf("] %d/%d %-*s", done, total, labelWidth, label)
	}
	draw(0, "")
	done := 0
	for v := range pchan {
		if v.Done > done {
			done = v.Done
			draw(done, v.Label)
		}
	}
	if done == total {
		draw(done, aurora.Green("done").String())
	}
	fmt.Println()
	fmt.Print(c.Show())
}
