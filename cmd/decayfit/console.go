package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-decay/session"
)

// console prints what a plotting surface would draw.
type console struct {
	w    io.Writer
	open bool
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) Open(ds *session.Dataset) error {
	c.open = true

	grid := ds.Grid()
	fmt.Fprintf(c.w, "== %s: %d samples, %d channel(s), step %.4g s\n",
		ds.Folder, len(grid), ds.NumChannels(), ds.Series.Step)

	if len(grid) > 0 {
		fmt.Fprintf(c.w, "   time range [%.6g, %.6g] s\n", grid[0], grid[len(grid)-1])
	}

	return nil
}

func (c *console) ShowFit(curve session.FitCurve) {
	p := curve.Params

	tw := tabwriter.NewWriter(c.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "channel\tA\ttau (s)\tC\tt0 (s)\tsamples\tconverged\n")
	fmt.Fprintf(tw, "%d\t%.6g\t%.6g\t%.6g\t%.6g\t%d\t%t\n",
		curve.Channel, p.Amplitude, p.Tau, p.Offset, p.T0, len(curve.Values), curve.Converged)
	tw.Flush()
}

func (c *console) SetViewport(vp session.Viewport) {
	fmt.Fprintf(c.w, "window [%d, %d]  x [%.6g, %.6g]  y [0, %.6g]\n",
		vp.Window.Lo, vp.Window.Hi, vp.X.Min, vp.X.Max, vp.Y.Max)
}

func (c *console) Close() {
	if c.open {
		c.open = false
		fmt.Fprintln(c.w, "-- closed")
	}
}
