package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-decay/session"
)

var errUsage = errors.New("usage")

const helpText = `commands:
  bounds <t1> <t2>   move the fit bounds to times t1, t2 (seconds)
  fit                fit the current window
  channel <c>        switch channel and refit the full range
  next               go to the next dataset
  retry              reload a dataset that failed to load
  show               print the session status
  quit               end the session
`

// repl starts s and dispatches one command per input line until the session
// ends, input is exhausted or ctx is canceled.
func repl(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	defer s.Quit()

	if err := s.Start(ctx); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}

	sc := bufio.NewScanner(in)
	prompt(out, s)

	for s.State() != session.Done && sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			if err := dispatch(ctx, s, fields, out); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}

		prompt(out, s)
	}

	return sc.Err()
}

func prompt(out io.Writer, s *session.Session) {
	if s.State() == session.Done {
		fmt.Fprintln(out, "done")
		return
	}

	fmt.Fprintf(out, "[%d/%d %s]> ", s.Index()+1, s.Len(), s.State())
}

func dispatch(ctx context.Context, s *session.Session, fields []string, out io.Writer) error {
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "bounds", "b":
		if len(args) != 2 {
			return fmt.Errorf("%w: bounds <t1> <t2>", errUsage)
		}

		t1, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("bounds: %w", err)
		}

		t2, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("bounds: %w", err)
		}

		_, err = s.SetBounds(t1, t2)

		return err
	case "fit", "f":
		_, err := s.Fit()
		return err
	case "channel", "c":
		if len(args) != 1 {
			return fmt.Errorf("%w: channel <c>", errUsage)
		}

		c, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("channel: %w", err)
		}

		return s.SelectChannel(c)
	case "next", "n":
		return s.Advance(ctx)
	case "retry", "r":
		return s.Retry(ctx)
	case "show", "s":
		printStatus(out, s)
		return nil
	case "help", "h", "?":
		fmt.Fprint(out, helpText)
		return nil
	case "quit", "q", "exit":
		s.Quit()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func printStatus(out io.Writer, s *session.Session) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "session\t%s\n", s.ID())
	fmt.Fprintf(tw, "state\t%s\n", s.State())
	fmt.Fprintf(tw, "dataset\t%d of %d\n", s.Index()+1, s.Len())

	ds := s.Current()
	if ds == nil {
		return
	}

	w := s.Window()
	grid := ds.Grid()
	fmt.Fprintf(tw, "folder\t%s\n", ds.Folder)
	fmt.Fprintf(tw, "channel\t%d of %d\n", s.Channel(), ds.NumChannels())

	if w.Len() > 0 && w.Hi < len(grid) {
		fmt.Fprintf(tw, "window\t[%d, %d] = [%.6g, %.6g] s\n", w.Lo, w.Hi, grid[w.Lo], grid[w.Hi])
	}

	if res := s.LastFit(); res != nil {
		fmt.Fprintf(tw, "fit\tA=%.6g tau=%.6g s C=%.6g\n", res.Params.Amplitude, res.Params.Tau, res.Params.Offset)
		fmt.Fprintf(tw, "quality\tR2=%.6f rms=%.4g iterations=%d converged=%t\n",
			res.RSquared, res.ResidualRMS, res.Iterations, res.Converged)
	}
}
