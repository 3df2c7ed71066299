package grid

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"revgrid/internal/core"
)

// ErrQuit is returned by Dispatch when the user asks to leave.
var ErrQuit = errors.New("quit")

const helpText = `commands:
  view location|branch   switch view
  open <row|location>    show the branches of a location
  clear                  leave a drill-down
  sort <column>          sort, again to reverse (location, potentialRevenue, ...)
  page <n> | next | prev move between pages
  delete <row|id>        delete a record and reload
  refresh                reload the current view
  quit`

// Dispatch runs one REPL command against the controller.
func (c *Controller) Dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	arg := strings.Join(args, " ")

	switch cmd {
	case "quit", "exit", "q":
		return ErrQuit
	case "help", "?":
		return nil
	case "refresh", "r":
		return c.Refresh(ctx)
	case "view", "v":
		return c.SetView(ctx, core.ParseView(arg))
	case "open", "o":
		loc, err := c.resolveLocation(arg)
		if err != nil {
			return err
		}
		return c.Open(ctx, loc)
	case "clear", "c":
		return c.ClearFilter(ctx)
	case "sort", "s":
		return c.Sort(SortKey(arg))
	case "page", "p":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("page: %q is not a number", arg)
		}
		return c.Page(n)
	case "next", "n":
		return c.Next()
	case "prev", "previous":
		return c.Prev()
	case "delete", "d", "rm":
		id, err := c.resolveID(arg)
		if err != nil {
			return err
		}
		return c.Delete(ctx, id)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
}

// rowAt returns the record shown as row number n (1-indexed across pages).
func (c *Controller) rowAt(n int) (core.Record, bool) {
	var (
		rec core.Record
		ok  bool
	)
	c.Read(func(m *Model) {
		sorted := m.Sorted()
		if n >= 1 && n <= len(sorted) {
			rec, ok = sorted[n-1], true
		}
	})
	return rec, ok
}

func (c *Controller) resolveLocation(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("open: missing row or location")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		rec, ok := c.rowAt(n)
		if !ok {
			return "", fmt.Errorf("open: no row %d", n)
		}
		return rec.Location, nil
	}
	return arg, nil
}

func (c *Controller) resolveID(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("delete: missing row or id")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		rec, ok := c.rowAt(n)
		if !ok {
			return "", fmt.Errorf("delete: no row %d", n)
		}
		return rec.ID, nil
	}
	return arg, nil
}

// Browse loads the grid and runs an interactive loop reading commands from
// in and rendering to out until quit, EOF or ctx is done. Command errors
// are reported on out and the loop continues.
func Browse(ctx context.Context, c *Controller, in io.Reader, out io.Writer) error {
	_ = c.Refresh(ctx)

	scanner := bufio.NewScanner(in)
	for {
		var renderErr error
		c.Read(func(m *Model) { renderErr = Render(out, m) })
		if renderErr != nil {
			return renderErr
		}
		fmt.Fprint(out, "> ")

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "help" || strings.TrimSpace(line) == "?" {
			fmt.Fprintln(out, helpText)
			continue
		}
		err := c.Dispatch(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}
