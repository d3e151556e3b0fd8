package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/depmend/depmend/internal/app"
)

type Runner interface {
	Execute(ctx context.Context, req app.Request) (string, error)
}

type CLI struct {
	Runner Runner
	In     io.Reader
	Out    io.Writer
	Err    io.Writer

	IsInteractive func() bool
}

func New(runner Runner, in io.Reader, out io.Writer, errOut io.Writer) *CLI {
	return &CLI{
		Runner: runner,
		In:     in,
		Out:    out,
		Err:    errOut,
		IsInteractive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func (c *CLI) Run(ctx context.Context, args []string) int {
	req, err := ParseArgs(args)
	if err != nil {
		if errors.Is(err, ErrHelpRequested) {
			fmt.Fprint(c.Out, Usage())
			return 0
		}
		fmt.Fprintf(c.Err, "error: %v\n\n", err)
		fmt.Fprint(c.Err, Usage())
		return 2
	}

	output, runErr := c.Runner.Execute(ctx, req)
	if output != "" {
		fmt.Fprint(c.Out, output)
		if !strings.HasSuffix(output, "\n") {
			fmt.Fprintln(c.Out)
		}
	}

	if runErr != nil {
		fmt.Fprintln(c.Err, runErr.Error())
		switch {
		case errors.Is(runErr, app.ErrInterrupted):
			return 130
		case errors.Is(runErr, app.ErrNoInputs),
			errors.Is(runErr, app.ErrConfirmationUnavailable),
			errors.Is(runErr, app.ErrInstallFailed):
			c.pauseBeforeExit()
			return 1
		default:
			c.pauseBeforeExit()
			return 3
		}
	}

	return 0
}

// pauseBeforeExit holds a failing interactive run open until the operator
// acknowledges, so the failure output is not lost when the terminal window
// closes with the process.
func (c *CLI) pauseBeforeExit() {
	if c.In == nil || c.IsInteractive == nil || !c.IsInteractive() {
		return
	}
	fmt.Fprint(c.Err, "Press Enter to close. ")
	_, _ = bufio.NewReader(c.In).ReadString('\n')
}
