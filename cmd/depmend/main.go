package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/depmend/depmend/internal/app"
	"github.com/depmend/depmend/internal/cli"
)

var exitFunc = os.Exit

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	runner := app.New(out, errOut, in)
	commandLine := cli.New(runner, in, out, errOut)
	return commandLine.Run(ctx, args)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	exitFunc(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
