// Command lift checks schema migrations for destructive changes and
// translates query graphs into expression trees.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/lift/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
