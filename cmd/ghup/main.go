// Command ghup switches git identities between GitHub accounts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bangunx/ghup/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], cli.Options{})
	stop()
	os.Exit(code)
}
