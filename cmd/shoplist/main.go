package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukerupert/shoplist/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.RootCmd().ExecuteContext(ctx)
	cli.Close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
