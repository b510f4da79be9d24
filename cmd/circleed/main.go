package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// @title CircleEd Watcher Status API
// @version 0.1.0
// @description Local status endpoints served by circleed watch
// @BasePath /
// @schemes http

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	defer c.close()

	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
