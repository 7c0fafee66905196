// Package main starts the user-directory HTTP service process lifecycle.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/feliperosa/vinculo/internal/cmd/vinculo"
	"github.com/feliperosa/vinculo/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := vinculo.Run(ctx, os.Args[1:]); err != nil {
		config.Exitf("vinculo: %v", err)
	}
}
