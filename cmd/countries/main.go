// Package main provides the countries command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	countriescmd "github.com/goliatone/go-country-cache/internal/cmd/countries"
)

func main() {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := countriescmd.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		if countriescmd.IsUsage(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
