package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"quickspend/internal/cli"
	"quickspend/internal/client"
	"quickspend/internal/config"
	"quickspend/internal/submit"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, "text", os.Stderr)

	api, err := client.New(cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	a := &app{
		api:    api,
		store:  submit.NewFileStore(cfg.PendingFile),
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: logger,
		now:    time.Now,
	}
	code := a.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
