package main

import (
	"context"
	"os"

	"quickspend/internal/amqp"
	"quickspend/internal/backend"
	"quickspend/internal/cli"
	"quickspend/internal/log"
	gsheet "quickspend/internal/sheets/google"
	"quickspend/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stdout)
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err := cfg.ValidateSheets(); err != nil {
		logger.Error("Sheets configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Starting quickspend-sync")

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	// The worker only reads; events are consumed below, never published.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer result.Cleanup()

	creds, err := cfg.ServiceAccountJSON()
	if err != nil {
		logger.Error("Failed to read service account credentials", log.FieldError, err.Error())
		os.Exit(1)
	}
	sheet, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: creds,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	consumer, err := amqp.NewClientWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		logger.WithComponent(log.ComponentAMQP), 5)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer consumer.Close()

	mirror := worker.NewMirrorWorker(result.Service, sheet, logger)

	if err := mirror.Run(ctx, consumer); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("quickspend-sync stopped gracefully")
}
