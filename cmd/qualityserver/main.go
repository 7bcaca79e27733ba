package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"metricqa/internal/app"
	"metricqa/internal/config"
	"metricqa/internal/infrastructure"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "config.yaml path")
	portFlag := flag.Int("port", 0, "listen port (overrides server.port)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *portFlag > 0 {
		cfg.Server.Port = *portFlag
	}
	if *verboseFlag {
		cfg.Logging.Level = "debug"
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	application, err := app.NewApplication(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}
