package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"turnstile/internal/config"
	"turnstile/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	logLevel := flag.String("log-level", "", "override configured log level")
	flag.Parse()

	cfg, _, found, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !found {
		fmt.Fprintln(os.Stderr, "no configuration file found, using defaults")
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("turnstiled: %v", err)
	}
}
