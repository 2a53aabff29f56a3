package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domain-agent/internal/config"
	"github.com/domain-agent/internal/lookup"
	"github.com/domain-agent/internal/metrics"
	"github.com/domain-agent/internal/server"
	"github.com/domain-agent/internal/tools"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Errorf("Invalid log level: %v", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)

	m := metrics.New()
	whoisClient := lookup.NewWhoisClient(lookup.WhoisConfig{
		Timeout:   cfg.Whois.Timeout,
		RateLimit: cfg.Whois.RateLimit,
	})
	defer whoisClient.Close()
	service := tools.NewService(buildResolver(cfg, m, whoisClient), m, cfg.Lookup.DefaultConcurrency)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServer(cfg, service)
			return
		case "check":
			if err := runCheck(context.Background(), service, os.Args[2:]); err != nil {
				logrus.Errorf("Check failed: %v", err)
				os.Exit(1)
			}
			return
		case "tools":
			showTools(service)
			return
		case "help":
			showHelp()
			return
		default:
			logrus.Errorf("Unknown command: %s. Use 'help' for usage information.", os.Args[1])
			os.Exit(1)
		}
	}

	runServer(cfg, service)
}

// buildResolver wires the two lookup transports into a resolver
func buildResolver(cfg *config.Config, m *metrics.Metrics, legacy lookup.LegacyTransport) *lookup.Resolver {
	return lookup.NewResolver(lookup.ResolverConfig{
		Registry: lookup.NewRDAPClient(lookup.RDAPConfig{
			BaseURL: cfg.RDAP.BaseURL,
			Timeout: cfg.RDAP.Timeout,
		}),
		Legacy: legacy,
		Retry: lookup.RetryConfig{
			MaxAttempts:  cfg.Retry.Attempts,
			InitialDelay: cfg.Retry.InitialDelay,
			Multiplier:   cfg.Retry.Multiplier,
		},
		ShortBodyThreshold: cfg.Lookup.ShortBodyThreshold,
		Metrics:            m,
	})
}

// runServer runs the HTTP tool server until interrupted
func runServer(cfg *config.Config, service *tools.Service) {
	srv := server.New(cfg.App.ListenAddr, service)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logrus.Errorf("Server failed: %v", err)
		os.Exit(1)
	case sig := <-sigChan:
		logrus.Infof("Received %s, shutting down...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Shutdown failed: %v", err)
		os.Exit(1)
	}
	logrus.Info("Server stopped gracefully")
}

// runCheck performs a one-off batch check from the command line
func runCheck(ctx context.Context, service *tools.Service, domains []string) error {
	if len(domains) == 0 {
		return fmt.Errorf("usage: domain-agent check <domain> [domain...]")
	}

	args, err := json.Marshal(map[string]any{"domains": domains})
	if err != nil {
		return err
	}

	result, err := service.Call(ctx, "check_domains", args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// showTools prints the registered tool definitions
func showTools(service *tools.Service) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(service.Registry().List()); err != nil {
		logrus.Errorf("Failed to encode tools: %v", err)
		os.Exit(1)
	}
}

// showHelp displays usage information
func showHelp() {
	fmt.Printf(`
Domain Agent - Domain Availability Checker

Usage:
  domain-agent [command]

Commands:
  serve    Run the HTTP tool server (default)
  check    Check one or more domains and print the results as JSON
  tools    List the registered tool definitions
  help     Show this help message

Environment Variables:
  LISTEN_ADDR, LOG_LEVEL
  RDAP_BASE_URL, HTTP_TIMEOUT, WHOIS_TIMEOUT, WHOIS_RATE_LIMIT
  RETRY_ATTEMPTS, RETRY_INITIAL_DELAY, RETRY_MULTIPLIER
  DEFAULT_CONCURRENCY, SHORT_BODY_THRESHOLD

Examples:
  domain-agent serve
  domain-agent check example.com example.net
  domain-agent tools
`)
}
