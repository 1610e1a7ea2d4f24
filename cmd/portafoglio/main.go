// Command portafoglio runs the budget core as a JSON-lines service over
// stdin/stdout: each input line is an action request, each output line the
// matching response envelope. State lives in memory for the lifetime of
// the process.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"portafoglio/internal/config"
	"portafoglio/internal/dispatch"
	"portafoglio/internal/log"
	"portafoglio/internal/wallet"
)

var cli struct {
	EnvFile  string `help:"Env file to load before reading configuration." default:".env"`
	LogLevel string `help:"Override LOG_LEVEL (debug, info, warn, error)."`
	Pretty   bool   `help:"Indent response JSON."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("portafoglio"),
		kong.Description("In-memory budget tracker core speaking JSON lines on stdio."),
	)

	// Missing env file is fine; the environment may already be set.
	_ = godotenv.Load(cli.EnvFile)

	cfg := config.Load()
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Responses own stdout, so log records go to stderr.
	level := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:   level,
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	})
	log.SetDefault(logger)

	manager := wallet.NewManager(logger)
	manager.Scheduler().MaxBackfill = cfg.SchedulerMaxBackfill
	dispatcher := dispatch.New(manager, logger)
	dispatcher.DefaultCurrency = cfg.DefaultCurrency

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("started", "log_level", cfg.LogLevel, "default_currency", cfg.DefaultCurrency)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serve(ctx, dispatcher, os.Stdin, os.Stdout, cli.Pretty)
	})
	g.Go(func() error {
		<-ctx.Done()
		return ctx.Err()
	})
	if err := g.Wait(); err != nil && err != context.Canceled && err != io.EOF {
		logger.Error("exited", "error", err)
		os.Exit(1)
	}
	logger.Info("bye")
}

// serve reads one flattened request object per line ({"action": ...,
// other keys are parameters}) and writes one response envelope per line.
func serve(ctx context.Context, d *dispatch.Dispatcher, in io.Reader, out io.Writer, pretty bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw map[string]any
		resp := dispatch.Response{Status: dispatch.StatusError, Data: map[string]any{}}
		if err := json.Unmarshal(line, &raw); err != nil {
			resp.Message = "invalid request: not a JSON object"
		} else {
			action, _ := raw["action"].(string)
			delete(raw, "action")
			resp = d.Handle(dispatch.Request{Action: action, Params: dispatch.Params(raw)})
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
