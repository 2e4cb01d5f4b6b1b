package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/parley-sh/parley"
	"github.com/parley-sh/parley/api"
	"github.com/parley-sh/parley/config"
	"github.com/parley-sh/parley/contract"
	"github.com/parley-sh/parley/version"
)

func main() {
	configPath := flag.String("config", "configs/agent.local.yaml", "path to config file")
	title := flag.String("title", "parley demo", "conversation title")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting parley agent",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, *title, logger); err != nil {
		logger.Error("agent failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, title string, logger *slog.Logger) error {
	client := parley.NewClient(cfg, parley.WithLogger(logger))

	conv, err := client.API().CreateConversation(ctx, api.CreateConversationRequest{
		Title:     title,
		AgentName: cfg.Agent.Name,
	})
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	logger.Info("conversation created", "id", conv.ID)

	invite, err := client.API().CreateInviteLink(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("create invite link: %w", err)
	}
	fmt.Printf("invite a human to respond: %s\n", invite.URL)

	sess, err := client.OpenSession(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	msgID, err := sess.Log(ctx, "Agent is online and waiting for review.")
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	logger.Info("notification acknowledged", "message_id", msgID)

	resp, err := sess.Ask(ctx, "Ready to proceed with the plan?", []contract.Input{
		contract.Confirm("approved", "Approve the plan"),
		contract.Text("notes", "Anything to add?"),
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if resp.IsRaw() {
		logger.Info("free-text answer", "text", resp.Raw())
		return nil
	}
	logger.Info("structured answer",
		"approved", resp.Bool("approved"),
		"notes", resp.String("notes"),
	)
	return nil
}
