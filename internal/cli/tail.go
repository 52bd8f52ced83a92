package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/embertail-io/embertail/internal/config"
	"github.com/embertail-io/embertail/internal/remote"
	"github.com/embertail-io/embertail/internal/session"
	"github.com/embertail-io/embertail/internal/sink"
	"github.com/embertail-io/embertail/internal/tui"
)

func configDefaultPath() (string, error) {
	return config.DefaultConfigFile()
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if cfg.Interactive != nil {
		interactive = *cfg.Interactive
	}

	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var name string
	if len(args) > 0 {
		name = args[0]
	}
	profile, err := config.ResolveProfile(cfg, name, interactive, tui.PickProfile, logger)
	if err != nil {
		if errors.Is(err, config.ErrNoSelection) {
			fmt.Println(styleHint.Render("No profile selected."))
			return nil
		}
		return err
	}

	client, err := remote.NewClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if profile.Token == "" {
		if err := client.Authorize(ctx, &profile); err != nil {
			return err
		}
		logger.Debug("obtained initial token", "profile", profile.Name)
	}

	engine, err := session.New(session.Config{
		Fetcher:    client,
		Sink:       sink.ForSession(cfg.Forward, os.Stdout),
		SelectLogs: tui.PickLogs,
		Logger:     logger,
		Debug:      flagDebug,
	}, profile)
	if err != nil {
		return err
	}

	fmt.Println(styleBrand.Render("embertail") + " " + styleLabel.Render("tailing") + " " + styleValue.Render(profile.Host))
	if err := engine.Run(ctx, interactive); err != nil {
		if errors.Is(err, session.ErrSelectionCancelled) {
			fmt.Println(styleHint.Render("No logs selected."))
			return nil
		}
		return err
	}
	fmt.Println(styleSuccess.Render("Stopped."))
	return nil
}
