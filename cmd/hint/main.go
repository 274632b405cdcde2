// cmd/hint/main.go
//
// This is the entry point for hint, an incremental Hacker News reader.
// When you run `hint` from any directory, this is what executes.
//
// Flow:
// 1. Resolve the config directory and load config.yaml
// 2. Fetch the ranked story ids for the chosen feed, once
// 3. Start the background updater that fills the board story by story
// 4. Run the TUI until the user quits

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/hintapp/hint/internal/config"
	"github.com/hintapp/hint/internal/feed"
	"github.com/hintapp/hint/internal/hn"
	"github.com/hintapp/hint/internal/logbook"
	"github.com/hintapp/hint/internal/tui"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hint: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		feedName  string
		limit     int
		interval  time.Duration
		configDir string
	)
	flagSet := pflag.NewFlagSet("hint", pflag.ContinueOnError)
	flagSet.StringVar(&feedName, "feed", "", "feed to read: top, new, ask, show or job")
	flagSet.IntVar(&limit, "limit", 0, "how many stories to materialize")
	flagSet.DurationVar(&interval, "interval", 0, "pause between consecutive story fetches")
	flagSet.StringVar(&configDir, "config-dir", "", "directory holding config.yaml and the log")
	showVersion := flagSet.Bool("version", false, "print the version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if *showVersion {
		fmt.Printf("hint %s\n", version)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	dir, err := config.ResolveDir(configDir)
	if err != nil {
		return err
	}
	if err := config.InitDir(dir); err != nil {
		return err
	}
	cfg, err := config.New(dir)
	if err != nil {
		return err
	}

	// Flags override whatever the file and environment decided.
	if flagSet.Changed("feed") {
		cfg.Feed = hn.Feed(feedName)
	}
	if flagSet.Changed("limit") {
		cfg.Limit = limit
	}
	if flagSet.Changed("interval") {
		cfg.FetchInterval = interval
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return err
	}
	defer lb.Close()
	lb.Info("session started · feed=%s limit=%d", cfg.Feed, cfg.Limit)

	client := hn.NewClient(cfg.BaseURL, cfg.RequestTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The id list is fetched exactly once per run. A failure degrades to
	// an empty feed so the TUI still comes up and explains itself.
	ids := fetchIDs(ctx, client, cfg, lb)

	board, err := feed.NewBoard(client, ids, cfg.Limit)
	if err != nil {
		return err
	}

	deliveries := make(chan feed.Story, feed.DeliveryBuffer)
	updater, err := feed.NewUpdater(board, deliveries,
		feed.WithInterval(cfg.FetchInterval),
		feed.WithMaxAttempts(cfg.MaxAttempts),
		feed.WithLogbook(lb),
	)
	if err != nil {
		return err
	}
	go func() {
		if err := updater.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			lb.Error("updater stopped: %v", err)
		}
	}()

	app := tui.NewApp(board, deliveries,
		tui.WithLogbook(lb),
		tui.WithFeedLabel(cfg.Feed.Label()),
	)
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	cancel()
	lb.Info("session ended")
	return nil
}

func fetchIDs(ctx context.Context, client *hn.Client, cfg *config.Config, lb *logbook.Logbook) []uint64 {
	fetchCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	ids, err := client.Stories(fetchCtx, cfg.Feed)
	if err != nil {
		lb.Warn("id fetch failed, starting with an empty feed: %v", err)
		return nil
	}
	lb.Info("fetched %d ranked ids from the %s feed", len(ids), cfg.Feed)
	return ids
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `hint — read Hacker News one story at a time.

hint fetches the ranked id list for a feed once, then materializes
stories in rank order in the background while you read. Configuration
lives in %s/config.yaml; flags and HINT_* environment
variables override it.

Usage:
  hint [flags]

Flags:
%s`, "$XDG_CONFIG_HOME/hint", flagSet.FlagUsages())
}
