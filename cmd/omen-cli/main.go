package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/peterkuimelis/omen/internal/config"
	"github.com/peterkuimelis/omen/internal/deck"
	"github.com/peterkuimelis/omen/internal/log"
	omennet "github.com/peterkuimelis/omen/internal/net"
	"github.com/peterkuimelis/omen/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "tui":
		runTUI(os.Args[2:])
	case "repl":
		runREPL(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  omen tui  [--config FILE] [--cards N] [--seed S]")
	fmt.Println("  omen repl [--config FILE] [--cards N] [--seed S] [--verbose]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  tui     Study the deck in an animated terminal view")
	fmt.Println("  repl    Drive the deck with line commands")
}

type commonFlags struct {
	configFile *string
	cards      *int
	seed       *int64
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configFile: fs.String("config", "omen.yaml", "path to config YAML file"),
		cards:      fs.Int("cards", 0, "number of cards (overrides config)"),
		seed:       fs.Int64("seed", 0, "rank seed (overrides config)"),
	}
}

func (f commonFlags) load() config.Config {
	cfg, err := config.Load(*f.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *f.cards > 0 {
		cfg.Cards = *f.cards
		cfg.Ranks = nil
	}
	if *f.seed != 0 {
		cfg.Seed = *f.seed
	}
	return cfg
}

func runTUI(args []string) {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)
	cfg := common.load()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	session := deck.NewSession(cfg.SessionConfig(nil, nil))
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = tui.New(screen, session).Run(ctx)
	screen.Fini()
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runREPL(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	common := addCommonFlags(fs)
	verbose := fs.Bool("verbose", false, "log session events to stderr")
	fs.Parse(args)
	cfg := common.load()

	var logger log.EventLogger
	if *verbose {
		logger = log.NewTextLogger(os.Stderr)
	}
	session := deck.NewSession(cfg.SessionConfig(logger, nil))
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := omennet.NewClient(session, os.Stdin, os.Stdout, cfg.ViewportWidth)
	if err := client.RunREPL(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
