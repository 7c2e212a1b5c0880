package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterkuimelis/omen/internal/config"
	"github.com/peterkuimelis/omen/internal/deck"
	omenlog "github.com/peterkuimelis/omen/internal/log"
	"github.com/peterkuimelis/omen/internal/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	configFile := flag.String("config", "omen.yaml", "path to config YAML file")
	verbose := flag.Bool("verbose", false, "log session events to stderr")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var logger omenlog.EventLogger
	if *verbose {
		logger = omenlog.NewTextLogger(os.Stderr)
	}
	session := deck.NewSession(cfg.SessionConfig(logger, nil))
	defer session.Close()

	srv := web.NewServer(session, cfg.ViewportWidth)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("omen web UI listening on http://localhost:%d", *port)
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
