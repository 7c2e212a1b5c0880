package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/omen/internal/config"
	omenmcp "github.com/peterkuimelis/omen/internal/mcp"
)

func main() {
	configFile := flag.String("config", "omen.yaml", "path to config YAML file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	omenmcp.SetConfig(cfg)

	s := server.NewMCPServer("omen", "1.0.0")
	omenmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
