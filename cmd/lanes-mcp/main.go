package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/lane-tools/internal/config"
	"github.com/ironsheep/lane-tools/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("lane-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("lane-tools-mcp - MCP server for lane boundary detection")
			fmt.Println()
			fmt.Println("Usage: lane-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  LANES_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  LANES_CONFIG=<path>      Tuning file (.json) used for every call")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Logs go to stderr; stdout is for MCP protocol
	log := server.NewStderrLog(os.Getenv("LANES_LOG_LEVEL") == "debug")
	log.Debugf("Lane MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	cfg := config.EmptyConfig()
	if path := os.Getenv("LANES_CONFIG"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			log.Errorf("Config error: %v", err)
			os.Exit(1)
		}
		cfg = loaded
		log.Infof("Loaded tuning from %s", path)
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Errorf("Server error: %v", err)
		os.Exit(1)
	}
	if err := srv.Run(); err != nil {
		log.Errorf("Server error: %v", err)
		os.Exit(1)
	}
}
