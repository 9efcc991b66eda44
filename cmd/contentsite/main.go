package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set at build time via ldflags.
var version = "dev"

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI is the command line of the contentsite binary.
type CLI struct {
	Env     string `help:"Dotenv file loaded before reading configuration" default:".env" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve the site over HTTP"`
	Export  ExportCmd  `cmd:"" help:"Render the published site to static files"`
	Import  ImportCmd  `cmd:"" help:"Load a YAML content bundle into the database and announce the change"`
	Version VersionCmd `cmd:"" help:"Print the contentsite version"`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Printf("contentsite %s\n", version)
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("contentsite"),
		kong.Description("A content-managed publishing site built with Go, Echo, and templ."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := godotenv.Load(cli.Env); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to load env file", "path", cli.Env, "error", err)
	}

	if err := kctx.Run(&Global{Logger: logger}); err != nil {
		logger.Error("Command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
