// Package cli provides the command-line interface for uicheck.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to workspace config.yaml (default: ./config.yaml when present)",
		EnvVars: []string{"UICHECK_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Driver to use (htmldoc, browser)",
		EnvVars: []string{"UICHECK_DRIVER"},
	},
	&cli.StringFlag{
		Name:    "browser",
		Usage:   "Browser engine for the browser driver (chromium, firefox, webkit)",
		EnvVars: []string{"UICHECK_BROWSER"},
	},
	&cli.BoolFlag{
		Name:  "headless",
		Usage: "Run the browser without a window",
		Value: true,
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable debug logging",
		EnvVars: []string{"UICHECK_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Log file (default: <output>/uicheck.log)",
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// stdout receives all console output.
var stdout io.Writer = color.Output

// NewApp builds the command tree.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "uicheck",
		Usage:   "Declarative UI verification for web pages",
		Version: Version,
		Description: `uicheck verifies pages against YAML check files: elements are
declared once, then each check block lists the properties every element
must have. All mismatches of a scenario are collected and reported
together.

Examples:
  uicheck verify checks/
  uicheck verify login.yaml -e USER=test --locale fr --locales locales/
  uicheck --driver browser verify checks/ --parallel 4
  uicheck validate checks/
  uicheck report reports/2026-01-01_10-00-00 --allure`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			verifyCommand,
			validateCommand,
			reportCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
