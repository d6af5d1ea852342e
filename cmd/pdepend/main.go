package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/report"
	"github.com/rouffj/pdepend/internal/version"
)

// outputFlags are shared by analyze and watch.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format: " + strings.Join(report.Formats, ", "),
			Value:   report.FormatText,
		},
		&cli.StringSliceFlag{
			Name:    "analyzer",
			Aliases: []string{"a"},
			Usage:   "Analyzers to run (repeatable, overrides config): " + strings.Join(config.KnownAnalyzers, ", "),
		},
		&cli.StringSliceFlag{
			Name:  "coderank-mode",
			Usage: "Code rank edge strategies (repeatable): inheritance, property, method",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Directory for the parsed unit cache (overrides config)",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Disable the unit cache",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "Parallel parsers (0 = auto)",
		},
		&cli.BoolFlag{
			Name:    "show-lines",
			Aliases: []string{"l"},
			Usage:   "Show file and line of each declaration in text output",
		},
		&cli.BoolFlag{
			Name:    "show-metrics",
			Aliases: []string{"m"},
			Usage:   "Show node metrics in text output",
			Value:   true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to a file instead of stdout",
		},
	}
}

func newApp() *cli.App {
	var cleanupFuncs []func()

	return &cli.App{
		Name:                   "pdepend",
		Usage:                  "Static software metrics for PHP code",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .pdepend.kdl or pdepend.toml in the root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to analyze (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/Tests/**')",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output to a log file in the temp directory",
			},
			&cli.StringFlag{
				Name:   "profile-cpu",
				Usage:  "Write CPU profile to file (e.g., --profile-cpu cpu.prof)",
				Hidden: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "analyze",
				Aliases: []string{"a"},
				Usage:   "Analyze the project once and print the report",
				Flags:   outputFlags(),
				Action:  analyzeCommand,
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Analyze, then analyze again whenever a PHP file changes",
				Flags: append(outputFlags(), &cli.IntFlag{
					Name:  "debounce",
					Usage: "Milliseconds to wait for more changes (overrides config)",
				}),
				Action: watchCommand,
			},
			{
				Name:  "mcp",
				Usage: "Serve analyses to MCP clients over stdio",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Directory for the parsed unit cache (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Disable the unit cache",
					},
				},
				Action: mcpCommand,
			},
			{
				Name:   "files",
				Usage:  "List the files that would be analyzed",
				Action: filesCommand,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					return nil
				},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				os.Setenv("DEBUG", "1")
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return fmt.Errorf("failed to open debug log: %w", err)
				}
				fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", path)
				cleanupFuncs = append(cleanupFuncs, func() { debug.CloseDebugLog() })
			}

			if cpuProfilePath := c.String("profile-cpu"); cpuProfilePath != "" {
				f, err := os.Create(cpuProfilePath)
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(f); err != nil {
					f.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				cleanupFuncs = append(cleanupFuncs, func() {
					pprof.StopCPUProfile()
					f.Close()
				})
			}
			return nil
		},
		After: func(c *cli.Context) error {
			for i := len(cleanupFuncs) - 1; i >= 0; i-- {
				cleanupFuncs[i]()
			}
			cleanupFuncs = nil
			return nil
		},
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
