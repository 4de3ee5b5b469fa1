package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwarden/daybook/internal/config"
	"github.com/cwarden/daybook/internal/events"
	"github.com/cwarden/daybook/internal/ui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	cfgFile string
	apiURL  string
	logFile string
	cfg     *config.Config
	logOut  *os.File
)

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "A shared monthly calendar for the terminal",
	Long: `Daybook shows a month at a time and lets anyone add short notes to a
day or remove them. Events live on a small REST backend so everyone
sees the same calendar.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logOut != nil {
			logOut.Close()
			logOut = nil
		}
	},
	RunE: runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the events backend")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg)

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "daybook")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logOut = f
	}
	return nil
}

// applyFlags lets command-line flags win over every other source.
func applyFlags(c *config.Config) {
	if apiURL != "" {
		c.APIURL = apiURL
	}
	if logFile != "" {
		c.LogFile = logFile
	}
}

func newClient(c *config.Config) *events.Client {
	return events.NewClient(c.APIURL,
		events.WithTimeout(c.RequestTimeout),
		events.WithUserAgent("daybook/"+version),
	)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal.
	if logOut == nil {
		log.SetOutput(io.Discard)
	}

	model := ui.NewModel(cfg, newClient(cfg),
		ui.WithSourceFactory(func(c *config.Config) events.Source { return newClient(c) }),
	)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.Path != "" {
		base := cfg
		watcher, err := config.NewFileWatcher(func(path string) {
			fresh, err := base.Reload()
			if err == nil {
				applyFlags(fresh)
			}
			p.Send(ui.ConfigChanged(fresh, err))
		})
		if err != nil {
			log.Printf("config watcher unavailable: %v", err)
		} else {
			defer watcher.Close()
			if err := watcher.AddFile(cfg.Path); err != nil {
				log.Printf("cannot watch %s: %v", cfg.Path, err)
			}
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
