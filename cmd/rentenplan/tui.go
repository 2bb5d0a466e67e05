package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/config"
	"github.com/vorsorge/rentenplan/internal/store"
	"github.com/vorsorge/rentenplan/internal/tui"
)

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [input-file]",
		Short: "Tune plans interactively and watch the comparison update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("config file not found: %s", args[0])
			}

			opts := tui.Options{ConfigPath: args[0]}
			opts.RegulatoryPath, _ = cmd.Flags().GetString("regulatory-config")
			opts.Debounce, _ = cmd.Flags().GetDuration("debounce")

			// the terminal belongs to the TUI, so debug output goes to a file
			if debugOn, _ := cmd.Flags().GetBool("debug"); debugOn {
				f, err := tea.LogToFile("rentenplan-debug.log", "")
				if err != nil {
					return err
				}
				defer f.Close()
				opts.Logger = simpleCLILogger{}
			} else {
				log.SetOutput(io.Discard)
				opts.Logger = calculation.NopLogger{}
			}

			if save, _ := cmd.Flags().GetBool("save"); save {
				cfg, err := config.LoadServerConfig(".env")
				if err != nil {
					return err
				}
				repo, err := store.New(commandContext(cmd), cfg)
				if err != nil {
					return err
				}
				defer repo.Close()
				opts.Repository = repo
			}

			p := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().String("regulatory-config", "", "Path to an additional tax-year file")
	cmd.Flags().Duration("debounce", tui.DefaultDebounce, "Delay after the last change before recalculating")
	cmd.Flags().Bool("save", false, "Enable ctrl+s, storing drafts in the backend configured for serve")
	return cmd
}
