package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vorsorge/rentenplan/internal/config"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/server"
	"github.com/vorsorge/rentenplan/internal/store"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Long: `Serves the calculation engines over HTTP.

Settings come from the environment (a .env file is read first):
  RENTENPLAN_ADDR             listen address (default :8080)
  RENTENPLAN_STORE            memory, redis or postgres (default memory)
  REDIS_URL, DATABASE_URL     connection strings for the draft store
  RENTENPLAN_DRAFT_TTL        lifetime of drafts in redis (default 720h)
  RENTENPLAN_REGULATORY_FILE  additional tax-year file
  RENTENPLAN_MAX_BODY_SIZE    request body limit in bytes
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			cfg, err := config.LoadServerConfig(envFile)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}

			var extra *domain.RegulatoryConfig
			if cfg.RegulatoryFile != "" {
				if extra, err = config.NewInputParser().LoadRegulatoryConfig(cfg.RegulatoryFile); err != nil {
					return err
				}
			}
			year, _ := cmd.Flags().GetInt("year")
			rules, err := config.RulesForYear(year, extra)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := simpleCLILogger{}
			repo, err := store.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()
			log.Infof("draft store: %s", cfg.StoreBackend)

			srv := server.New(rules, repo, log)
			srv.MaxBodySize = cfg.MaxBodySize
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides RENTENPLAN_ADDR)")
	cmd.Flags().String("env-file", ".env", "Environment file to load")
	cmd.Flags().Int("year", 0, "Tax year (default: built-in year)")
	return cmd
}
