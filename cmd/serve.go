package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/dialogue"
	"github.com/spigell/job-advisor/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the job advisor as MCP tools over stdio",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		c := setup(ctx)
		defer c.Close()

		engine, err := c.newEngine(ctx)
		if err != nil {
			c.logger.Fatal("preparing the dialogue", zap.Error(err))
		}

		srv := mcpserver.New(app, version, mcpserver.Deps{
			Manager:    dialogue.NewManager(engine, c.logger),
			Catalog:    c.catalog,
			Ranker:     c.ranker,
			Normalizer: c.normalizer,
			Show:       c.config.Matching.Show,
			Logger:     c.logger,
		})

		if err := srv.ServeStdio(); err != nil {
			c.logger.Fatal("serving mcp", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
