package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/job-advisor/internal/dialogue"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Print the job catalog",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		c := setup(ctx)
		defer c.Close()

		fmt.Println(dialogue.RenderJobs(c.catalog.ListAll()))
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}
