package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/dialogue"
	"github.com/spigell/job-advisor/internal/matching"
	"github.com/spigell/job-advisor/internal/profile"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the catalog for a profile given on the command line",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("qualification", "q", "", "qualification, e.g. bachelors. Default is no preference")
	matchCmd.Flags().StringP("skills", "s", "", "comma separated skills")
	matchCmd.Flags().StringP("fields", "f", "", "comma separated fields of interest")
	matchCmd.Flags().String("min-salary", "", "minimum salary; empty or 'skip' for none")
	matchCmd.Flags().Int("show", 0, "how many matches to print. Default is matching.show from the config")

	viper.BindPFlag("matching.show", matchCmd.Flags().Lookup("show"))
}

func match(cmd *cobra.Command) {
	ctx := cmd.Context()
	c := setup(ctx)
	defer c.Close()

	qualification, _ := cmd.Flags().GetString("qualification")
	skills, _ := cmd.Flags().GetString("skills")
	fields, _ := cmd.Flags().GetString("fields")
	minSalary, _ := cmd.Flags().GetString("min-salary")

	p := profile.UserProfile{
		Qualification: c.normalizer.Qualification(qualification),
		Skills:        c.normalizer.List(skills),
		Fields:        c.normalizer.List(fields),
		MinSalary:     profile.ParseSalary(minSalary),
	}

	results, err := c.ranker.Rank(ctx, p, c.catalog.ListAll())
	if err != nil {
		c.logger.Fatal("ranking jobs", zap.Error(err))
	}

	printResults(matching.Top(results, c.config.Matching.Show))
}

func printResults(results []matching.Result) {
	if len(results) == 0 {
		fmt.Println(dialogue.NoMatches)
		return
	}

	for i, r := range results {
		fmt.Printf("%2d. %-30s %6s%%  (qualification %.0f, skills %.2f, field %.0f)  %s, %s\n",
			i+1, r.Job.Title, dialogue.FormatPercentage(r.Score),
			r.Breakdown.Qualification, r.Breakdown.Skills, r.Breakdown.Field,
			r.Job.City, r.Job.Salary,
		)
	}
}
