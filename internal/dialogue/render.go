package dialogue

import (
	"strconv"
	"strings"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/matching"
)

const (
	Greeting          = "Hello! How can I help you today?\n\n- See all available jobs\n- Find out which jobs you qualify for"
	Farewell          = "Goodbye!"
	ChoicePrompt      = "Please type 'see jobs' or 'qualify'."
	QualificationAsk  = "What's your qualification? (bachelors/masters or 'none')"
	SkillsAsk         = "What skills do you have? (comma separated or 'none')"
	FieldsAsk         = "Which fields interest you? (comma separated or 'none')"
	SalaryAsk         = "What's your minimum salary expectation? (number or 'skip')"
	NoMatches         = "No suitable jobs found."
	NoTopJob          = "No top job available to show."
	NoJobs            = "No jobs are available right now."
	detailQuestion    = "Would you like to see details for the top job?"
	matchesHeader     = "**Your top job matches:**"
	availableHeader   = "**Available Jobs:**"
	topDetailHeader   = "**Top Job Detail:**"
	percentageDecimal = 1
)

// RenderJobs lists every job with all of its attributes.
func RenderJobs(jobs []catalog.JobRecord) string {
	if len(jobs) == 0 {
		return NoJobs
	}

	var b strings.Builder
	b.WriteString(availableHeader)
	for _, job := range jobs {
		b.WriteString("\n\n---\n")
		b.WriteString("**Title:** " + job.Title + "\n")
		b.WriteString("**Field:** " + job.Field + "\n")
		b.WriteString("**Skills:** " + strings.Join(job.Skills, ", ") + "\n")
		b.WriteString("**Qualification:** " + job.Qualification + "\n")
		b.WriteString("**City:** " + job.City + "\n")
		b.WriteString("**Salary:** " + job.Salary)
	}
	return b.String()
}

// RenderMatches summarizes ranked results as titles with their percentage.
func RenderMatches(results []matching.Result) string {
	if len(results) == 0 {
		return NoMatches
	}

	var b strings.Builder
	b.WriteString(matchesHeader)
	for _, r := range results {
		b.WriteString("\n\n- **" + r.Job.Title + "** (" + FormatPercentage(r.Score) + "% match)")
	}
	b.WriteString("\n\n" + detailQuestion)
	return b.String()
}

// RenderDetail shows the full record of a job.
func RenderDetail(job catalog.JobRecord) string {
	return topDetailHeader + "\n\n" +
		"- **Title:** " + job.Title + "\n" +
		"- **Field:** " + job.Field + "\n" +
		"- **Skills:** " + strings.Join(job.Skills, ", ") + "\n" +
		"- **Qualification:** " + job.Qualification + "\n" +
		"- **City:** " + job.City + "\n" +
		"- **Salary:** " + job.Salary
}

// FormatPercentage prints a percentage with one decimal, e.g. 60.0.
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', percentageDecimal, 64)
}
