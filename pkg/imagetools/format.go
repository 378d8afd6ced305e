package imagetools

import (
	"fmt"
	"regexp"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/fal"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/slackclient"
	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/toolerr"
)

// formatEditSummary renders the result of a modify step. The "**Result:**"
// line is load-bearing: ExtractResultURL recovers the URL from it, so any
// phrasing change here must keep that marker.
func formatEditSummary(r *fal.EditResult) string {
	return fmt.Sprintf("✅ Image edited successfully!\n\n**Model:** %s\n**Prompt:** %s\n**Result:** %s",
		r.ModelLabel, r.Prompt, r.URL)
}

// formatPostedSummary renders the result of a modify-then-post workflow.
func formatPostedSummary(r *fal.EditResult, post *slackclient.PostResult) string {
	return fmt.Sprintf("✅ Image edited and posted to Slack!\n\n**Model:** %s\n**Prompt:** %s\n**Result:** %s\n**Posted to:** %s",
		r.ModelLabel, r.Prompt, r.URL, post.Channel)
}

var resultPattern = regexp.MustCompile(`\*\*Result:\*\* (\S+)`)

// ExtractResultURL recovers the result URL from a rendered edit summary.
// Workflows inside this package pass the typed result along instead, but
// callers that only hold the rendered text (and this package's own tests,
// which pin the summary format) use this.
func ExtractResultURL(summary string) (string, error) {
	m := resultPattern.FindStringSubmatch(summary)
	if m == nil {
		return "", toolerr.New(toolerr.ResultExtractionFailed, "no result URL marker in summary")
	}

	return m[1], nil
}
