// Package insights turns an anomaly report plus the window metrics into a
// short narrative using Gemini. The model is instructed to return strict
// JSON; markdown fences are stripped defensively before unmarshalling.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/acarvalho/p2p-quality/internal/domain"
	"github.com/acarvalho/p2p-quality/internal/metrics"
)

const DefaultModelName = "gemini-2.0-flash"

// Insights is the model's structured answer.
type Insights struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// Generate asks the model for a data-quality narrative over one run.
func Generate(ctx context.Context, window domain.AnalysisWindow, report domain.AnomalyReport, summary metrics.Summary) (*Insights, error) {
	prompt, err := buildPrompt(window, report, summary)
	if err != nil {
		return nil, fmt.Errorf("Generate: building prompt: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, DefaultModelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Generate: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Generate: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var insights Insights
	if err := json.Unmarshal([]byte(clean), &insights); err != nil {
		return nil, fmt.Errorf("Generate: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	return &insights, nil
}

// buildPrompt renders the report and metrics as JSON inside a strict-output
// instruction block.
func buildPrompt(window domain.AnalysisWindow, report domain.AnomalyReport, summary metrics.Summary) (string, error) {
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	metricsJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a data quality analyst for a peer-to-peer payments platform.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Review the anomaly report and business metrics for the analysis window ")
	b.WriteString(window.String())
	b.WriteString(".\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object with these fields:\n")
	b.WriteString("  - \"summary\": string, 2-4 sentences on the overall data quality\n")
	b.WriteString("  - \"recommendations\": array of strings, each one concrete action\n\n")

	b.WriteString("Anomaly report (bad_rows per category):\n")
	b.Write(reportJSON)
	b.WriteString("\n\nBusiness metrics over the cleaned data:\n")
	b.Write(metricsJSON)
	b.WriteString("\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Call out the categories with the largest bad_rows counts first.\n")
	b.WriteString("- Recommendations must name the affected dataset (users, transactions or app_events).\n")
	b.WriteString("- Return ONLY valid raw JSON.\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	b.WriteString("- Do NOT use ```json or any Markdown.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n")

	return b.String(), nil
}

// cleanModelJSON strips markdown fences and surrounding junk if the model
// ignored the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the outermost JSON object if junk remains around it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
