package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/infrastructure/obs"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

// nearestPerCategory limits how many places per category go into the prompt.
const nearestPerCategory = 3

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// SummarizeLocation writes a short narrative of the report. When the API
// fails the deterministic summary is returned instead.
func (c *GeminiClient) SummarizeLocation(ctx context.Context, profile *domain.DistanceProfile) (_ string, err error) {
	defer obs.Time(ctx, "gemini.SummarizeLocation")(&err)

	prompt := fmt.Sprintf(`
		You are helping a real estate agent describe a location to buyers.
		Nearby amenities by category (name, distance in meters):
		%s
		Task: Write a short, friendly summary (2-3 sentences) of what is within reach.
		Mention the closest notable amenities. Do not invent places.
		Output: Just the summary text.
	`, describeLineItems(profile))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("req_id=%s gemini unavailable, using fallback summary err=%v", obs.RequestID(ctx), err)
		return FallbackSummary(profile), nil
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return FallbackSummary(profile), nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return FallbackSummary(profile), nil
	}
	return text, nil
}

func describeLineItems(profile *domain.DistanceProfile) string {
	var sb strings.Builder
	for _, item := range profile.LineItems {
		label := string(item.Category)
		if info, ok := item.Category.Info(); ok {
			label = info.Label
		}
		fmt.Fprintf(&sb, "- %s (within %dm):", label, item.RadiusMeters)
		if len(item.Places) == 0 {
			sb.WriteString(" none\n")
			continue
		}
		for i, p := range item.Places {
			if i == nearestPerCategory {
				break
			}
			fmt.Fprintf(&sb, " %s %.0fm;", p.Name, p.DistanceMeters)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FallbackSummary builds a plain summary from the nearest place of each
// category. It is used when no language model is available.
func FallbackSummary(profile *domain.DistanceProfile) string {
	var parts []string
	var missing []string
	for _, item := range profile.LineItems {
		label := strings.ToLower(string(item.Category))
		if info, ok := item.Category.Info(); ok {
			label = strings.ToLower(info.Label)
		}
		if len(item.Places) == 0 {
			missing = append(missing, label)
			continue
		}
		nearest := item.Places[0]
		parts = append(parts, fmt.Sprintf("%s (%s, %.0f m)", label, nearest.Name, nearest.DistanceMeters))
	}

	if len(parts) == 0 {
		return "No nearby amenities were found within the selected distances."
	}

	summary := "Nearby: " + strings.Join(parts, "; ") + "."
	if len(missing) > 0 {
		summary += " No " + strings.Join(missing, ", ") + " within the selected distances."
	}
	return summary
}

// TemplateSummarizer summarizes without a language model.
type TemplateSummarizer struct{}

func (TemplateSummarizer) SummarizeLocation(ctx context.Context, profile *domain.DistanceProfile) (string, error) {
	return FallbackSummary(profile), nil
}
