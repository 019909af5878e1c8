// Package classify assigns a civic issue category to report text.
// Keyword rules run first; an optional LLM call covers text no rule
// matches. Every failure path falls back to the catch-all category, so
// classification never blocks a submission.
package classify

import (
	"context"
	"log"
	"strings"

	"github.com/RadieNoice/Namma-City/internal/llm"
)

// Civic issue categories.
const (
	CategoryRoads       = "Roads and Infrastructure"
	CategorySanitation  = "Sanitation and Cleanliness"
	CategoryElectricity = "Electricity and Power"
	CategoryWater       = "Water Supply"
	CategoryTraffic     = "Traffic and Transportation"
	CategorySafety      = "Public Safety"
	CategoryOther       = "Other Issues"
)

// Categories lists every known category, catch-all last.
var Categories = []string{
	CategoryRoads,
	CategorySanitation,
	CategoryElectricity,
	CategoryWater,
	CategoryTraffic,
	CategorySafety,
	CategoryOther,
}

// categoryKeywords drives the rule-based pass.
var categoryKeywords = map[string][]string{
	CategoryRoads:       {"pothole", "road", "footpath", "sidewalk", "pavement", "bridge", "manhole"},
	CategorySanitation:  {"garbage", "trash", "waste", "sewage", "drain", "litter", "dump"},
	CategoryElectricity: {"streetlight", "street light", "power", "electric", "transformer", "wire", "outage"},
	CategoryWater:       {"water", "pipeline", "leak", "tap", "borewell", "tanker"},
	CategoryTraffic:     {"traffic", "signal", "parking", "bus stop", "congestion", "jaywalk"},
	CategorySafety:      {"unsafe", "crime", "theft", "harassment", "stray dog", "accident", "danger"},
}

// Classifier assigns categories to report text.
type Classifier struct {
	llm llm.Provider // may be nil: rules only
}

// New creates a classifier. provider may be nil to disable the LLM
// fallback.
func New(provider llm.Provider) *Classifier {
	return &Classifier{llm: provider}
}

// Classify returns the category for the given report text. It never
// returns an error path the caller must handle: anything unmatched and
// unclassifiable is Other Issues.
func (c *Classifier) Classify(ctx context.Context, text string) string {
	if category := classifyByRules(text); category != "" {
		return category
	}

	if c.llm == nil {
		return CategoryOther
	}

	category, err := c.classifyByLLM(ctx, text)
	if err != nil {
		log.Printf("Warning: LLM category classification failed: %v", err)
		return CategoryOther
	}
	return category
}

// classifyByRules picks the category with the most keyword hits.
func classifyByRules(text string) string {
	lower := strings.ToLower(text)

	best := ""
	bestHits := 0
	for _, category := range Categories {
		hits := 0
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = category
			bestHits = hits
		}
	}
	return best
}

// classifyByLLM asks the chat model to pick exactly one category.
func (c *Classifier) classifyByLLM(ctx context.Context, text string) (string, error) {
	system := `You are a civic issue classification assistant. Pick the single best
category for the report. Reply with the category name only, nothing else.`

	prompt := "Report: " + text + "\n\nCategories: " + strings.Join(Categories, ", ")

	reply, err := c.llm.CompleteWithSystem(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	for _, category := range Categories {
		if strings.EqualFold(reply, category) {
			return category, nil
		}
	}
	return CategoryOther, nil
}
