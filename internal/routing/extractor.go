// Package routing extracts a typed routing decision from a generative
// model's free-text reply. The model is asked for four labeled lines;
// the parser tolerates any reply shape and collapses gaps to documented
// defaults, so a malformed reply never blocks a submission.
package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/RadieNoice/Namma-City/internal/config"
	"github.com/RadieNoice/Namma-City/internal/llm"
	"github.com/RadieNoice/Namma-City/pkg/models"
)

// Decision is the always-complete routing outcome for a novel report.
// All four fields are populated, either parsed from the model reply or
// filled with the configured defaults.
type Decision struct {
	Department    string `json:"department"`
	Priority      string `json:"priority"`
	EstimatedTime string `json:"estimated_time"`
	UserMessage   string `json:"user_message"`
}

// parsed is the raw extraction before defaults are applied. Missing
// records which labels the reply did not provide, so tests can tell
// "upstream gave everything" from "defaults were substituted".
type parsed struct {
	Department    string
	Priority      string
	EstimatedTime string
	UserMessage   string
	Missing       []string
}

// reply labels, in prompt order.
const (
	labelDepartment = "Department:"
	labelTime       = "Estimated Time:"
	labelPriority   = "Priority:"
	labelResponse   = "Response:"
)

// Extractor routes novel reports via a chat model.
type Extractor struct {
	llm      llm.Provider
	defaults config.RoutingConfig
}

// NewExtractor creates a routing extractor. provider may be nil, in
// which case Route always fails with the unavailable error and callers
// substitute Defaults().
func NewExtractor(provider llm.Provider, defaults config.RoutingConfig) *Extractor {
	return &Extractor{llm: provider, defaults: defaults}
}

// Defaults returns the fully-defaulted decision used when the routing
// service is unavailable.
func (e *Extractor) Defaults() Decision {
	return Decision{
		Department:    e.defaults.DefaultDepartment,
		Priority:      models.NormalizePriority(e.defaults.DefaultPriority),
		EstimatedTime: e.defaults.DefaultTime,
		UserMessage:   e.defaults.DefaultMessage,
	}
}

// Route asks the model to route the report and parses its reply.
// Malformed replies never error; only an upstream call failure returns
// models.ErrRoutingUnavailable.
func (e *Extractor) Route(ctx context.Context, text, categoryHint string) (Decision, error) {
	if e.llm == nil {
		return Decision{}, fmt.Errorf("%w: no provider configured", models.ErrRoutingUnavailable)
	}

	reply, err := e.llm.CompleteWithSystem(ctx, routingSystemPrompt, buildPrompt(text, categoryHint))
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", models.ErrRoutingUnavailable, err)
	}

	return e.collapse(parseReply(reply)), nil
}

const routingSystemPrompt = `You are a civic issue routing assistant. Based on the issue description and category, determine:
1. The appropriate department
2. Estimated resolution time
3. Priority level
4. A natural language response to the citizen

Format your response exactly as:
Department: [department name]
Estimated Time: [X days]
Priority: [high/medium/low]
Response: [your response]`

// buildPrompt creates the user prompt for a report
func buildPrompt(text, categoryHint string) string {
	prompt := fmt.Sprintf("Issue Description: %s", text)
	if categoryHint != "" {
		prompt = fmt.Sprintf("%s\nCategory: %s", prompt, categoryHint)
	}
	return prompt
}

// parseReply scans reply lines for the four expected labels, taking
// the remainder of the first matching line for each. Unmatched labels
// stay empty and are recorded in Missing.
func parseReply(reply string) parsed {
	var p parsed

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case p.Department == "" && strings.HasPrefix(line, labelDepartment):
			p.Department = strings.TrimSpace(line[len(labelDepartment):])
		case p.EstimatedTime == "" && strings.HasPrefix(line, labelTime):
			p.EstimatedTime = strings.TrimSpace(line[len(labelTime):])
		case p.Priority == "" && strings.HasPrefix(line, labelPriority):
			p.Priority = strings.TrimSpace(line[len(labelPriority):])
		case p.UserMessage == "" && strings.HasPrefix(line, labelResponse):
			p.UserMessage = strings.TrimSpace(line[len(labelResponse):])
		}
	}

	if p.Department == "" {
		p.Missing = append(p.Missing, "department")
	}
	if p.EstimatedTime == "" {
		p.Missing = append(p.Missing, "estimated_time")
	}
	if p.Priority == "" {
		p.Missing = append(p.Missing, "priority")
	}
	if p.UserMessage == "" {
		p.Missing = append(p.Missing, "user_message")
	}

	return p
}

// collapse fills gaps with defaults and normalizes priority.
func (e *Extractor) collapse(p parsed) Decision {
	d := Decision{
		Department:    p.Department,
		Priority:      p.Priority,
		EstimatedTime: p.EstimatedTime,
		UserMessage:   p.UserMessage,
	}

	if d.Department == "" {
		d.Department = e.defaults.DefaultDepartment
	}
	if d.EstimatedTime == "" {
		d.EstimatedTime = e.defaults.DefaultTime
	}
	if d.UserMessage == "" {
		d.UserMessage = e.defaults.DefaultMessage
	}
	// Anything outside {low, medium, high}, including empty, becomes medium.
	d.Priority = models.NormalizePriority(d.Priority)

	return d
}
