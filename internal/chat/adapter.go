// Package chat adapts free-form citizen messages onto the intake
// engine. It decides which operation a message maps to and which UI
// action the reply carries; all business logic stays in the engine.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/RadieNoice/Namma-City/internal/engine"
	"github.com/RadieNoice/Namma-City/pkg/models"
)

// Action tells the caller's UI what kind of reply it received.
type Action string

const (
	// ActionConfirmNew acknowledges a newly registered report.
	ActionConfirmNew Action = "confirm_new"
	// ActionConfirmDuplicate points at an existing matching report.
	ActionConfirmDuplicate Action = "confirm_duplicate"
	// ActionShowIssue carries a single report's details.
	ActionShowIssue Action = "show_issue"
	// ActionInform is plain information with no attached report.
	ActionInform Action = "inform"
)

// Reply is one assistant turn.
type Reply struct {
	Message  string `json:"message"`
	Action   Action `json:"action"`
	ReportID string `json:"report_id,omitempty"`
}

// Service is the slice of the engine the adapter needs.
type Service interface {
	Submit(ctx context.Context, draft *models.Draft) (*engine.SubmissionResult, error)
	StatusAnswer(ctx context.Context, userID, query string) (string, error)
	Report(ctx context.Context, id string) (*models.Report, error)
}

// Adapter maps messages to engine calls.
type Adapter struct {
	svc Service
}

// NewAdapter creates a conversational adapter over the engine.
func NewAdapter(svc Service) *Adapter {
	return &Adapter{svc: svc}
}

// statusMarkers are phrases that make a message a status question
// rather than a new report.
var statusMarkers = []string{
	"status",
	"my reports",
	"my complaints",
	"any update",
	"update on",
	"what happened to",
	"progress on",
}

// HandleMessage routes one citizen message. A known report id takes
// precedence; then status questions; anything else is treated as a
// draft report.
func (a *Adapter) HandleMessage(ctx context.Context, userID, text, knownReportID, location string) (*Reply, error) {
	if knownReportID != "" {
		return a.showIssue(ctx, knownReportID)
	}

	if isStatusQuery(text) {
		answer, err := a.svc.StatusAnswer(ctx, userID, text)
		if err != nil {
			return nil, err
		}
		return &Reply{Message: answer, Action: ActionInform}, nil
	}

	return a.submit(ctx, userID, text, location)
}

func (a *Adapter) showIssue(ctx context.Context, id string) (*Reply, error) {
	report, err := a.svc.Report(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up report %s: %w", id, err)
	}
	return &Reply{
		Message:  report.Summary(),
		Action:   ActionShowIssue,
		ReportID: report.ID,
	}, nil
}

func (a *Adapter) submit(ctx context.Context, userID, text, location string) (*Reply, error) {
	res, err := a.svc.Submit(ctx, &models.Draft{UserID: userID, Text: text, LocationHint: location})
	if err != nil {
		return nil, err
	}

	if res.Dedup.IsDuplicate {
		best := res.Dedup.Best()
		return &Reply{
			Message: fmt.Sprintf(
				"This looks like an already-reported issue (report %s, %.0f%% similar). I have not filed a new report.",
				best.ReportID, best.Score*100),
			Action:   ActionConfirmDuplicate,
			ReportID: best.ReportID,
		}, nil
	}

	msg := res.Routing.UserMessage
	msg = fmt.Sprintf("%s\n\nReport %s filed with %s (priority %s, estimated %s).",
		msg, res.ReportID, res.Routing.Department, res.Routing.Priority, res.Routing.EstimatedTime)
	return &Reply{
		Message:  msg,
		Action:   ActionConfirmNew,
		ReportID: res.ReportID,
	}, nil
}

func isStatusQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range statusMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
