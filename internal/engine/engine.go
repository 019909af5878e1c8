// Package engine orchestrates report intake: embed, search, decide,
// classify, route, persist, index. External calls degrade instead of
// failing the submission wherever the data allows it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/RadieNoice/Namma-City/internal/classify"
	"github.com/RadieNoice/Namma-City/internal/config"
	"github.com/RadieNoice/Namma-City/internal/dedup"
	"github.com/RadieNoice/Namma-City/internal/embedding"
	"github.com/RadieNoice/Namma-City/internal/llm"
	"github.com/RadieNoice/Namma-City/internal/routing"
	"github.com/RadieNoice/Namma-City/internal/simindex"
	"github.com/RadieNoice/Namma-City/internal/store"
	"github.com/RadieNoice/Namma-City/pkg/models"
)

// SubmissionResult is the outcome of a single draft submission.
// Routing is nil exactly when the draft was judged a duplicate.
type SubmissionResult struct {
	Dedup    dedup.Decision    `json:"dedup"`
	Routing  *routing.Decision `json:"routing,omitempty"`
	ReportID string            `json:"report_id,omitempty"`
	Category string            `json:"category,omitempty"`
}

// Engine wires the intake collaborators together. Construct with New;
// there is no package-level state.
type Engine struct {
	store      store.Store
	index      simindex.Index
	embedder   embedding.Provider
	extractor  *routing.Extractor
	classifier *classify.Classifier
	llm        llm.Provider
	cfg        *config.Config
}

// New creates an engine. llm may be nil; status answers then use the
// canned fallback and routing falls back to defaults.
func New(st store.Store, idx simindex.Index, emb embedding.Provider, ext *routing.Extractor, cls *classify.Classifier, provider llm.Provider, cfg *config.Config) *Engine {
	return &Engine{
		store:      st,
		index:      idx,
		embedder:   emb,
		extractor:  ext,
		classifier: cls,
		llm:        provider,
		cfg:        cfg,
	}
}

// Initialize seeds the similarity index from the store's recent
// reports. Reports whose text cannot be embedded are skipped with a
// warning; a cold index is preferable to a failed start.
func (e *Engine) Initialize(ctx context.Context) error {
	limit := e.cfg.Index.SeedLimit
	if limit <= 0 {
		limit = 500
	}

	reports, err := e.store.ListRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("loading reports for index seed: %w", err)
	}

	entries := make([]simindex.Entry, 0, len(reports))
	for _, r := range reports {
		vector, err := e.embedWithTimeout(ctx, embedding.PrepareReportText(r.Description, r.Location))
		if err != nil {
			log.Printf("Warning: skipping report %s during index seed: %v", r.ID, err)
			continue
		}
		entries = append(entries, simindex.Entry{
			ReportID: r.ID,
			Vector:   vector,
			Metadata: simindex.Metadata{Category: r.Category, Status: r.Status},
		})
	}

	if err := e.index.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("seeding index: %w", err)
	}

	log.Printf("Index seeded with %d of %d reports", len(entries), len(reports))
	return nil
}

// Submit runs the full intake pipeline for one draft.
//
// A duplicate verdict short-circuits before anything is persisted; the
// caller decides whether to attach the user to the existing report.
// For a novel draft the report row is created first and the index
// entry second, so a crash between the two leaves a findable report
// that the next Initialize re-indexes.
func (e *Engine) Submit(ctx context.Context, draft *models.Draft) (*SubmissionResult, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: report text is empty", models.ErrInvalidInput)
	}

	decision := e.findDuplicates(ctx, text, draft.LocationHint)
	if decision.IsDuplicate {
		best := decision.Best()
		return &SubmissionResult{
			Dedup:    decision,
			ReportID: best.ReportID,
			Category: best.Metadata.Category,
		}, nil
	}

	category := e.classifier.Classify(ctx, text)

	routed := e.route(ctx, text, category)

	report := &models.Report{
		UserID:        draft.UserID,
		Description:   text,
		Location:      draft.LocationHint,
		Category:      category,
		Department:    routed.Department,
		Priority:      routed.Priority,
		EstimatedTime: routed.EstimatedTime,
		Status:        models.StatusOpen,
	}

	id, err := e.store.Create(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("persisting report: %w", err)
	}
	report.ID = id

	e.indexReport(ctx, report)

	return &SubmissionResult{
		Dedup:    decision,
		Routing:  &routed,
		ReportID: id,
		Category: category,
	}, nil
}

// findDuplicates embeds the draft and searches the index. Any failure
// on this path degrades to "not a duplicate": a missed dedup is
// recoverable, a rejected report is not.
func (e *Engine) findDuplicates(ctx context.Context, text, location string) dedup.Decision {
	vector, err := e.embedWithTimeout(ctx, embedding.PrepareReportText(text, location))
	if err != nil {
		log.Printf("Warning: embedding failed, treating draft as novel: %v", err)
		return dedup.Decide(nil, e.cfg.Dedup.Threshold)
	}

	matches, err := e.index.Search(ctx, vector, e.cfg.Dedup.TopK, 0)
	if err != nil {
		log.Printf("Warning: similarity search failed, treating draft as novel: %v", err)
		return dedup.Decide(nil, e.cfg.Dedup.Threshold)
	}

	return dedup.Decide(matches, e.cfg.Dedup.Threshold)
}

// route asks the extractor for a routing decision, substituting the
// configured defaults when the routing service is unavailable.
func (e *Engine) route(ctx context.Context, text, category string) routing.Decision {
	timeout := time.Duration(e.cfg.Timeouts.RouteSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	decision, err := e.extractor.Route(rctx, text, category)
	if err != nil {
		log.Printf("Warning: routing unavailable, using defaults: %v", err)
		return e.extractor.Defaults()
	}
	return decision
}

// indexReport inserts the newly-persisted report into the index. A
// failure here only costs future dedup accuracy until the next
// rebuild, so it is logged rather than returned.
func (e *Engine) indexReport(ctx context.Context, report *models.Report) {
	vector, err := e.embedWithTimeout(ctx, embedding.PrepareReportText(report.Description, report.Location))
	if err != nil {
		log.Printf("Warning: embedding for index insert failed for report %s: %v", report.ID, err)
		return
	}

	entry := simindex.Entry{
		ReportID: report.ID,
		Vector:   vector,
		Metadata: simindex.Metadata{Category: report.Category, Status: report.Status},
	}
	if err := e.index.Insert(ctx, entry); err != nil {
		log.Printf("Warning: index insert failed for report %s: %v", report.ID, err)
	}
}

// embedWithTimeout bounds a single embedding call. Deadline expiry
// surfaces as the embedding-unavailable error so callers degrade the
// same way for slow and for failing providers.
func (e *Engine) embedWithTimeout(ctx context.Context, text string) ([]float32, error) {
	timeout := time.Duration(e.cfg.Timeouts.EmbedSeconds) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ectx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vector, err := e.embedder.Embed(ectx, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: embedding timed out after %s", models.ErrEmbeddingUnavailable, timeout)
		}
		return nil, err
	}
	return vector, nil
}

// Embed exposes the timeout-bounded embedding call for ad-hoc queries
// (the search CLI).
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embedWithTimeout(ctx, text)
}

// Report fetches a single report by id.
func (e *Engine) Report(ctx context.Context, id string) (*models.Report, error) {
	return e.store.Get(ctx, id)
}

// UpdateStatus changes a report's status in the store and then brings
// the index metadata along. Index failure is logged only; the store
// stays authoritative and the next rebuild converges.
func (e *Engine) UpdateStatus(ctx context.Context, id, status string) error {
	if err := e.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if err := e.index.UpdateStatus(ctx, id, status); err != nil {
		log.Printf("Warning: index status update failed for report %s: %v", id, err)
	}
	return nil
}

// StatusAnswer summarizes a user's reports in response to a status
// question. Falls back to canned answers when the user has no reports
// or the model is unavailable.
func (e *Engine) StatusAnswer(ctx context.Context, userID, query string) (string, error) {
	reports, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("listing reports for user %s: %w", userID, err)
	}
	if len(reports) == 0 {
		return "You have no reports on file yet. Describe an issue and I will register it for you.", nil
	}

	if e.llm == nil {
		return statusFallback(reports), nil
	}

	var sb strings.Builder
	for _, r := range reports {
		sb.WriteString(r.Summary())
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf("The citizen asked: %q\n\nTheir reports:\n%s\nAnswer the question using only these reports. Be brief and concrete.", query, sb.String())
	answer, err := e.llm.CompleteWithSystem(ctx, "You are a civic issue assistant answering status questions about a citizen's filed reports.", prompt)
	if err != nil {
		log.Printf("Warning: status answer generation failed: %v", err)
		return statusFallback(reports), nil
	}
	return answer, nil
}

func statusFallback(reports []*models.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You have %d report(s) on file:\n", len(reports))
	for _, r := range reports {
		sb.WriteString(r.Summary())
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
