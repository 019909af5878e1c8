package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RadieNoice/Namma-City/internal/classify"
	"github.com/RadieNoice/Namma-City/internal/config"
	"github.com/RadieNoice/Namma-City/internal/embedding"
	"github.com/RadieNoice/Namma-City/internal/routing"
	"github.com/RadieNoice/Namma-City/internal/simindex"
	"github.com/RadieNoice/Namma-City/internal/store"
	"github.com/RadieNoice/Namma-City/pkg/models"
)

// calls is a shared operation log so tests can assert cross-collaborator
// ordering, in particular that persistence precedes index insertion.
type calls struct {
	ops []string
}

func (c *calls) record(op string) { c.ops = append(c.ops, op) }

type fakeStore struct {
	calls     *calls
	reports   map[string]*models.Report
	nextID    int
	createErr error
	byUser    []*models.Report
	recent    []*models.Report
}

func newFakeStore(c *calls) *fakeStore {
	return &fakeStore{calls: c, reports: make(map[string]*models.Report)}
}

func (s *fakeStore) Create(ctx context.Context, r *models.Report) (string, error) {
	s.calls.record("store.create")
	if s.createErr != nil {
		return "", s.createErr
	}
	s.nextID++
	id := "r" + string(rune('0'+s.nextID))
	cp := *r
	cp.ID = id
	s.reports[id] = &cp
	return id, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*models.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (s *fakeStore) ListRecent(ctx context.Context, limit int) ([]*models.Report, error) {
	return s.recent, nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID string) ([]*models.Report, error) {
	return s.byUser, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id, status string) error {
	s.calls.record("store.update_status")
	r, ok := s.reports[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = status
	return nil
}

func (s *fakeStore) Close() error { return nil }

type fakeIndex struct {
	calls     *calls
	entries   []simindex.Entry
	matches   []simindex.Match
	searchErr error
	insertErr error
	rebuilt   [][]simindex.Entry
}

func (i *fakeIndex) Insert(ctx context.Context, e simindex.Entry) error {
	i.calls.record("index.insert")
	if i.insertErr != nil {
		return i.insertErr
	}
	i.entries = append(i.entries, e)
	return nil
}

func (i *fakeIndex) Search(ctx context.Context, v []float32, k int, floor float64) ([]simindex.Match, error) {
	i.calls.record("index.search")
	return i.matches, i.searchErr
}

func (i *fakeIndex) Rebuild(ctx context.Context, entries []simindex.Entry) error {
	i.rebuilt = append(i.rebuilt, entries)
	return nil
}

func (i *fakeIndex) UpdateStatus(ctx context.Context, reportID, status string) error {
	i.calls.record("index.update_status")
	return nil
}

func (i *fakeIndex) Len(ctx context.Context) (int, error) { return len(i.entries), nil }
func (i *fakeIndex) Close() error                         { return nil }

type fakeEmbedder struct {
	err     error
	failFor string // fail only for texts containing this substring
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil && (f.failFor == "" || strings.Contains(text, f.failFor)) {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Close() error { return nil }

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Dedup: config.DedupConfig{Threshold: 0.8, TopK: 3},
		Routing: config.RoutingConfig{
			DefaultDepartment: "Unassigned",
			DefaultPriority:   "medium",
			DefaultTime:       "3 days",
			DefaultMessage:    "Your report has been registered.",
		},
		Timeouts: config.TimeoutsConfig{EmbedSeconds: 2, RouteSeconds: 2},
	}
}

func newTestEngine(c *calls, st *fakeStore, idx *fakeIndex, emb *fakeEmbedder, routeLLM *fakeLLM) *Engine {
	cfg := testConfig()
	var ext *routing.Extractor
	var provider *fakeLLM
	if routeLLM != nil {
		ext = routing.NewExtractor(routeLLM, cfg.Routing)
		provider = routeLLM
	} else {
		ext = routing.NewExtractor(nil, cfg.Routing)
	}
	cls := classify.New(nil)
	if provider != nil {
		return New(st, idx, emb, ext, cls, provider, cfg)
	}
	return New(st, idx, emb, ext, cls, nil, cfg)
}

func TestSubmit_Novel(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c}
	routeLLM := &fakeLLM{reply: "Department: Water Board\nEstimated Time: 2 days\nPriority: high\nResponse: A crew has been dispatched."}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, routeLLM)

	res, err := eng.Submit(context.Background(), &models.Draft{
		UserID:       "u1",
		Text:         "Burst water pipe flooding the street near the market",
		LocationHint: "Gandhi Bazaar",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if res.Dedup.IsDuplicate {
		t.Error("expected novel verdict")
	}
	if res.Routing == nil {
		t.Fatal("expected routing decision for novel report")
	}
	if res.Routing.Department != "Water Board" || res.Routing.Priority != "high" {
		t.Errorf("unexpected routing: %+v", res.Routing)
	}
	if res.ReportID == "" {
		t.Error("expected a store-assigned report id")
	}

	stored, err := st.Get(context.Background(), res.ReportID)
	if err != nil {
		t.Fatalf("stored report not found: %v", err)
	}
	if stored.Status != models.StatusOpen {
		t.Errorf("Status = %q, want %q", stored.Status, models.StatusOpen)
	}
	if stored.Department != "Water Board" {
		t.Errorf("Department = %q, want Water Board", stored.Department)
	}

	if len(idx.entries) != 1 || idx.entries[0].ReportID != res.ReportID {
		t.Errorf("index entries = %+v, want one entry for %s", idx.entries, res.ReportID)
	}
}

func TestSubmit_PersistBeforeIndex(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{reply: "Priority: low"})

	if _, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "broken streetlight"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	create, insert := -1, -1
	for i, op := range c.ops {
		switch op {
		case "store.create":
			create = i
		case "index.insert":
			insert = i
		}
	}
	if create == -1 || insert == -1 {
		t.Fatalf("ops = %v, want both store.create and index.insert", c.ops)
	}
	if create > insert {
		t.Errorf("ops = %v: index insert ran before persistence", c.ops)
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{
		calls: c,
		matches: []simindex.Match{
			{ReportID: "existing-1", Score: 0.91, Metadata: simindex.Metadata{Category: "Water Supply", Status: "open"}},
			{ReportID: "existing-2", Score: 0.55},
		},
	}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{reply: "unused"})

	res, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "no water since morning"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if !res.Dedup.IsDuplicate {
		t.Fatal("expected duplicate verdict")
	}
	if res.Routing != nil {
		t.Errorf("Routing = %+v, want nil for duplicate", res.Routing)
	}
	if res.ReportID != "existing-1" {
		t.Errorf("ReportID = %q, want existing-1", res.ReportID)
	}
	if res.Category != "Water Supply" {
		t.Errorf("Category = %q, want Water Supply", res.Category)
	}
	for _, op := range c.ops {
		if op == "store.create" || op == "index.insert" {
			t.Errorf("ops = %v: duplicate must not persist or index", c.ops)
		}
	}
}

func TestSubmit_EmptyText(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: text}); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Submit(%q) error = %v, want ErrInvalidInput", text, err)
		}
	}
	if len(c.ops) != 0 {
		t.Errorf("ops = %v, want none for invalid input", c.ops)
	}
}

func TestSubmit_EmbeddingDown(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c}
	emb := &fakeEmbedder{err: models.ErrEmbeddingUnavailable}
	eng := newTestEngine(c, st, idx, emb, &fakeLLM{reply: "Department: Roads\nPriority: high"})

	res, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "deep pothole on the highway"})
	if err != nil {
		t.Fatalf("Submit() error = %v, want degraded success", err)
	}

	if res.Dedup.IsDuplicate {
		t.Error("expected novel when embedding is down")
	}
	if len(res.Dedup.Matches) != 0 {
		t.Errorf("Matches = %v, want empty", res.Dedup.Matches)
	}
	if res.Routing == nil {
		t.Fatal("expected routing to proceed without dedup")
	}
	if res.ReportID == "" {
		t.Error("report must still be persisted")
	}
	if len(idx.entries) != 0 {
		t.Errorf("index entries = %v, want none while embedding is down", idx.entries)
	}
}

func TestSubmit_SearchDown(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c, searchErr: models.ErrIndexCorrupted}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{reply: "Priority: low"})

	res, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "overflowing garbage bin"})
	if err != nil {
		t.Fatalf("Submit() error = %v, want degraded success", err)
	}
	if res.Dedup.IsDuplicate {
		t.Error("expected novel when search fails")
	}
	if res.ReportID == "" {
		t.Error("report must still be persisted")
	}
}

func TestSubmit_RoutingDown(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{err: errors.New("service unavailable")})

	res, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "fallen tree blocking the park entrance"})
	if err != nil {
		t.Fatalf("Submit() error = %v, want degraded success", err)
	}

	want := routing.Decision{
		Department:    "Unassigned",
		Priority:      "medium",
		EstimatedTime: "3 days",
		UserMessage:   "Your report has been registered.",
	}
	if res.Routing == nil || *res.Routing != want {
		t.Errorf("Routing = %+v, want defaults %+v", res.Routing, want)
	}
	if res.ReportID == "" {
		t.Error("report must still be persisted with default routing")
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	st.createErr = errors.New("disk full")
	idx := &fakeIndex{calls: c}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{reply: "Priority: low"})

	if _, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "leaking hydrant"}); err == nil {
		t.Fatal("expected error when persistence fails")
	}
	for _, op := range c.ops {
		if op == "index.insert" {
			t.Errorf("ops = %v: nothing may be indexed when persistence fails", c.ops)
		}
	}
}

func TestInitialize(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	st.recent = []*models.Report{
		{ID: "a", Description: "pothole", Category: "Roads & Infrastructure", Status: "open"},
		{ID: "b", Description: "UNEMBEDDABLE streetlight", Category: "Electricity", Status: "open"},
		{ID: "c", Description: "garbage pile", Category: "Waste Management", Status: "resolved"},
	}
	idx := &fakeIndex{calls: c}
	emb := &fakeEmbedder{err: errors.New("bad text"), failFor: "UNEMBEDDABLE"}
	eng := newTestEngine(c, st, idx, emb, nil)

	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if len(idx.rebuilt) != 1 {
		t.Fatalf("rebuilds = %d, want 1", len(idx.rebuilt))
	}
	seeded := idx.rebuilt[0]
	if len(seeded) != 2 {
		t.Fatalf("seeded %d entries, want 2 (unembeddable report skipped)", len(seeded))
	}
	if seeded[0].ReportID != "a" || seeded[1].ReportID != "c" {
		t.Errorf("seeded ids = %s, %s, want a, c", seeded[0].ReportID, seeded[1].ReportID)
	}
}

// vectorEmbedder returns a fixed vector per known phrase so two
// paraphrases of the same issue land close together in the index.
type vectorEmbedder struct {
	vectors map[string][]float32
}

func (v *vectorEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	for phrase, vec := range v.vectors {
		if strings.Contains(text, phrase) {
			return vec, nil
		}
	}
	return []float32{0, 0, 1}, nil
}

func (v *vectorEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := v.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (v *vectorEmbedder) Close() error { return nil }

// End-to-end through the real in-memory store and index: the first
// pothole report files, a paraphrase of it is caught as a duplicate,
// and an unrelated report files as novel.
func TestSubmit_DuplicateOfEarlierSubmission(t *testing.T) {
	emb := &vectorEmbedder{vectors: map[string][]float32{
		"large pothole on Main St":    {1, 0, 0},
		"huge pothole on Main Street": {0.98, 0.2, 0},
		"streetlight flickering":      {0, 1, 0},
	}}

	cfg := testConfig()
	st := store.NewMemory()
	idx := simindex.NewMemory(true)
	ext := routing.NewExtractor(&fakeLLM{reply: "Department: Public Works\nPriority: high"}, cfg.Routing)
	eng := New(st, idx, emb, ext, classify.New(nil), nil, cfg)

	first, err := eng.Submit(context.Background(), &models.Draft{
		UserID: "u1",
		Text:   "large pothole on Main St causing flat tires",
	})
	if err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if first.Dedup.IsDuplicate {
		t.Fatal("first submission must be novel on an empty index")
	}

	second, err := eng.Submit(context.Background(), &models.Draft{
		UserID: "u2",
		Text:   "huge pothole on Main Street flattening tires",
	})
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if !second.Dedup.IsDuplicate {
		t.Fatal("paraphrase must be flagged as duplicate")
	}
	if got := second.Dedup.Best().ReportID; got != first.ReportID {
		t.Errorf("duplicate target = %q, want first report id %q", got, first.ReportID)
	}
	if second.Routing != nil {
		t.Errorf("Routing = %+v, want nil for duplicate", second.Routing)
	}

	third, err := eng.Submit(context.Background(), &models.Draft{
		UserID: "u3",
		Text:   "streetlight flickering all night",
	})
	if err != nil {
		t.Fatalf("third Submit() error = %v", err)
	}
	if third.Dedup.IsDuplicate {
		t.Error("unrelated report must be novel")
	}
}

// A pipeline wired without any embedding provider must still accept
// reports: every submission is treated as novel and nothing is indexed.
func TestSubmit_NoEmbeddingProvider(t *testing.T) {
	cfg := testConfig()
	st := store.NewMemory()
	idx := simindex.NewMemory(true)
	ext := routing.NewExtractor(nil, cfg.Routing)
	eng := New(st, idx, embedding.Disabled(), ext, classify.New(nil), nil, cfg)

	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	res, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "open manhole near the bus stop"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Dedup.IsDuplicate {
		t.Error("expected novel verdict without embeddings")
	}
	if res.ReportID == "" {
		t.Error("report must still be persisted")
	}
	if _, err := st.Get(context.Background(), res.ReportID); err != nil {
		t.Errorf("stored report not found: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c}
	eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{reply: "Priority: low"})

	res, err := eng.Submit(context.Background(), &models.Draft{UserID: "u1", Text: "stray dog pack near school"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := eng.UpdateStatus(context.Background(), res.ReportID, models.StatusResolved); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	got, _ := st.Get(context.Background(), res.ReportID)
	if got.Status != models.StatusResolved {
		t.Errorf("Status = %q, want resolved", got.Status)
	}

	if err := eng.UpdateStatus(context.Background(), "missing", models.StatusResolved); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStatusAnswer(t *testing.T) {
	c := &calls{}
	st := newFakeStore(c)
	idx := &fakeIndex{calls: c}

	t.Run("no reports", func(t *testing.T) {
		eng := newTestEngine(c, st, idx, &fakeEmbedder{}, nil)
		answer, err := eng.StatusAnswer(context.Background(), "u1", "any update?")
		if err != nil {
			t.Fatalf("StatusAnswer() error = %v", err)
		}
		if !strings.Contains(answer, "no reports") {
			t.Errorf("answer = %q, want no-reports fallback", answer)
		}
	})

	st.byUser = []*models.Report{
		{ID: "r1", Description: "pothole", Department: "Roads", Priority: "high", Status: "open"},
	}

	t.Run("llm answer", func(t *testing.T) {
		eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{reply: "Your pothole report is still open with the Roads department."})
		answer, err := eng.StatusAnswer(context.Background(), "u1", "any update on my pothole?")
		if err != nil {
			t.Fatalf("StatusAnswer() error = %v", err)
		}
		if !strings.Contains(answer, "Roads department") {
			t.Errorf("answer = %q, want model reply", answer)
		}
	})

	t.Run("llm down falls back to summaries", func(t *testing.T) {
		eng := newTestEngine(c, st, idx, &fakeEmbedder{}, &fakeLLM{err: errors.New("quota exceeded")})
		answer, err := eng.StatusAnswer(context.Background(), "u1", "any update?")
		if err != nil {
			t.Fatalf("StatusAnswer() error = %v", err)
		}
		if !strings.Contains(answer, "r1") {
			t.Errorf("answer = %q, want summary fallback mentioning r1", answer)
		}
	})
}
