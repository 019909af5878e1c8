package cli

import (
	"fmt"
	"log"

	"github.com/RadieNoice/Namma-City/internal/chat"
	"github.com/RadieNoice/Namma-City/internal/classify"
	"github.com/RadieNoice/Namma-City/internal/config"
	"github.com/RadieNoice/Namma-City/internal/embedding"
	"github.com/RadieNoice/Namma-City/internal/engine"
	"github.com/RadieNoice/Namma-City/internal/llm"
	"github.com/RadieNoice/Namma-City/internal/routing"
	"github.com/RadieNoice/Namma-City/internal/simindex"
	"github.com/RadieNoice/Namma-City/internal/store"
)

// app owns the wired collaborators for one CLI invocation.
type app struct {
	cfg     *config.Config
	store   store.Store
	index   simindex.Index
	engine  *engine.Engine
	adapter *chat.Adapter
}

// newApp loads and validates config, then builds the full pipeline.
// With dryRun set, the store and index are swapped for in-memory
// implementations so nothing durable is written.
func newApp() (*app, error) {
	var cfg *config.Config

	cfgPath := config.FindConfigPath(cfgFile)
	if cfgPath == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("config error: %v\n", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	idx, err := openIndex(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	var embedder embedding.Provider
	if fallback, err := embedding.NewFallbackProvider(&cfg.Embedding); err != nil {
		log.Printf("Warning: embedding provider unavailable, duplicate detection disabled: %v", err)
		embedder = embedding.Disabled()
	} else {
		embedder = embedding.NewLimitedProvider(fallback, cfg.Limits.EmbeddingRPS)
	}

	var chatProvider llm.Provider
	if provider, err := llm.NewProvider(&cfg.LLM); err != nil {
		log.Printf("Warning: chat model unavailable, routing and status answers degrade to defaults: %v", err)
	} else {
		chatProvider = llm.NewLimitedProvider(provider, cfg.Limits.LLMRPS)
	}

	extractor := routing.NewExtractor(chatProvider, cfg.Routing)
	classifier := classify.New(chatProvider)
	eng := engine.New(st, idx, embedder, extractor, classifier, chatProvider, cfg)

	return &app{
		cfg:     cfg,
		store:   st,
		index:   idx,
		engine:  eng,
		adapter: chat.NewAdapter(eng),
	}, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	if dryRun {
		return store.NewMemory(), nil
	}
	switch cfg.Store.Driver {
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open report store: %w", err)
		}
		return st, nil
	default:
		return store.NewMemory(), nil
	}
}

func openIndex(cfg *config.Config) (simindex.Index, error) {
	if dryRun {
		return simindex.NewMemory(true), nil
	}
	switch cfg.Index.Backend {
	case "qdrant":
		idx, err := simindex.NewQdrant(&cfg.Index)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
		}
		return idx, nil
	default:
		return simindex.NewMemory(true), nil
	}
}

func (a *app) Close() {
	if err := a.index.Close(); err != nil {
		log.Printf("Warning: closing index: %v", err)
	}
	if err := a.store.Close(); err != nil {
		log.Printf("Warning: closing store: %v", err)
	}
}
