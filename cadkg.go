// Package cadkg turns CAD assembly trees and technical documentation into
// knowledge graph facts using specialist model swarms. The Engine façade
// wires configuration, completion clients, the enrichment coordinators and
// an idempotent graph store behind two operations: EnrichAssembly and
// EnrichDocument.
package cadkg

import (
	"context"
	"fmt"

	"github.com/rdszhao/cadkg/assembly"
	"github.com/rdszhao/cadkg/config"
	"github.com/rdszhao/cadkg/core"
	"github.com/rdszhao/cadkg/document"
	"github.com/rdszhao/cadkg/graph"
	"github.com/rdszhao/cadkg/logging"
	"github.com/rdszhao/cadkg/model"
	"github.com/rdszhao/cadkg/model/anthropic"
	"github.com/rdszhao/cadkg/model/openai"
)

// Options configures an Engine.
type Options struct {
	// Config supplies the full engine configuration. When nil, ConfigPath
	// is loaded (defaults plus environment when empty).
	Config *config.Config
	// ConfigPath is the YAML configuration file to load when Config is nil.
	ConfigPath string
	// Logger receives all engine events. Defaults to the structured logger.
	Logger logging.Logger
	// SpecialistClient and ManagerClient override the clients built from
	// configuration, mainly for tests.
	SpecialistClient model.Client
	ManagerClient    model.Client
}

// Engine is the top-level entry point.
type Engine struct {
	cfg      *config.Config
	logger   logging.Logger
	store    *graph.Store
	assembly *assembly.Coordinator
	document *document.Coordinator
}

// New builds an Engine from configuration. Configuration problems are the
// one fatal failure mode: they surface here, before any run starts.
func New(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDefaultSlogLogger()
	}

	specialistClient := opts.SpecialistClient
	managerClient := opts.ManagerClient
	if specialistClient == nil || managerClient == nil {
		built, err := buildClients(cfg)
		if err != nil {
			return nil, err
		}
		if specialistClient == nil {
			specialistClient = built.specialist
		}
		if managerClient == nil {
			managerClient = built.manager
		}
	}

	return &Engine{
		cfg:    cfg,
		logger: logger,
		store:  graph.NewStore(),
		assembly: assembly.NewCoordinator(specialistClient, managerClient, cfg,
			func(o *assembly.CoordinatorOptions) { o.Logger = logger }),
		document: document.NewCoordinator(specialistClient, managerClient, cfg,
			func(o *document.CoordinatorOptions) { o.Logger = logger }),
	}, nil
}

// Store exposes the engine's graph store.
func (e *Engine) Store() *graph.Store { return e.store }

// Config exposes the engine's resolved configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// EnrichAssembly runs the CAD swarm over the given trees and applies the
// resulting draft to the store. The draft is returned either way; the error
// reports only store application problems, which for a coordinator-produced
// draft should not occur.
func (e *Engine) EnrichAssembly(ctx context.Context, roots []*core.DomainNode) (*core.GraphDraft, error) {
	draft := e.assembly.Process(ctx, roots)
	if err := e.store.Apply(draft); err != nil {
		return draft, fmt.Errorf("apply assembly draft: %w", err)
	}
	return draft, nil
}

// EnrichDocument runs the documentation swarm over documentText, enriching
// the store's current entities, and applies the result.
func (e *Engine) EnrichDocument(ctx context.Context, documentText string) (*core.GraphDraft, error) {
	draft := e.document.Process(ctx, documentText, e.store.Entities())
	if err := e.store.Apply(draft); err != nil {
		return draft, fmt.Errorf("apply document draft: %w", err)
	}
	return draft, nil
}

type clients struct {
	specialist model.Client
	manager    model.Client
}

func buildClients(cfg *config.Config) (clients, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return clients{
			specialist: openai.NewClient(func(o *openai.Options) {
				o.Model = cfg.SpecialistModel
				o.BaseURL = cfg.BaseURL
				o.APIKey = cfg.APIKey
			}),
			manager: openai.NewClient(func(o *openai.Options) {
				o.Model = cfg.ManagerModel
				o.BaseURL = cfg.BaseURL
				o.APIKey = cfg.APIKey
			}),
		}, nil
	case config.ProviderAnthropic:
		return clients{
			specialist: anthropic.NewClient(func(o *anthropic.Options) {
				o.Model = cfg.SpecialistModel
				o.APIKey = cfg.APIKey
			}),
			manager: anthropic.NewClient(func(o *anthropic.Options) {
				o.Model = cfg.ManagerModel
				o.APIKey = cfg.APIKey
			}),
		}, nil
	default:
		return clients{}, &config.Error{Field: "provider", Reason: fmt.Sprintf("unsupported provider %q", cfg.Provider)}
	}
}
