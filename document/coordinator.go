package document

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rdszhao/cadkg/config"
	"github.com/rdszhao/cadkg/core"
	"github.com/rdszhao/cadkg/internal/util"
	"github.com/rdszhao/cadkg/logging"
	"github.com/rdszhao/cadkg/model"
	"github.com/rdszhao/cadkg/swarm"
)

const analysisManagerInstructions = `You are coordinating document analysis specialists. Call the tools and combine their JSON outputs.

TOOLS AVAILABLE:
1. analyze_structure() - Map document organization
2. identify_components() - Find components/parts
3. extract_specifications() - Get technical specs
4. analyze_requirements() - Extract requirements
5. map_relationships() - Map documented relationships
6. curate_metadata() - Extract document metadata

PROCESS:
1. Call the specialist tools
2. Combine all results into final JSON

OUTPUT FORMAT:
{
  "document_analysis": {
    "structure": <result from analyze_structure>,
    "components": <result from identify_components>,
    "specifications": <result from extract_specifications>,
    "requirements": <result from analyze_requirements>,
    "relationships": <result from map_relationships>,
    "metadata": <result from curate_metadata>
  }
}

Return ONLY this JSON structure, nothing else.`

const enrichmentManagerInstructions = `Coordinate graph enrichment. Call tools and combine results.

TOOLS:
1. match_entities() - Match doc to CAD
2. enrich_semantics() - Add properties
3. enrich_relationships() - Create semantic relationships
4. augment_context() - Add documentation context

PROCESS:
1. Call the specialist tools
2. Combine into JSON

OUTPUT:
{
  "graph_enrichment": {
    "entity_matches": <from match_entities>,
    "semantic_properties": <from enrich_semantics>,
    "new_relationships": <from enrich_relationships>,
    "context": <from augment_context>
  },
  "statistics": {
    "entities_matched": 0,
    "properties_added": 0
  }
}

Return ONLY valid JSON.`

// Both managers run a tighter budget than the CAD swarm: document phases
// involve fewer tools per turn and should converge quickly.
const managerTurns = 10

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// Logger receives run lifecycle events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Coordinator runs the two-phase documentation swarm: document analysis
// first, then graph enrichment over the analysis and the caller's existing
// CAD entities. The cache and monitor are shared by both phases.
type Coordinator struct {
	specialistClient model.Client
	managerClient    model.Client
	cfg              *config.Config
	cache            *swarm.Cache
	monitor          *swarm.Monitor
	logger           logging.Logger
}

// NewCoordinator wires a documentation enrichment coordinator.
func NewCoordinator(
	specialistClient, managerClient model.Client,
	cfg *config.Config,
	optFns ...func(o *CoordinatorOptions),
) *Coordinator {
	opts := CoordinatorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	monitor := swarm.NewMonitor()
	return &Coordinator{
		specialistClient: specialistClient,
		managerClient:    managerClient,
		cfg:              cfg,
		cache:            swarm.NewCache(monitor),
		monitor:          monitor,
		logger:           opts.Logger,
	}
}

// Monitor exposes the coordinator's metrics collector.
func (c *Coordinator) Monitor() *swarm.Monitor { return c.monitor }

// Process analyzes documentText and enriches cadEntities with what the
// document reveals about them. Degradation is per phase: when enrichment
// fails the analysis results are still attached; when analysis itself
// fails the provided entities are passed through unchanged. A structurally
// valid draft is always returned.
func (c *Coordinator) Process(ctx context.Context, documentText string, cadEntities []core.Entity) *core.GraphDraft {
	runID := uuid.NewString()
	c.monitor.StartTimer()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	mode := "swarm"

	analysis, err := c.analyzeDocument(ctx, documentText)
	var enrichment map[string]any
	if err != nil {
		c.logger.Warn("document.analysis.failed", "run_id", runID, "error", err.Error())
		mode = "fallback"
	} else {
		enrichment, err = c.enrichGraph(ctx, analysis, cadEntities)
		if err != nil {
			c.logger.Warn("document.enrichment.failed", "run_id", runID, "error", err.Error())
			mode = "analysis_only"
		}
	}
	c.monitor.EndTimer()

	draft := buildDraft(cadEntities, enrichment)
	if analysis != nil {
		draft.SetMetadata("document_analysis", analysis)
	}
	if mode == "fallback" {
		draft.SetMetadata("analysis_summary", "Direct mapping (fallback mode)")
	}
	draft.SetMetadata("performance", c.monitor.Summary())
	draft.SetMetadata("run_id", runID)
	draft.SetMetadata("mode", mode)

	c.logger.Info("document.run.complete",
		"run_id", runID,
		"mode", mode,
		"entities", len(draft.Entities),
		"relationships", len(draft.Relationships),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return draft
}

// analyzeDocument runs phase one: the six document analysts under their
// manager. The text payload is capped at the configured character limit.
func (c *Coordinator) analyzeDocument(ctx context.Context, documentText string) (map[string]any, error) {
	text := clampText(documentText, c.cfg.Limits.DocumentChars)
	empty := text == ""

	tools := []swarm.SpecialistTool{
		c.textTool("analyze_structure", "Analyze document structure and organization.",
			"Document Structure Analyst", structureAnalystInstructions,
			"Analyze this document structure:", text, empty),
		c.textTool("identify_components", "Identify all components and parts mentioned.",
			"Component Identifier", componentIdentifierInstructions,
			"Identify components:", text, empty),
		c.textTool("extract_specifications", "Extract technical specifications and parameters.",
			"Technical Specifications Extractor", specExtractorInstructions,
			"Extract technical specifications:", text, empty),
		c.textTool("analyze_requirements", "Analyze functional requirements and capabilities.",
			"Functional Requirements Analyst", requirementsAnalystInstructions,
			"Extract requirements:", text, empty),
		c.textTool("map_relationships", "Map relationships between documented entities.",
			"Relationship Mapper", relationshipMapperInstructions,
			"Map relationships:", text, empty),
		c.textTool("curate_metadata", "Curate document metadata and context.",
			"Metadata Curator", metadataCuratorInstructions,
			"Extract metadata:", text, empty),
	}

	mgr := c.newManager("document_analysis_manager", analysisManagerInstructions, tools)

	prompt := `Analyze this technical documentation by calling your specialist tools:
1. analyze_structure()
2. identify_components()
3. extract_specifications()
4. analyze_requirements()
5. map_relationships()
6. curate_metadata()

Then combine their JSON outputs into the required format.`

	out, err := mgr.Run(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return swarm.ExtractObject(out)
}

// enrichGraph runs phase two: the four graph enrichers over the analysis
// results and a bounded sample of the existing CAD entities.
func (c *Coordinator) enrichGraph(ctx context.Context, analysis map[string]any, cadEntities []core.Entity) (map[string]any, error) {
	docAnalysis := digMap(analysis, "document_analysis")
	entities := util.Head(cadEntities, c.cfg.Limits.MatchEntities)

	matchContext := map[string]any{
		"doc_components": docAnalysis["components"],
		"cad_entities":   entities,
	}
	semanticContext := map[string]any{
		"specifications": docAnalysis["specifications"],
		"requirements":   docAnalysis["requirements"],
		"cad_entities":   entities,
	}
	relationshipContext := map[string]any{
		"doc_relationships": docAnalysis["relationships"],
		"cad_entities":      entities,
	}
	contextData := map[string]any{
		"metadata":     docAnalysis["metadata"],
		"cad_entities": entities,
	}

	empty := len(entities) == 0

	tools := []swarm.SpecialistTool{
		c.payloadTool("match_entities", "Match document entities to CAD graph entities.",
			"Entity Matcher", entityMatcherInstructions,
			"Match entities:", matchContext, empty),
		c.payloadTool("enrich_semantics", "Add semantic properties to entities.",
			"Semantic Enricher", semanticEnricherInstructions,
			"Enrich with semantics:", semanticContext, empty),
		c.payloadTool("enrich_relationships", "Create semantic relationships.",
			"Relationship Enricher", relationshipEnricherInstructions,
			"Create relationships:", relationshipContext, empty),
		c.payloadTool("augment_context", "Add contextual information.",
			"Context Augmenter", contextAugmenterInstructions,
			"Augment context:", contextData, empty),
	}

	mgr := c.newManager("graph_enrichment_manager", enrichmentManagerInstructions, tools)

	prompt := `Enrich the knowledge graph:
1. Call match_entities()
2. Call enrich_semantics()
3. Call enrich_relationships()
4. Call augment_context()
5. Combine into required JSON format.`

	text, err := mgr.Run(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return swarm.ExtractObject(text)
}

func (c *Coordinator) newManager(name, instructions string, tools []swarm.SpecialistTool) *swarm.Manager {
	return swarm.NewManager(name, instructions, c.managerClient, tools, c.monitor,
		func(o *swarm.ManagerOptions) {
			o.MaxTurns = managerTurns
			o.Parallelism = c.cfg.ToolParallelism
			o.Logger = c.logger
		},
	)
}

func (c *Coordinator) newSpecialist(name, instructions string) *swarm.Specialist {
	return swarm.NewSpecialist(name, instructions, c.specialistClient, c.cache, c.monitor,
		func(o *swarm.SpecialistOptions) {
			o.Logger = c.logger
			o.TransportRetries = c.cfg.TransportRetries
		},
	)
}

// textTool wraps a specialist whose payload is the capped document text.
func (c *Coordinator) textTool(toolName, description, specialist, instructions, task, text string, empty bool) swarm.SpecialistTool {
	sp := c.newSpecialist(specialist, instructions)
	return swarm.SpecialistTool{
		Name:        toolName,
		Description: description,
		Run: func(ctx context.Context) (string, error) {
			if empty {
				return "{}", nil
			}
			return sp.Invoke(ctx, task, text)
		},
	}
}

// payloadTool wraps a specialist whose payload is a structured context.
func (c *Coordinator) payloadTool(toolName, description, specialist, instructions, task string, payload any, empty bool) swarm.SpecialistTool {
	sp := c.newSpecialist(specialist, instructions)
	return swarm.SpecialistTool{
		Name:        toolName,
		Description: description,
		Run: func(ctx context.Context) (string, error) {
			if empty {
				return "{}", nil
			}
			return sp.Invoke(ctx, task, payload)
		},
	}
}

// buildDraft merges the enrichment phase output over the caller's entities.
// Semantic properties and context augmentations are merged into matching
// entities by id; new relationships are appended. A nil enrichment passes
// the entities through untouched.
func buildDraft(cadEntities []core.Entity, enrichment map[string]any) *core.GraphDraft {
	draft := core.NewGraphDraft()

	index := make(map[string]int, len(cadEntities))
	for _, e := range cadEntities {
		clone := e
		if e.Properties != nil {
			clone.Properties = make(map[string]any, len(e.Properties))
			for k, v := range e.Properties {
				clone.Properties[k] = v
			}
		}
		index[clone.ID] = len(draft.Entities)
		draft.Entities = append(draft.Entities, clone)
	}

	if enrichment == nil {
		return draft
	}
	ge := digMap(enrichment, "graph_enrichment")

	for _, item := range digSlice(ge, "semantic_properties", "enrichments") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["entity_id"].(string)
		props, _ := m["properties"].(map[string]any)
		if idx, found := index[id]; found && props != nil {
			if draft.Entities[idx].Properties == nil {
				draft.Entities[idx].Properties = map[string]any{}
			}
			for k, v := range props {
				draft.Entities[idx].Properties[k] = v
			}
		}
	}

	for _, item := range digSlice(ge, "context", "augmentations") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["entity_id"].(string)
		ctx, _ := m["context"].(map[string]any)
		if idx, found := index[id]; found && ctx != nil {
			if draft.Entities[idx].Properties == nil {
				draft.Entities[idx].Properties = map[string]any{}
			}
			draft.Entities[idx].Properties["context"] = ctx
		}
	}

	for _, item := range digSlice(ge, "new_relationships", "relationships") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		source, _ := m["source_id"].(string)
		relation, _ := m["relation_type"].(string)
		target, _ := m["target_id"].(string)
		if source == "" || relation == "" || target == "" {
			continue
		}
		props, _ := m["properties"].(map[string]any)
		draft.Relationships = append(draft.Relationships, core.Relationship{
			SourceID:   source,
			Relation:   relation,
			TargetID:   target,
			Properties: props,
		})
	}

	if matches := digSlice(ge, "entity_matches", "matches"); len(matches) > 0 {
		draft.SetMetadata("entity_matches", matches)
	}
	return draft
}

// digMap walks nested objects by key, returning an empty map when any hop
// is missing or not an object.
func digMap(m map[string]any, keys ...string) map[string]any {
	cur := m
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			return map[string]any{}
		}
		cur = next
	}
	return cur
}

// digSlice walks nested objects to a terminal array.
func digSlice(m map[string]any, keys ...string) []any {
	if len(keys) == 0 {
		return nil
	}
	parent := digMap(m, keys[:len(keys)-1]...)
	s, _ := parent[keys[len(keys)-1]].([]any)
	return s
}

// clampText caps text to n runes without appending a marker; downstream
// specialists see the raw prefix.
func clampText(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
