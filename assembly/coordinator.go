package assembly

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rdszhao/cadkg/config"
	"github.com/rdszhao/cadkg/core"
	"github.com/rdszhao/cadkg/logging"
	"github.com/rdszhao/cadkg/model"
	"github.com/rdszhao/cadkg/swarm"
)

const managerInstructions = `You are the CAD Project Manager coordinating a team of specialist agents.

Your job is to orchestrate analysis of CAD assembly data for knowledge graph construction.

YOUR TEAM:
1. Geometry Analyst - analyzes vertices, edges, faces, complexity
2. Hierarchy Mapper - maps parent-child assembly relationships
3. Component Classifier - categorizes parts (fasteners, structural, etc.)
4. Spatial Relations Analyst - identifies how parts connect spatially
5. Properties Extractor - extracts metadata from part labels

PROCESS:
1. Call specialist tools to gather their analyses
2. Combine outputs into final knowledge graph JSON
3. Return ONLY the JSON, nothing else

CRITICAL RULES:
- Call specialist tools to gather data
- Synthesize results into unified knowledge graph
- Return ONLY valid JSON - no explanations, no markdown, no text
- Do NOT generate code or scripts
- Output must be parseable JSON

OUTPUT FORMAT (return ONLY this JSON):
{
  "entities": [
    {"id": "...", "type": "Assembly|Part", "name": "...", "properties": {...}}
  ],
  "relationships": [
    {"source_id": "...", "relation": "CONTAINS|CONNECTED_TO|etc", "target_id": "...", "properties": {...}}
  ],
  "metadata": {
    "total_entities": N,
    "total_relationships": M,
    "analysis_summary": "..."
  }
}`

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// Logger receives run lifecycle events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Coordinator drives one CAD enrichment swarm end to end: payload
// preparation, manager orchestration, synthesis extraction and the
// deterministic fallback. The cache persists across Process calls so
// repeated runs over the same tree reuse specialist outputs.
type Coordinator struct {
	specialistClient model.Client
	managerClient    model.Client
	cfg              *config.Config
	cache            *swarm.Cache
	monitor          *swarm.Monitor
	logger           logging.Logger
}

// NewCoordinator wires a CAD enrichment coordinator. The two clients may be
// the same; by convention the specialist client runs a cheaper model tier
// than the manager client.
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

// Process enriches the given assembly trees into a graph draft. It always
// returns a structurally valid draft: when the swarm path fails anywhere
// (manager error, unparseable synthesis, invalid draft, run timeout) the
// deterministic fallback mapping is used instead. Metadata records which
// path produced the result.
func (c *Coordinator) Process(ctx context.Context, roots []*core.DomainNode) *core.GraphDraft {
	runID := uuid.NewString()
	c.monitor.StartTimer()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	draft, err := c.runSwarm(ctx, roots)
	c.monitor.EndTimer()

	mode := "swarm"
	if err != nil {
		c.logger.Warn("assembly.swarm.failed", "run_id", runID, "error", err.Error())
		draft = swarm.BuildFallbackDraft(roots)
		mode = "fallback"
	}

	draft.SetMetadata("performance", c.monitor.Summary())
	draft.SetMetadata("run_id", runID)
	draft.SetMetadata("mode", mode)

	c.logger.Info("assembly.run.complete",
		"run_id", runID,
		"mode", mode,
		"entities", len(draft.Entities),
		"relationships", len(draft.Relationships),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return draft
}

func (c *Coordinator) runSwarm(ctx context.Context, roots []*core.DomainNode) (*core.GraphDraft, error) {
	limits := c.cfg.Limits

	geometry := PrepareGeometry(roots, limits.GeometryParts)
	hierarchy := PrepareHierarchy(roots, limits.HierarchyDepth, limits.HierarchyRoots)
	components := PrepareComponents(roots, limits.Components)
	spatial := PrepareSpatial(roots, limits.SpatialGroups, limits.SpatialChildren)
	labels := PreparePropertyLabels(roots, limits.PropertyLabels)

	c.logger.Debug("assembly.payloads.prepared",
		"geometries", len(geometry),
		"components", len(components),
		"spatial_groups", len(spatial),
		"labels", len(labels),
	)

	tools := c.buildRoster(geometry, hierarchy, components, spatial, labels)

	mgr := swarm.NewManager(
		"cad_project_manager",
		managerInstructions,
		c.managerClient,
		tools,
		c.monitor,
		func(o *swarm.ManagerOptions) {
			o.MaxTurns = c.cfg.ManagerTurns
			o.Parallelism = c.cfg.ToolParallelism
			o.Logger = c.logger
		},
	)

	prompt := fmt.Sprintf(`Coordinate your specialist team to build a comprehensive knowledge graph.

AVAILABLE SPECIALISTS:
1. analyze_geometry() - Analyzes %d parts with geometric data
2. map_hierarchy() - Maps the assembly structure hierarchy
3. classify_components() - Classifies %d components by type
4. analyze_spatial_relations() - Identifies spatial relationships in %d assembly contexts
5. extract_properties() - Extracts metadata from %d part labels

TASK:
Call each specialist tool and synthesize their outputs into a unified knowledge graph JSON.

IMPORTANT:
- Call all specialist tools (no parameters needed)
- Combine results into final JSON structure
- Return ONLY valid JSON, no explanations

Begin coordinating your team now.`,
		len(geometry), len(components), len(spatial), len(labels))

	text, err := mgr.Run(ctx, prompt)
	if err != nil {
		return nil, err
	}

	obj, err := swarm.ExtractObject(text)
	if err != nil {
		return nil, err
	}
	return draftFromObject(obj)
}

func (c *Coordinator) buildRoster(
	geometry []GeometryRecord,
	hierarchy HierarchyPayload,
	components []ComponentRecord,
	spatial []SpatialGroup,
	labels []LabelRecord,
) []swarm.SpecialistTool {
	newSpecialist := func(name, instructions string) *swarm.Specialist {
		return swarm.NewSpecialist(name, instructions, c.specialistClient, c.cache, c.monitor,
			func(o *swarm.SpecialistOptions) {
				o.Logger = c.logger
				o.TransportRetries = c.cfg.TransportRetries
			},
		)
	}

	return []swarm.SpecialistTool{
		specialistTool(
			newSpecialist("Geometry Analyst", geometryAnalystInstructions),
			"analyze_geometry",
			"Analyze geometric properties of all CAD parts with geometry. Returns geometric analysis results in JSON format.",
			"Analyze these part geometries:",
			geometry, len(geometry) == 0, "[]",
		),
		specialistTool(
			newSpecialist("Hierarchy Mapper", hierarchyMapperInstructions),
			"map_hierarchy",
			"Map assembly hierarchy and parent-child containment relationships. Returns hierarchy mapping results in JSON format.",
			"Map the hierarchy of this assembly structure:",
			hierarchy, len(hierarchy.Assemblies) == 0, "[]",
		),
		specialistTool(
			newSpecialist("Component Classifier", componentClassifierInstructions),
			"classify_components",
			"Classify CAD components by type (fasteners, structural, mechanical, etc). Returns component classifications in JSON format.",
			"Classify these components:",
			components, len(components) == 0, "[]",
		),
		specialistTool(
			newSpecialist("Spatial Relations Analyst", spatialAnalystInstructions),
			"analyze_spatial_relations",
			"Identify spatial relationships between parts (FASTENS, ADJACENT_TO, etc). Returns spatial relationship analysis in JSON format.",
			"Identify spatial relationships in these assemblies:",
			spatial, len(spatial) == 0, "[]",
		),
		specialistTool(
			newSpecialist("Properties Extractor", propertiesExtractorInstructions),
			"extract_properties",
			"Extract properties and metadata from part labels (materials, sizes, vendors). Returns extracted properties in JSON format.",
			"Extract properties from these part labels:",
			labels, len(labels) == 0, "{}",
		),
	}
}

// draftFromObject decodes the manager's synthesized object into a draft and
// validates its structural contract.
func draftFromObject(obj map[string]any) (*core.GraphDraft, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("re-encode synthesis: %w", err)
	}
	draft := core.NewGraphDraft()
	if err := json.Unmarshal(raw, draft); err != nil {
		return nil, fmt.Errorf("decode synthesis: %w", err)
	}
	if draft.Metadata == nil {
		draft.Metadata = map[string]any{}
	}
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("synthesized draft invalid: %w", err)
	}
	return draft, nil
}
