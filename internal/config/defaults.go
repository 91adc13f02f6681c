package config

const defaultExtractionPrompt = `You are a specialized log parsing AI for Starship development logs.

Parse the following event log and extract all entities and relationships in JSON format.
The log follows this format: DD MMM: entity action at location (optional source)

For each entity, determine its type based on these categories:
- VEHICLE (vehicles like S20, B7)
- FACILITY (launch pads, production facilities)
- COMPONENT (engines, heat shield, etc.)
- TEST (static fires, cryo tests)
- MILESTONE (critical achievements, approvals)
- ACTOR (people, teams)
- EVENT (launches, landings)
- RESOURCE (other resources)

Normalize entity names to avoid duplication: "Heat shield tiles" and "Heat shield" are the
same entity, "Starship S28" is "S28", "Booster B9" is "B9". Add the property "role": "ship"
for ships and "role": "booster" for boosters.

For each relationship determine its type: FLOW, TRANSFER, INTEGRATION, TESTING, SUPPLY,
COMMUNICATION or DEPENDENCY.

Return only JSON of this shape, timestamps in ISO 8601:
{
  "entities": [{"id": "...", "name": "...", "type": "...", "properties": {}, "metrics": {"frequency": 1}}],
  "relationships": [{"id": "...", "source": "...", "target": "...", "type": "...",
    "properties": {"action": "..."}, "metrics": {"frequency": 1, "timestamp": "2024-01-15T00:00:00Z"}}],
  "metadata": {"startTime": "...", "endTime": "...", "totalEvents": 0}
}

Log to parse:
%s`

const defaultClusterPrompt = `The following entities were observed together in a development log.
Each line is "- name (type): activity". Describe in two sentences what stage of the
process this group represents.

Return only JSON: {"summary": "..."}

Entities:
%s`

const defaultClusterNamePrompt = `Give a short name (at most four words) for the process stage described below.

Return only JSON: {"name": "..."}

Description:
%s`

// Default returns the built-in configuration, including the Starship log vocabulary.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "gpt-oss:latest",
			BaseURL:  "http://localhost:11434",
			// Extraction wants stable JSON.
			Temperature:    0.2,
			MaxTokens:      8192,
			TimeoutSeconds: 120,
		},
		Parser:      DefaultParserConfig(),
		Analyzer:    AnalyzerConfig{MaxNodes: 200},
		Extraction:  ExtractionConfig{Prompt: defaultExtractionPrompt, IncludeSchema: true},
		Summary:     SummaryPrompts{Cluster: defaultClusterPrompt, ClusterName: defaultClusterNamePrompt},
		Concurrency: ConcurrencyConfig{BatchParse: 4},
	}
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		DefaultEntityType:       "VEHICLE",
		DefaultLocationType:     "RESOURCE",
		DefaultRelationshipType: "FLOW",
		EntityRules: []Rule{
			{Match: `^SN?\d+$`, Type: "VEHICLE", Properties: map[string]string{"role": "ship"}},
			{Match: `^BN?\d+$`, Type: "VEHICLE", Properties: map[string]string{"role": "booster"}},
			{Match: `RAPTOR|ENGINE|GRID ?FINS?|SHIELD|TILES?|TANK|DOME`, Type: "COMPONENT"},
			{Match: `STATIC ?FIRE|TEST|CRYO|WET ?DRESS|SPIN ?START`, Type: "TEST"},
			{
				Match:   `LAUNCH|FLIGHT|LANDING|CATCH|STACKING|\bMATE\b|DESTACK`,
				Exclude: `LAUNCH ?(MOUNT|TOWER|PAD|SITE)`,
				Type:    "EVENT",
			},
			{Match: `FAA|APPROVAL|ENVIRONMENTAL|LICEN[CS]E|MILESTONE`, Type: "MILESTONE"},
			{Match: `TEAM|CREW|ENGINEERS?\b|TECHNICIANS?|WORKERS?|OPERATORS?|INSPECTORS?|PERSON|STAFF`, Type: "ACTOR"},
			{
				Match:      `\bPAD ?[AB]\b|LAUNCH ?(MOUNT|TOWER|PAD|SITE)|\bOLM\b|\bOLIT\b|CHOPSTICKS|MECHAZILLA|QD ?ARM|\bQD\b`,
				Type:       "FACILITY",
				Properties: map[string]string{"category": "launch"},
			},
			{
				Match:      `\bBAY ?\d*\b|HIGHBAY|MEGABAY|MIDBAY|\bHQ\b|STARBASE|MASSEY|SANCHEZ|ROCKET ?GARDEN|MCGREGOR|BOCA ?CHICA`,
				Type:       "FACILITY",
				Properties: map[string]string{"category": "production"},
			},
			{Match: `^(USER|PERSON)`, Type: "ACTOR"},
			{Match: `^(SYS|SERVER)`, Type: "SYSTEM"},
			{Match: `^(TASK|ACTIVITY)`, Type: "TASK"},
			{Match: `^(EVT|EVENT)`, Type: "EVENT"},
			{Match: `^(RES|RESOURCE)`, Type: "RESOURCE"},
		},
		LocationRules: []Rule{
			{
				Match:      `PAD|MOUNT|TOWER|LAUNCH ?SITE|\bOLM\b|CHOPSTICKS`,
				Type:       "FACILITY",
				Properties: map[string]string{"category": "launch"},
			},
			{
				Match:      `BAY|\bHQ\b|FACTORY|HANGAR|STARBASE|SANCHEZ|ROCKET ?GARDEN|BUILD ?SITE|COMPLEX|FACILITY`,
				Type:       "FACILITY",
				Properties: map[string]string{"category": "production"},
			},
			{
				Match:      `MASSEY|MCGREGOR|TEST ?STAND|TEST ?SITE|\bSTAND\b|TANK ?FARM|RANGE`,
				Type:       "FACILITY",
				Properties: map[string]string{"category": "test"},
			},
		},
		RelationshipRules: []Rule{
			{Match: `MOVED|MOVING|ROLLED|ROLLING|TRANSPORTED|STACKED|DESTACKED|LIFTED|RETURNED|SHIPPED|RELOCATED`, Type: "TRANSFER"},
			{Match: `INSTALLED|INTEGRATED|MOUNTED|ATTACHED|MATED`, Type: "INTEGRATION"},
			{Match: `TEST|FIRED|CONDUCTED|UNDERGO|CRYO`, Type: "TESTING"},
			{Match: `RECEIVED|DELIVERED|ARRIVED|SUPPLIED`, Type: "SUPPLY"},
			{Match: `ANNOUNCED|REPORTED|CONFIRMED|PUBLISHED`, Type: "COMMUNICATION"},
			{Match: `REQUIRED|REQUIRES|DEPENDS|AWAITING|WAITING`, Type: "DEPENDENCY"},
		},
	}
}
