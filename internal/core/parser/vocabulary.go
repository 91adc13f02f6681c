package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agenthands/procflow/internal/config"
	"github.com/agenthands/procflow/internal/core/model"
)

// keyReplacer makes "grid_fin" and "wet-dress" match multi-word keywords.
var keyReplacer = strings.NewReplacer("_", " ", "-", " ")

type rule struct {
	match      *regexp.Regexp
	exclude    *regexp.Regexp
	tag        string
	properties map[string]string
}

func (r rule) matches(key string) bool {
	if !r.match.MatchString(key) {
		return false
	}
	return r.exclude == nil || !r.exclude.MatchString(key)
}

// Vocabulary is a compiled, ordered set of type-inference rules. The first
// matching rule wins. A Vocabulary is immutable and safe for concurrent use.
type Vocabulary struct {
	entityRules       []rule
	locationRules     []rule
	relationshipRules []rule

	defaultEntity       model.EntityType
	defaultLocation     model.EntityType
	defaultRelationship model.RelationshipType
}

// DefaultVocabulary compiles the built-in Starship log vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := CompileVocabulary(config.DefaultParserConfig())
	if err != nil {
		panic(fmt.Sprintf("parser: invalid built-in vocabulary: %v", err))
	}
	return v
}

func CompileVocabulary(cfg config.ParserConfig) (*Vocabulary, error) {
	v := &Vocabulary{
		defaultEntity:       model.EntityVehicle,
		defaultLocation:     model.EntityResource,
		defaultRelationship: model.RelationFlow,
	}

	var err error
	if cfg.DefaultEntityType != "" {
		if v.defaultEntity, err = model.ParseEntityType(cfg.DefaultEntityType); err != nil {
			return nil, fmt.Errorf("default_entity_type: %w", err)
		}
	}
	if cfg.DefaultLocationType != "" {
		if v.defaultLocation, err = model.ParseEntityType(cfg.DefaultLocationType); err != nil {
			return nil, fmt.Errorf("default_location_type: %w", err)
		}
	}
	if cfg.DefaultRelationshipType != "" {
		if v.defaultRelationship, err = model.ParseRelationshipType(cfg.DefaultRelationshipType); err != nil {
			return nil, fmt.Errorf("default_relationship_type: %w", err)
		}
	}

	if v.entityRules, err = compileRules("entity_rules", cfg.EntityRules, entityTag); err != nil {
		return nil, err
	}
	if v.locationRules, err = compileRules("location_rules", cfg.LocationRules, entityTag); err != nil {
		return nil, err
	}
	if v.relationshipRules, err = compileRules("relationship_rules", cfg.RelationshipRules, relationshipTag); err != nil {
		return nil, err
	}
	return v, nil
}

func entityTag(s string) (string, error) {
	t, err := model.ParseEntityType(s)
	return string(t), err
}

func relationshipTag(s string) (string, error) {
	t, err := model.ParseRelationshipType(s)
	return string(t), err
}

func compileRules(table string, rules []config.Rule, tag func(string) (string, error)) ([]rule, error) {
	compiled := make([]rule, 0, len(rules))
	for i, r := range rules {
		t, err := tag(r.Type)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", table, i, err)
		}
		match, err := regexp.Compile("(?i)" + r.Match)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: invalid match pattern: %w", table, i, err)
		}
		cr := rule{match: match, tag: t, properties: r.Properties}
		if r.Exclude != "" {
			if cr.exclude, err = regexp.Compile("(?i)" + r.Exclude); err != nil {
				return nil, fmt.Errorf("%s[%d]: invalid exclude pattern: %w", table, i, err)
			}
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

func firstMatch(rules []rule, text string) (rule, bool) {
	key := keyReplacer.Replace(strings.TrimSpace(text))
	for _, r := range rules {
		if r.matches(key) {
			return r, true
		}
	}
	return rule{}, false
}

// EntityType infers the type of a primary entity from its id. The returned
// properties are a fresh map owned by the caller.
func (v *Vocabulary) EntityType(id string) (model.EntityType, map[string]any) {
	if r, ok := firstMatch(v.entityRules, id); ok {
		return model.EntityType(r.tag), copyProperties(r.properties)
	}
	return v.defaultEntity, map[string]any{}
}

// LocationType infers the type of a location entity.
func (v *Vocabulary) LocationType(location string) (model.EntityType, map[string]any) {
	if r, ok := firstMatch(v.locationRules, location); ok {
		return model.EntityType(r.tag), copyProperties(r.properties)
	}
	return v.defaultLocation, map[string]any{}
}

// RelationshipType infers an entity-location relationship type from the action verb.
func (v *Vocabulary) RelationshipType(action string) model.RelationshipType {
	if r, ok := firstMatch(v.relationshipRules, action); ok {
		return model.RelationshipType(r.tag)
	}
	return v.defaultRelationship
}

func copyProperties(props map[string]string) map[string]any {
	out := make(map[string]any, len(props))
	for k, val := range props {
		out[k] = val
	}
	return out
}
