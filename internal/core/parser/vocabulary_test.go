package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/procflow/internal/config"
	"github.com/agenthands/procflow/internal/core/model"
)

func TestDefaultVocabulary_EntityTypes(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		id   string
		want model.EntityType
		role string
	}{
		{"S24", model.EntityVehicle, "ship"},
		{"sn15", model.EntityVehicle, "ship"},
		{"B7", model.EntityVehicle, "booster"},
		{"BN3", model.EntityVehicle, "booster"},
		{"Raptor2", model.EntityComponent, ""},
		{"Grid_Fins", model.EntityComponent, ""},
		{"Static_Fire", model.EntityTest, ""},
		{"WetDress", model.EntityTest, ""},
		{"Flight7", model.EntityEvent, ""},
		{"Launch", model.EntityEvent, ""},
		{"Launch_Tower", model.EntityFacility, ""},
		{"FAA", model.EntityMilestone, ""},
		{"Pad_Team", model.EntityActor, ""},
		{"Pad_B", model.EntityFacility, ""},
		{"Megabay", model.EntityFacility, ""},
		{"Bay_2", model.EntityFacility, ""},
		{"USER42", model.EntityActor, ""},
		{"SYSCTL", model.EntitySystem, ""},
		{"TASK7", model.EntityTask, ""},
		{"EVT9", model.EntityEvent, ""},
		{"RESX", model.EntityResource, ""},
		{"Ship28", model.EntityVehicle, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, props := v.EntityType(tt.id)
			assert.Equal(t, tt.want, got)
			if tt.role != "" {
				assert.Equal(t, tt.role, props["role"])
			}
		})
	}
}

func TestDefaultVocabulary_PropertiesAreCopied(t *testing.T) {
	v := DefaultVocabulary()
	_, a := v.EntityType("S1")
	a["role"] = "mutated"
	_, b := v.EntityType("S2")
	assert.Equal(t, "ship", b["role"])
}

func TestDefaultVocabulary_LocationTypes(t *testing.T) {
	v := DefaultVocabulary()

	typ, _ := v.LocationType("Pad A")
	assert.Equal(t, model.EntityFacility, typ)
	typ, _ = v.LocationType("orbital launch mount")
	assert.Equal(t, model.EntityFacility, typ)
	typ, props := v.LocationType("Massey's")
	assert.Equal(t, model.EntityFacility, typ)
	assert.Equal(t, "test", props["category"])
	typ, _ = v.LocationType("Highway 4")
	assert.Equal(t, model.EntityResource, typ)
}

func TestDefaultVocabulary_RelationshipTypes(t *testing.T) {
	v := DefaultVocabulary()

	cases := map[string]model.RelationshipType{
		"moved to orbital launch mount": model.RelationTransfer,
		"rolled out":                    model.RelationTransfer,
		"engines installed":             model.RelationIntegration,
		"static fire conducted":         model.RelationTesting,
		"booster undergoes cryo testing": model.RelationTesting,
		"received new tiles":            model.RelationSupply,
		"anomaly reported":              model.RelationCommunication,
		"launch license required":       model.RelationDependency,
		"spotted":                       model.RelationFlow,
	}
	for action, want := range cases {
		assert.Equal(t, want, v.RelationshipType(action), action)
	}
}

func TestCompileVocabulary_ConfigurableDefault(t *testing.T) {
	cfg := config.DefaultParserConfig()
	cfg.DefaultEntityType = "event"

	v, err := CompileVocabulary(cfg)
	require.NoError(t, err)
	typ, _ := v.EntityType("Something")
	assert.Equal(t, model.EntityEvent, typ)
}

func TestCompileVocabulary_Errors(t *testing.T) {
	cfg := config.ParserConfig{EntityRules: []config.Rule{{Match: "(", Type: "VEHICLE"}}}
	_, err := CompileVocabulary(cfg)
	assert.ErrorContains(t, err, "entity_rules[0]")

	cfg = config.ParserConfig{RelationshipRules: []config.Rule{{Match: "X", Type: "TELEPORT"}}}
	_, err = CompileVocabulary(cfg)
	assert.ErrorContains(t, err, "relationship_rules[0]")

	cfg = config.ParserConfig{DefaultEntityType: "ROCKET"}
	_, err = CompileVocabulary(cfg)
	assert.ErrorContains(t, err, "default_entity_type")
}

func TestCompileVocabulary_CustomDomain(t *testing.T) {
	cfg := config.ParserConfig{
		DefaultEntityType: "TASK",
		EntityRules: []config.Rule{
			{Match: `^HOST`, Type: "SYSTEM", Properties: map[string]string{"tier": "infra"}},
		},
	}
	v, err := CompileVocabulary(cfg)
	require.NoError(t, err)

	typ, props := v.EntityType("host-01")
	assert.Equal(t, model.EntitySystem, typ)
	assert.Equal(t, "infra", props["tier"])

	typ, _ = v.EntityType("S28")
	assert.Equal(t, model.EntityTask, typ)
}
