package model

import (
	"fmt"
	"strings"
)

type EntityType string

const (
	EntityVehicle   EntityType = "VEHICLE"
	EntityFacility  EntityType = "FACILITY"
	EntityComponent EntityType = "COMPONENT"
	EntityTest      EntityType = "TEST"
	EntityMilestone EntityType = "MILESTONE"
	EntityActor     EntityType = "ACTOR"
	EntityEvent     EntityType = "EVENT"
	EntityResource  EntityType = "RESOURCE"
	EntityTask      EntityType = "TASK"
	EntitySystem    EntityType = "SYSTEM"
)

// EntityTypes lists every known entity tag in declaration order.
var EntityTypes = []EntityType{
	EntityVehicle, EntityFacility, EntityComponent, EntityTest, EntityMilestone,
	EntityActor, EntityEvent, EntityResource, EntityTask, EntitySystem,
}

type RelationshipType string

const (
	RelationFlow          RelationshipType = "FLOW"
	RelationTransfer      RelationshipType = "TRANSFER"
	RelationIntegration   RelationshipType = "INTEGRATION"
	RelationTesting       RelationshipType = "TESTING"
	RelationSupply        RelationshipType = "SUPPLY"
	RelationCommunication RelationshipType = "COMMUNICATION"
	RelationDependency    RelationshipType = "DEPENDENCY"
	RelationAssociation   RelationshipType = "ASSOCIATION"
	RelationUsage         RelationshipType = "USAGE"
)

var RelationshipTypes = []RelationshipType{
	RelationFlow, RelationTransfer, RelationIntegration, RelationTesting, RelationSupply,
	RelationCommunication, RelationDependency, RelationAssociation, RelationUsage,
}

// ParseEntityType resolves a tag case-insensitively.
func ParseEntityType(s string) (EntityType, error) {
	tag := EntityType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range EntityTypes {
		if t == tag {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// ParseRelationshipType resolves a tag case-insensitively.
func ParseRelationshipType(s string) (RelationshipType, error) {
	tag := RelationshipType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range RelationshipTypes {
		if t == tag {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown relationship type %q", s)
}
