package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/procflow/internal/core/model"
)

const starshipLog = `15 Jan: S28 moved to orbital launch mount at Pad A for integration testing (NSF)
18 Jan: B9 booster undergoes cryo testing at suborbital pad (RGV photos)`

func fixedClock() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newTestParser() *Parser {
	return New(DefaultVocabulary(), WithClock(fixedClock))
}

func entityByID(t *testing.T, g *model.ProcessGraph, id string) model.Entity {
	t.Helper()
	for _, e := range g.Entities {
		if e.ID == id {
			return e
		}
	}
	require.FailNowf(t, "entity not found", "id %q", id)
	return model.Entity{}
}

func relationshipByID(g *model.ProcessGraph, id string) (model.Relationship, bool) {
	for _, r := range g.Relationships {
		if r.ID == id {
			return r, true
		}
	}
	return model.Relationship{}, false
}

func TestParse_StarshipScenario(t *testing.T) {
	res, err := newTestParser().Parse(starshipLog)
	require.NoError(t, err)
	g := res.Graph
	assert.Empty(t, res.Warnings)

	ids := make([]string, 0, len(g.Entities))
	for _, e := range g.Entities {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"S28", "Pad A", "B9", "suborbital pad"}, ids)

	s28 := entityByID(t, g, "S28")
	assert.Equal(t, model.EntityVehicle, s28.Type)
	assert.Equal(t, "ship", s28.Properties["role"])
	assert.Equal(t, 1, s28.Metrics.Frequency)

	padA := entityByID(t, g, "Pad A")
	assert.Equal(t, model.EntityFacility, padA.Type)
	assert.Equal(t, 1, padA.Metrics.Frequency)

	b9 := entityByID(t, g, "B9")
	assert.Equal(t, model.EntityVehicle, b9.Type)
	assert.Equal(t, "booster", b9.Properties["role"])

	assert.Equal(t, model.EntityFacility, entityByID(t, g, "suborbital pad").Type)

	at1, ok := relationshipByID(g, "S28-AT-Pad A")
	require.True(t, ok)
	assert.Equal(t, model.RelationTransfer, at1.Type)
	assert.Equal(t, "moved to orbital launch mount", at1.Properties["action"])
	assert.Equal(t, "integration testing", at1.Properties["reason"])
	assert.Equal(t, "NSF", at1.Properties["source"])
	require.NotNil(t, at1.Metrics.Timestamp)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), *at1.Metrics.Timestamp)

	at2, ok := relationshipByID(g, "B9-AT-suborbital pad")
	require.True(t, ok)
	assert.Equal(t, model.RelationTesting, at2.Type)

	var flows []model.Relationship
	for _, r := range g.Relationships {
		if r.Type == model.RelationFlow {
			flows = append(flows, r)
		}
	}
	require.Len(t, flows, 1)
	assert.Equal(t, "S28-FLOW-B9", flows[0].ID)
	assert.Equal(t, "S28", flows[0].Source)
	assert.Equal(t, "B9", flows[0].Target)
	assert.Equal(t, 1, flows[0].Metrics.Frequency)

	assert.Equal(t, 2, g.Metadata.TotalEvents)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), g.Metadata.StartTime)
	assert.Equal(t, time.Date(2024, time.January, 18, 0, 0, 0, 0, time.UTC), g.Metadata.EndTime)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\n  \n"} {
		_, err := newTestParser().Parse(in)
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", in)
	}
}

func TestParse_IdempotentMerge(t *testing.T) {
	var lines []string
	for i := 1; i <= 5; i++ {
		lines = append(lines, fmt.Sprintf("%d Feb: S24 rolled out at Pad A", i))
	}
	res, err := newTestParser().Parse(strings.Join(lines, "\n"))
	require.NoError(t, err)

	g := res.Graph
	require.Len(t, g.Entities, 2)
	assert.Equal(t, 5, entityByID(t, g, "S24").Metrics.Frequency)
	assert.Equal(t, 5, entityByID(t, g, "Pad A").Metrics.Frequency)

	require.Len(t, g.Relationships, 1)
	assert.Equal(t, 5, g.Relationships[0].Metrics.Frequency)
	// the first-seen time is kept
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), *g.Relationships[0].Metrics.Timestamp)
}

func TestParse_SameEntityHasNoFlow(t *testing.T) {
	log := `1 Mar: B10 moved at Highbay
2 Mar: B10 tested at Massey
3 Mar: B10 rolled back at Highbay`
	res, err := newTestParser().Parse(log)
	require.NoError(t, err)

	for _, r := range res.Graph.Relationships {
		assert.NotEqual(t, model.RelationFlow, r.Type, "unexpected flow %s", r.ID)
		assert.NotEqual(t, model.MarkerFlow, strings.Split(r.ID, "-")[1])
	}
	assert.Equal(t, 3, entityByID(t, res.Graph, "B10").Metrics.Frequency)
	assert.Equal(t, 2, entityByID(t, res.Graph, "Highbay").Metrics.Frequency)
}

func TestParse_MalformedLinesAreCountedAndSkipped(t *testing.T) {
	log := `15 Jan: S28 moved at Pad A
this line is garbage
16 Foo: B9 moved at Pad B
17 Jan: B9 moved at Pad B`
	res, err := newTestParser().Parse(log)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Graph.Metadata.TotalEvents)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, 2, res.Warnings[0].Line)
	assert.Equal(t, 3, res.Warnings[1].Line)
	assert.Contains(t, res.Warnings[1].Reason, "month")

	// the chain is broken by the malformed lines, so no flow S28 -> B9
	_, ok := relationshipByID(res.Graph, "S28-FLOW-B9")
	assert.False(t, ok)
	assert.NoError(t, res.Graph.Validate())
}

func TestParse_NoLocation(t *testing.T) {
	res, err := newTestParser().Parse("3 Apr: S25 static fire complete (Starbase)")
	require.NoError(t, err)

	require.Len(t, res.Graph.Entities, 1)
	assert.Empty(t, res.Graph.Relationships)
	assert.Equal(t, 1, res.Graph.Entities[0].Metrics.Frequency)
}

func TestParse_FlowFrequencyAccumulates(t *testing.T) {
	log := `1 May: S28 moved at Pad A
2 May: B9 moved at Pad A
3 May: S28 moved at Pad A
4 May: B9 moved at Pad A`
	res, err := newTestParser().Parse(log)
	require.NoError(t, err)

	forward, ok := relationshipByID(res.Graph, "S28-FLOW-B9")
	require.True(t, ok)
	assert.Equal(t, 2, forward.Metrics.Frequency)

	back, ok := relationshipByID(res.Graph, "B9-FLOW-S28")
	require.True(t, ok)
	assert.Equal(t, 1, back.Metrics.Frequency)
	assert.Equal(t, 4, entityByID(t, res.Graph, "Pad A").Metrics.Frequency)
}

func TestParse_ReferentialIntegrity(t *testing.T) {
	log := `15 Jan: S28 moved to orbital launch mount at Pad A for integration testing (NSF)
18 Jan: B9 booster undergoes cryo testing at suborbital pad (RGV photos)

20 Jan: Raptor_Engines delivered at Megabay
21 Jan: FAA_License pending review
22 Jan: S28 stacked on B9 at Pad A`
	res, err := newTestParser().Parse(log)
	require.NoError(t, err)
	require.NoError(t, res.Graph.Validate())

	assert.Equal(t, model.EntityComponent, entityByID(t, res.Graph, "Raptor_Engines").Type)
	assert.Equal(t, "Raptor Engines", entityByID(t, res.Graph, "Raptor_Engines").Name)
	assert.Equal(t, model.EntityMilestone, entityByID(t, res.Graph, "FAA_License").Type)
	assert.Equal(t, 6, res.Graph.Metadata.TotalEvents)
}

func TestParse_InteriorBlankLineCountsAsEvent(t *testing.T) {
	res, err := newTestParser().Parse("\n15 Jan: S28 moved at Pad A\n\n18 Jan: B9 rolled at Pad A\n\n")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Graph.Metadata.TotalEvents)
	assert.Empty(t, res.Warnings)

	// the blank line still breaks the chain
	_, ok := relationshipByID(res.Graph, "S28-FLOW-B9")
	assert.False(t, ok)
}

func TestParse_UsesClockYear(t *testing.T) {
	p := New(nil, WithClock(func() time.Time { return time.Date(2031, time.March, 3, 0, 0, 0, 0, time.UTC) }))
	res, err := p.Parse("9 December: S40 moved at Pad B")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2031, time.December, 9, 0, 0, 0, 0, time.UTC), res.Graph.Metadata.StartTime)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
		err  bool
	}{
		{
			name: "full line",
			line: "15 Jan: S28 moved to orbital launch mount at Pad A for integration testing (NSF)",
			want: Event{
				Time:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
				Entity:   "S28",
				Action:   "moved to orbital launch mount",
				Location: "Pad A",
				Reason:   "integration testing",
				Source:   "NSF",
			},
		},
		{
			name: "location keeps later at clauses",
			line: "2 Feb: B9 parked at Pad B at night",
			want: Event{
				Time:     time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC),
				Entity:   "B9",
				Action:   "parked",
				Location: "Pad B at night",
			},
		},
		{
			name: "no source",
			line: "3 mar: SN15 landed",
			want: Event{
				Time:   time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
				Entity: "SN15",
				Action: "landed",
			},
		},
		{name: "missing action", line: "3 Mar: SN15", err: true},
		{name: "missing colon", line: "3 Mar S28 moved at Pad A", err: true},
		{name: "bad month", line: "3 Moo: S28 moved at Pad A", err: true},
		{name: "day out of range", line: "42 Jan: S28 moved at Pad A", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line, 2024)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "S28", FormatName("S28"))
	assert.Equal(t, "Pad A", FormatName("Pad A"))
	assert.Equal(t, "Raptor Engine 3", FormatName("RaptorEngine_3"))
	assert.Equal(t, "heat shield", FormatName("heat__shield"))
}
