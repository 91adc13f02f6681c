package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/logger"
)

// DD MMM: ENTITY action at LOCATION for REASON (SOURCE)
var lineRe = regexp.MustCompile(`^(\d+)\s+([A-Za-z]+):\s+(\S+)\s+(.+?)(?:\s+\(([^)]+)\))?$`)

var (
	errNoMatch      = errors.New("line does not match 'DD Mon: ENTITY action at location (source)'")
	errUnknownMonth = errors.New("unknown month name")
	errBadDay       = errors.New("invalid day")
)

// Event is one successfully parsed log line.
type Event struct {
	Time     time.Time
	Entity   string
	Action   string
	Location string
	Reason   string
	Source   string
}

type Result struct {
	Graph    *model.ProcessGraph    `json:"graph"`
	Warnings []MalformedLineWarning `json:"warnings,omitempty"`
}

// Parser converts event logs into process graphs. It holds no per-call state
// and may be shared between goroutines.
type Parser struct {
	vocab *Vocabulary
	now   func() time.Time
}

type Option func(*Parser)

// WithClock sets the clock whose calendar year dates are resolved against.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

func New(vocab *Vocabulary, opts ...Option) *Parser {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	p := &Parser{
		vocab: vocab,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds a ProcessGraph from logText. Lines that do not follow the
// grammar are skipped and reported in Result.Warnings.
func (p *Parser) Parse(logText string) (*Result, error) {
	text := strings.TrimSpace(logText)
	if text == "" {
		return nil, ErrEmptyInput
	}

	year := p.now().Year()
	b := newBuilder(p.vocab)
	var warnings []MalformedLineWarning

	// A FLOW edge links two adjacent parsed lines; blank and malformed lines break the chain.
	lines := strings.Split(text, "\n")
	// Every line of the trimmed log counts as an event, blank and malformed ones included.
	b.totalEvents = len(lines)

	prevEntity := ""
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			prevEntity = ""
			continue
		}

		ev, err := ParseLine(line, year)
		if err != nil {
			w := MalformedLineWarning{Line: i + 1, Text: line, Reason: err.Error()}
			logger.Warn("Skipping malformed log line", "line", w.Line, "reason", w.Reason)
			warnings = append(warnings, w)
			prevEntity = ""
			continue
		}

		b.observe(ev, prevEntity)
		prevEntity = ev.Entity
	}

	graph := b.build()
	logger.Debug("Parsed log",
		"events", graph.Metadata.TotalEvents,
		"entities", len(graph.Entities),
		"relationships", len(graph.Relationships),
		"warnings", len(warnings),
	)
	return &Result{Graph: graph, Warnings: warnings}, nil
}

// ParseLine parses a single trimmed line, resolving its date in year.
func ParseLine(line string, year int) (Event, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Event{}, errNoMatch
	}

	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return Event{}, errBadDay
	}
	month, ok := lookupMonth(m[2])
	if !ok {
		return Event{}, errUnknownMonth
	}

	ev := Event{
		Time:   time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Entity: m[3],
		Source: strings.TrimSpace(m[5]),
	}

	action, rest, hasLocation := strings.Cut(m[4], " at ")
	ev.Action = strings.TrimSpace(action)
	if hasLocation {
		location, reason, _ := strings.Cut(rest, " for ")
		ev.Location = strings.TrimSpace(location)
		ev.Reason = strings.TrimSpace(reason)
	}
	return ev, nil
}

// graphBuilder owns the dedup maps of a single Parse call.
type graphBuilder struct {
	vocab *Vocabulary

	entities      map[string]*model.Entity
	entityOrder   []string
	relationships map[string]*model.Relationship
	relOrder      []string

	start, end  time.Time
	seenEvent   bool
	totalEvents int
}

func newBuilder(vocab *Vocabulary) *graphBuilder {
	return &graphBuilder{
		vocab:         vocab,
		entities:      make(map[string]*model.Entity),
		relationships: make(map[string]*model.Relationship),
	}
}

func (b *graphBuilder) observe(ev Event, prevEntity string) {
	if !b.seenEvent || ev.Time.Before(b.start) {
		b.start = ev.Time
	}
	if !b.seenEvent || ev.Time.After(b.end) {
		b.end = ev.Time
	}
	b.seenEvent = true

	primary := b.entity(ev.Entity, b.vocab.EntityType)
	primary.Metrics.Frequency++

	if ev.Location != "" {
		location := b.entity(ev.Location, b.vocab.LocationType)
		if location != primary {
			location.Metrics.Frequency++
		}

		rel, created := b.relationship(ev.Entity, model.MarkerAt, ev.Location, ev.Time)
		if created {
			rel.Type = b.vocab.RelationshipType(ev.Action)
			rel.Properties["action"] = ev.Action
			if ev.Reason != "" {
				rel.Properties["reason"] = ev.Reason
			}
			if ev.Source != "" {
				rel.Properties["source"] = ev.Source
			}
		}
		rel.Metrics.Frequency++
	}

	if prevEntity != "" && prevEntity != ev.Entity {
		rel, created := b.relationship(prevEntity, model.MarkerFlow, ev.Entity, ev.Time)
		if created {
			rel.Type = model.RelationFlow
		}
		rel.Metrics.Frequency++
	}
}

func (b *graphBuilder) entity(id string, infer func(string) (model.EntityType, map[string]any)) *model.Entity {
	if e, ok := b.entities[id]; ok {
		return e
	}
	typ, props := infer(id)
	e := model.NewEntity(id, FormatName(id), typ)
	e.Properties = props
	b.entities[id] = e
	b.entityOrder = append(b.entityOrder, id)
	return e
}

func (b *graphBuilder) relationship(source, marker, target string, at time.Time) (*model.Relationship, bool) {
	id := model.RelationshipID(source, marker, target)
	if r, ok := b.relationships[id]; ok {
		return r, false
	}
	ts := at
	r := &model.Relationship{
		ID:         id,
		Source:     source,
		Target:     target,
		Properties: map[string]any{},
		Metrics:    model.RelationshipMetrics{Timestamp: &ts},
	}
	b.relationships[id] = r
	b.relOrder = append(b.relOrder, id)
	return r, true
}

func (b *graphBuilder) build() *model.ProcessGraph {
	g := &model.ProcessGraph{
		Entities:      make([]model.Entity, 0, len(b.entityOrder)),
		Relationships: make([]model.Relationship, 0, len(b.relOrder)),
		Metadata: model.Metadata{
			StartTime:   b.start,
			EndTime:     b.end,
			TotalEvents: b.totalEvents,
		},
	}
	for _, id := range b.entityOrder {
		g.Entities = append(g.Entities, *b.entities[id])
	}
	for _, id := range b.relOrder {
		g.Relationships = append(g.Relationships, *b.relationships[id])
	}
	return g
}
