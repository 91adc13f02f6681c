package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Run(id);",
	"CREATE INDEX ON :Entity(run_id);",
	"CREATE INDEX ON :Entity(id);",
}

const (
	SaveRunQuery = `
		MERGE (r:Run {id: $run_id})
		SET r.created_at = $created_at,
			r.start_time = $start_time,
			r.end_time = $end_time,
			r.total_events = $total_events
		RETURN r.id AS id
	`

	SaveEntitiesQuery = `
		MATCH (r:Run {id: $run_id})
		UNWIND $entities AS e
		MERGE (n:Entity {run_id: $run_id, id: e.id})
		SET n.seq = e.seq,
			n.name = e.name,
			n.type = e.type,
			n.frequency = e.frequency,
			n.properties = e.properties
		MERGE (r)-[:CONTAINS]->(n)
		RETURN count(n) AS saved
	`

	SaveRelationshipsQuery = `
		UNWIND $relationships AS rel
		MATCH (s:Entity {run_id: $run_id, id: rel.source})
		MATCH (t:Entity {run_id: $run_id, id: rel.target})
		MERGE (s)-[e:RELATES {run_id: $run_id, id: rel.id}]->(t)
		SET e.seq = rel.seq,
			e.type = rel.type,
			e.frequency = rel.frequency,
			e.timestamp = rel.timestamp,
			e.properties = rel.properties
		RETURN count(e) AS saved
	`

	DeleteRunQuery = `
		MATCH (r:Run {id: $run_id})
		OPTIONAL MATCH (n:Entity {run_id: $run_id})
		DETACH DELETE r, n
	`

	GetRunQuery = `
		MATCH (r:Run {id: $run_id})
		RETURN r.start_time AS start_time, r.end_time AS end_time, r.total_events AS total_events
	`

	GetEntitiesByRunQuery = `
		MATCH (n:Entity {run_id: $run_id})
		RETURN n.id AS id, n.name AS name, n.type AS type,
			n.frequency AS frequency, n.properties AS properties
		ORDER BY n.seq
	`

	GetRelationshipsByRunQuery = `
		MATCH (s:Entity)-[e:RELATES {run_id: $run_id}]->(t:Entity)
		RETURN e.id AS id, s.id AS source, t.id AS target, e.type AS type,
			e.frequency AS frequency, e.timestamp AS timestamp, e.properties AS properties
		ORDER BY e.seq
	`
)
