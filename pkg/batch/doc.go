// Package batch defines the serialized form of an annotation run.
//
// A [Batch] is what the pipeline produces, the cache and stores persist, the
// HTTP API returns and the render sinks draw. It sits at the boundary
// between the geometry packages under pkg/core and everything that moves
// results around.
//
// # Requests
//
// Each [Request] asks for one annotation kind over one or two shapes:
//
//	{"kind": "dimension", "shapes": ["card"]}
//	{"kind": "spacing", "shapes": ["title", "icon"], "orientation": "bottom"}
//	{"kind": "name", "shapes": ["card"]}
//
// A spacing request whose shapes overlap produces [KindOverlap] annotations,
// one per visible region, instead of a single gap measurement.
//
// # Skipped Entries
//
// Requests that cannot be satisfied for an expected reason, such as a shape
// outside any frame or a degenerate overlap region, are not errors. They are
// recorded in [Batch.Skipped] with their error code.
//
// # Serialization
//
//	data, _ := batch.Marshal(b)
//	b, _ := batch.Unmarshal(data)
//	b, _ := batch.ReadFile("result.json")
package batch
