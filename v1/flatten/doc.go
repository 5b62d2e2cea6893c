// Package flatten turns nested structures into single-level maps.
//
// It is the flatten collaborator of the tlog facade: when a logger is
// configured with FlattenOutputObject, the structured payload is passed
// through Flatten before it reaches the sink, so that sinks with a flat field
// model (zap fields, console tables) receive one key per leaf.
//
//	flatten.Flatten(map[string]any{
//		"user": map[string]any{"id": 7, "tags": []string{"a", "b"}},
//	}, flatten.Options{Prefix: "@", Delimiter: "."})
//
//	// map[string]any{"@user.id": 7, "@user.tags.0": "a", "@user.tags.1": "b"}
//
// Entries exposes the "own keys" view of a Go value that both Flatten and the
// tlog payload composer rely on: map entries, or exported struct fields named
// the way encoding/json would name them.
package flatten
