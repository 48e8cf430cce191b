// Package graph turns a selected writer or work plus its opinions into a
// node/link structure for rendering. Node kinds are an explicit tagged
// union resolved once at assembly time; nothing downstream ever re-inspects
// shapes.
package graph

import (
	"fmt"
)

// NodeKind discriminates the two node shapes.
type NodeKind int

const (
	KindWriter NodeKind = iota
	KindWork
)

func (k NodeKind) String() string {
	switch k {
	case KindWriter:
		return "writer"
	case KindWork:
		return "work"
	default:
		return "unknown"
	}
}

// Node is one graph vertex. ID is the map key used for deduplication and as
// a link endpoint: "writer-<id>" or "work-<id>".
type Node struct {
	ID    string
	Kind  NodeKind
	Label string

	// Exactly one of these is meaningful, per Kind.
	WriterID int64
	WorkID   int64
}

// Link is a directed edge from a writer node to a work node, labeled with
// the opinion's evidence.
type Link struct {
	Source    string
	Target    string
	Sentiment bool
	Quote     string
	Citation  string
}

// Graph is the assembled node/link structure.
type Graph struct {
	Nodes []Node
	Links []Link
}

// Empty reports whether the graph has no nodes at all, which only happens
// when nothing is selected.
func (g *Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// WriterNodeID returns the node key for a writer.
func WriterNodeID(id int64) string {
	return fmt.Sprintf("writer-%d", id)
}

// WorkNodeID returns the node key for a work.
func WorkNodeID(id int64) string {
	return fmt.Sprintf("work-%d", id)
}
