package tagindex

// NodeType distinguishes the two sides of the tag/document graph.
type NodeType string

const (
	NodeTag      NodeType = "tag"
	NodeDocument NodeType = "document"
)

// Node is a vertex in the relationship graph. Document labels are resolved
// by the graph view, not here.
type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
	// Weight is the number of edges touching the node.
	Weight int `json:"weight"`
}

// Edge links a tag to a document carrying it.
type Edge struct {
	Tag      string `json:"tag"`
	Document string `json:"document"`
}

// Graph is the bipartite tag/document view of an Index.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Graph renders the index as a bipartite graph with deterministic ordering:
// tag nodes first, then document nodes, each sorted by id.
func (idx *Index) Graph() Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, tag := range idx.Tags() {
		docs := idx.Documents(tag)
		g.Nodes = append(g.Nodes, Node{ID: tag, Type: NodeTag, Weight: len(docs)})
		for _, d := range docs {
			g.Edges = append(g.Edges, Edge{Tag: tag, Document: d})
		}
	}
	for _, doc := range sortedKeys(idx.docs) {
		g.Nodes = append(g.Nodes, Node{ID: doc, Type: NodeDocument, Weight: len(idx.docs[doc])})
	}
	return g
}
