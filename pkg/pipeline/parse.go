package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/mermedit/pkg/cache"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/observability"
)

// Parse reads a document into its graph. Parsing never fails; documents
// the parser does not understand yield an empty graph.
func Parse(ctx context.Context, text string) notation.Graph {
	start := time.Now()
	observability.Pipeline().OnParseStart(ctx)
	g := notation.Parse(text)
	observability.Pipeline().OnParseComplete(ctx, g.Kind.String(), len(g.Nodes), time.Since(start))
	return g
}

// GraphHash returns the content hash of g used in layout cache keys.
func GraphHash(g notation.Graph) string {
	data, _ := json.Marshal(g)
	return cache.Hash(data)
}
