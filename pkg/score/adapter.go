package score

import "context"

// Adapter converts a source-specific identifier into a normalized
// ArtifactRecord. Implementations must substitute absent optional fields
// rather than failing on them; only network, authorization, and parse
// failures return an error. The runner catches any error and continues in
// degraded mode.
type Adapter interface {
	// Fetch retrieves and normalizes one artifact. The category selects
	// between source endpoints where it matters (Hugging Face models vs
	// datasets); forge adapters may ignore it.
	Fetch(ctx context.Context, id string, category Category) (*ArtifactRecord, error)

	// Source identifies the remote API this adapter talks to.
	Source() Source
}
