package embed

import "context"

// Client produces embedding vectors for texts. Implementations must be
// pure with respect to input: the same text yields the same vector for a
// given model version. One vector comes back per input text, in order.
type Client interface {
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
