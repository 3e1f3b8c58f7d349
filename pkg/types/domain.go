package types

// ModelInfo describes the character-level model backing the generator.
type ModelInfo struct {
	// Name of the model architecture.
	// example: planetrnn
	Name string `json:"name" example:"planetrnn"`
	// Artefacts directory the model was loaded from.
	// example: /app/artefacts
	Path string `json:"path" example:"/app/artefacts"`
	// Size of the token vocabulary, special tokens included.
	// example: 32
	VocabSize int `json:"vocab_size" example:"32"`
	// Width of the embedding table.
	// example: 48
	EmbeddingDim int `json:"embedding_dim" example:"48"`
	// Width of the recurrent hidden state.
	// example: 96
	HiddenSize int `json:"hidden_size" example:"96"`
	// Number of stacked recurrent layers.
	// example: 1
	NumLayers int `json:"num_layers" example:"1"`
}
