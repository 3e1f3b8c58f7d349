package artefact

import (
	"encoding/json"
	"fmt"
	"os"
)

// ModelConfig holds the architecture hyperparameters from the "model"
// object of config.json.
type ModelConfig struct {
	VocabSize    int `json:"vocab_size"`
	EmbeddingDim int `json:"embedding_dim"`
	HiddenSize   int `json:"hidden_size"`
	NumLayers    int `json:"num_layers"`
}

// LoadModelConfig reads config.json and extracts the model section.
// A parseable file without a "model" key is a distinct error from
// malformed JSON.
func LoadModelConfig(path string) (ModelConfig, error) {
	var cfg ModelConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errMissingFile("config file", path)
		}
		return cfg, errInvalid("failed to read config file", err)
	}
	var doc struct {
		Model *ModelConfig `json:"model"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return cfg, errInvalid("invalid JSON in config file", err)
	}
	if doc.Model == nil {
		return cfg, errInvalid("config file missing 'model' key", nil)
	}
	cfg = *doc.Model
	if cfg.NumLayers == 0 {
		cfg.NumLayers = 1
	}
	if err := cfg.validate(); err != nil {
		return ModelConfig{}, err
	}
	return cfg, nil
}

func (c ModelConfig) validate() error {
	if c.VocabSize <= 0 {
		return errInvalid(fmt.Sprintf("model config vocab_size %d must be positive", c.VocabSize), nil)
	}
	if c.EmbeddingDim <= 0 {
		return errInvalid(fmt.Sprintf("model config embedding_dim %d must be positive", c.EmbeddingDim), nil)
	}
	if c.HiddenSize <= 0 {
		return errInvalid(fmt.Sprintf("model config hidden_size %d must be positive", c.HiddenSize), nil)
	}
	if c.NumLayers < 1 {
		return errInvalid(fmt.Sprintf("model config num_layers %d must be at least 1", c.NumLayers), nil)
	}
	return nil
}
