// Package artefact loads the generator's model inputs: the character
// vocabulary (tokenizer.json), the architecture hyperparameters
// (config.json) and the trained weights (model.safetensors), all from
// one artefacts directory.
package artefact

import (
	"fmt"
	"path/filepath"

	"planetd/internal/common/fsutil"
)

// File names expected inside the artefacts directory.
const (
	TokenizerFile = "tokenizer.json"
	ConfigFile    = "config.json"
	WeightsFile   = "model.safetensors"
)

// Artefacts bundles everything loaded from one artefacts directory.
type Artefacts struct {
	Dir       string
	Tokenizer *Tokenizer
	Config    ModelConfig
	Weights   *Weights
}

// ResolveDir expands and absolutizes dir. When dir does not exist it
// falls back once to the same directory name one level up, matching
// how the service has always been run both from the repo root and
// from inside the backend image. The second result reports whether the
// fallback was taken.
func ResolveDir(dir string) (string, bool, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return "", false, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", false, fmt.Errorf("abs path: %w", err)
	}
	if fsutil.DirExists(abs) {
		return abs, false, nil
	}
	parent := filepath.Join(filepath.Dir(filepath.Dir(abs)), filepath.Base(abs))
	if fsutil.DirExists(parent) {
		return parent, true, nil
	}
	return "", false, errMissingFile("artefacts directory", abs)
}

// LoadDir loads tokenizer, model config and weights from dir, in that
// order, so the first broken artefact is the one reported.
func LoadDir(dir string) (*Artefacts, error) {
	abs, _, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	tok, err := LoadTokenizer(filepath.Join(abs, TokenizerFile))
	if err != nil {
		return nil, err
	}
	cfg, err := LoadModelConfig(filepath.Join(abs, ConfigFile))
	if err != nil {
		return nil, err
	}
	if cfg.VocabSize != tok.VocabSize() {
		return nil, errInvalid(fmt.Sprintf("config vocab_size %d does not match tokenizer vocabulary %d", cfg.VocabSize, tok.VocabSize()), nil)
	}
	w, err := LoadWeights(filepath.Join(abs, WeightsFile))
	if err != nil {
		return nil, err
	}
	return &Artefacts{Dir: abs, Tokenizer: tok, Config: cfg, Weights: w}, nil
}
