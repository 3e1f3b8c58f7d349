package generator

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// The test vocabulary: [BOS]=0 [EOS]=1 [PAD]=2 [UNK]=3 "a"=4 "b"=5.
const testVocab = 6

// testModel parameterizes the tiny one-unit GRU written by
// writeTestModel. With everything zero the logits are constant and
// equal to the fc biases. candWeight feeds the candidate gate so the
// hidden state rises while characters are emitted, and eosWeight turns
// that into a growing [EOS] logit.
type testModel struct {
	aBias, bBias, unkBias float32
	candWeight            float32
	eosWeight             float32
}

func writeTestModel(t *testing.T, tm testModel) string {
	t.Helper()
	dir := t.TempDir()

	tokenizer := map[string]any{
		"added_tokens": []map[string]any{
			{"id": 0, "content": "[BOS]", "special": true},
			{"id": 1, "content": "[EOS]", "special": true},
			{"id": 2, "content": "[PAD]", "special": true},
			{"id": 3, "content": "[UNK]", "special": true},
		},
		"model": map[string]any{
			"vocab": map[string]int{
				"[BOS]": 0, "[EOS]": 1, "[PAD]": 2, "[UNK]": 3,
				"a": 4, "b": 5,
			},
		},
	}
	writeJSONFile(t, filepath.Join(dir, "tokenizer.json"), tokenizer)

	config := map[string]any{
		"model": map[string]any{
			"vocab_size":    testVocab,
			"embedding_dim": 1,
			"hidden_size":   1,
			"num_layers":    1,
		},
	}
	writeJSONFile(t, filepath.Join(dir, "config.json"), config)

	weights := []stTensor{
		{"embedding.weight", []int{testVocab, 1}, []float32{0, 0, 0, 0, 1, 0.5}},
		{"gru.weight_ih_l0", []int{3, 1}, []float32{0, 0, tm.candWeight}},
		{"gru.weight_hh_l0", []int{3, 1}, []float32{0, 0, 0}},
		{"gru.bias_ih_l0", []int{3}, []float32{0, 0, 0}},
		{"gru.bias_hh_l0", []int{3}, []float32{0, 0, 0}},
		{"fc.weight", []int{testVocab, 1}, []float32{0, tm.eosWeight, 0, 0, 0, 0}},
		{"fc.bias", []int{testVocab}, []float32{0, 0, 0, tm.unkBias, tm.aBias, tm.bBias}},
	}
	if err := os.WriteFile(filepath.Join(dir, "model.safetensors"), encodeSafetensors(t, weights), 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}
	return dir
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type stTensor struct {
	name  string
	shape []int
	data  []float32
}

func encodeSafetensors(t *testing.T, tensors []stTensor) []byte {
	t.Helper()
	header := make(map[string]any, len(tensors))
	var data bytes.Buffer
	for _, ten := range tensors {
		begin := data.Len()
		for _, f := range ten.data {
			var le [4]byte
			binary.LittleEndian.PutUint32(le[:], math.Float32bits(f))
			data.Write(le[:])
		}
		header[ten.name] = map[string]any{
			"dtype":        "F32",
			"shape":        ten.shape,
			"data_offsets": []int{begin, data.Len()},
		}
	}
	hb, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal safetensors header: %v", err)
	}
	var out bytes.Buffer
	var lenLE [8]byte
	binary.LittleEndian.PutUint64(lenLE[:], uint64(len(hb)))
	out.Write(lenLE[:])
	out.Write(hb)
	out.Write(data.Bytes())
	return out.Bytes()
}

// loadedManager builds a ready Manager over a fresh test model fixture.
func loadedManager(t *testing.T, tm testModel, cfg ManagerConfig) *Manager {
	t.Helper()
	m := NewWithConfig(cfg)
	if err := m.Load(writeTestModel(t, tm)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}
