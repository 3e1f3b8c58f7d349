package e2e

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"planetd/internal/generator"
	"planetd/internal/httpapi"
	"planetd/internal/starred"
)

// writeArtefactsDir creates a temporary artefacts directory holding a
// complete tiny model: a vocabulary of [BOS] [EOS] [PAD] [UNK] "a" "b",
// a one-unit single-layer network and matching weights. The fc biases
// favour "a", so greedy sampling yields a run of "a" characters.
func writeArtefactsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeJSON(t, filepath.Join(dir, "tokenizer.json"), map[string]any{
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
	})
	writeJSON(t, filepath.Join(dir, "config.json"), map[string]any{
		"model": map[string]any{
			"vocab_size":    6,
			"embedding_dim": 1,
			"hidden_size":   1,
			"num_layers":    1,
		},
	})

	weights := []fixtureTensor{
		{"embedding.weight", []int{6, 1}, []float32{0, 0, 0, 0, 1, 0.5}},
		{"gru.weight_ih_l0", []int{3, 1}, []float32{0, 0, 0}},
		{"gru.weight_hh_l0", []int{3, 1}, []float32{0, 0, 0}},
		{"gru.bias_ih_l0", []int{3}, []float32{0, 0, 0}},
		{"gru.bias_hh_l0", []int{3}, []float32{0, 0, 0}},
		{"fc.weight", []int{6, 1}, []float32{0, 0, 0, 0, 0, 0}},
		{"fc.bias", []int{6}, []float32{0, 0, 0, 0, 5, 1}},
	}
	if err := os.WriteFile(filepath.Join(dir, "model.safetensors"), encodeFixtureWeights(t, weights), 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}
	return dir
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type fixtureTensor struct {
	name  string
	shape []int
	data  []float32
}

func encodeFixtureWeights(t *testing.T, tensors []fixtureTensor) []byte {
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

// newServerForDir starts a test server over the artefacts in dir with
// default admission settings. Load errors are fatal.
func newServerForDir(t *testing.T, artefactsDir string) (*httptest.Server, *generator.Manager) {
	t.Helper()
	return newServerForDirWithConfig(t, artefactsDir, generator.ManagerConfig{Seed: 1})
}

// newServerForDirWithConfig allows configuring queue/backpressure
// behavior for tests. A failed load leaves the server running degraded,
// matching how the daemon starts.
func newServerForDirWithConfig(t *testing.T, artefactsDir string, cfg generator.ManagerConfig) (*httptest.Server, *generator.Manager) {
	t.Helper()
	mgr := generator.NewWithConfig(cfg)
	t.Cleanup(func() { _ = mgr.Close() })
	if err := mgr.Load(artefactsDir); err != nil {
		t.Logf("load %s: %v (serving degraded)", artefactsDir, err)
	}
	mux := httpapi.NewMux(mgr, starred.New(), "")
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
