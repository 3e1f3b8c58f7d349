package artefact

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Tensor is one named weight array from the safetensors file, decoded
// to float32.
type Tensor struct {
	Shape []int
	Data  []float32
}

// Numel returns the element count implied by the shape.
func (t Tensor) Numel() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Weights is the set of tensors loaded from model.safetensors.
type Weights struct {
	tensors map[string]Tensor
}

// Get returns the tensor stored under name.
func (w *Weights) Get(name string) (Tensor, bool) {
	t, ok := w.tensors[name]
	return t, ok
}

// Names returns the tensor names present in the file.
func (w *Weights) Names() []string {
	out := make([]string, 0, len(w.tensors))
	for name := range w.tensors {
		out = append(out, name)
	}
	return out
}

// Len returns the number of tensors.
func (w *Weights) Len() int { return len(w.tensors) }

type tensorHeader struct {
	Dtype       string    `json:"dtype"`
	Shape       []int     `json:"shape"`
	DataOffsets [2]uint64 `json:"data_offsets"`
}

// LoadWeights reads and parses a safetensors weights file.
func LoadWeights(path string) (*Weights, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errMissingFile("model weights", path)
		}
		return nil, errInvalid("failed to load model weights", err)
	}
	w, err := ParseSafetensors(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// ParseSafetensors decodes the safetensors container: an 8-byte
// little-endian header length, a JSON header mapping tensor names to
// dtype/shape/data_offsets, then the raw tensor data. Only F32 tensors
// are accepted.
func ParseSafetensors(b []byte) (*Weights, error) {
	if len(b) < 8 {
		return nil, errInvalid("weights file too short for safetensors header", nil)
	}
	headerLen := binary.LittleEndian.Uint64(b[:8])
	if headerLen > uint64(len(b)-8) {
		return nil, errInvalid(fmt.Sprintf("safetensors header length %d exceeds file size", headerLen), nil)
	}
	var header map[string]json.RawMessage
	if err := json.Unmarshal(b[8:8+headerLen], &header); err != nil {
		return nil, errInvalid("invalid safetensors JSON header", err)
	}
	data := b[8+headerLen:]

	tensors := make(map[string]Tensor, len(header))
	for name, raw := range header {
		if name == "__metadata__" {
			continue
		}
		var th tensorHeader
		if err := json.Unmarshal(raw, &th); err != nil {
			return nil, errInvalid(fmt.Sprintf("invalid header entry for tensor %q", name), err)
		}
		if th.Dtype != "F32" {
			return nil, errInvalid(fmt.Sprintf("tensor %q has unsupported dtype %s (want F32)", name, th.Dtype), nil)
		}
		numel := 1
		for _, d := range th.Shape {
			if d <= 0 {
				return nil, errInvalid(fmt.Sprintf("tensor %q has non-positive dimension %d", name, d), nil)
			}
			numel *= d
		}
		begin, end := th.DataOffsets[0], th.DataOffsets[1]
		if begin > end || end > uint64(len(data)) {
			return nil, errInvalid(fmt.Sprintf("tensor %q data offsets [%d,%d) out of range", name, begin, end), nil)
		}
		if end-begin != uint64(4*numel) {
			return nil, errInvalid(fmt.Sprintf("tensor %q has %d bytes of data, shape needs %d", name, end-begin, 4*numel), nil)
		}
		floats := make([]float32, numel)
		for i := range floats {
			bits := binary.LittleEndian.Uint32(data[begin+uint64(4*i):])
			floats[i] = math.Float32frombits(bits)
		}
		tensors[name] = Tensor{Shape: th.Shape, Data: floats}
	}
	if len(tensors) == 0 {
		return nil, errInvalid("safetensors file contains no tensors", nil)
	}
	return &Weights{tensors: tensors}, nil
}
