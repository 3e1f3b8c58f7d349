package artefact

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Special token contents the generator depends on. BOS and EOS are
// mandatory; PAD and UNK are optional in the vocabulary.
const (
	TokenBOS = "[BOS]"
	TokenEOS = "[EOS]"
	TokenPAD = "[PAD]"
	TokenUNK = "[UNK]"
)

// Tokenizer is the character-level vocabulary loaded from tokenizer.json.
// The file is the Hugging Face tokenizer format; only added_tokens and
// model.vocab are read, everything else is ignored.
type Tokenizer struct {
	tokens  []string
	ids     map[string]int
	special map[int]bool
	bos     int
	eos     int
	unk     int // -1 when the vocabulary has no [UNK]
}

type tokenizerFile struct {
	AddedTokens []struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
	Model struct {
		Vocab map[string]int `json:"vocab"`
	} `json:"model"`
}

// LoadTokenizer reads and parses an artefact tokenizer file.
func LoadTokenizer(path string) (*Tokenizer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errMissingFile("tokenizer file", path)
		}
		return nil, errInvalid("failed to load tokenizer", err)
	}
	tok, err := ParseTokenizer(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tok, nil
}

// ParseTokenizer builds a Tokenizer from raw tokenizer.json bytes.
func ParseTokenizer(b []byte) (*Tokenizer, error) {
	var f tokenizerFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, errInvalid("failed to load tokenizer", err)
	}
	if len(f.Model.Vocab) == 0 {
		return nil, errInvalid("tokenizer has no model.vocab", nil)
	}

	ids := make(map[string]int, len(f.Model.Vocab)+len(f.AddedTokens))
	maxID := -1
	for tok, id := range f.Model.Vocab {
		if id < 0 {
			return nil, errInvalid(fmt.Sprintf("tokenizer vocab id %d for %q is negative", id, tok), nil)
		}
		ids[tok] = id
		if id > maxID {
			maxID = id
		}
	}
	special := make(map[int]bool)
	for _, at := range f.AddedTokens {
		if at.ID < 0 {
			return nil, errInvalid(fmt.Sprintf("added token id %d for %q is negative", at.ID, at.Content), nil)
		}
		if existing, ok := ids[at.Content]; ok && existing != at.ID {
			return nil, errInvalid(fmt.Sprintf("added token %q id %d conflicts with vocab id %d", at.Content, at.ID, existing), nil)
		}
		ids[at.Content] = at.ID
		if at.Special {
			special[at.ID] = true
		}
		if at.ID > maxID {
			maxID = at.ID
		}
	}

	tokens := make([]string, maxID+1)
	seen := make([]bool, maxID+1)
	for tok, id := range ids {
		if seen[id] {
			return nil, errInvalid(fmt.Sprintf("tokenizer id %d assigned to more than one token", id), nil)
		}
		seen[id] = true
		tokens[id] = tok
	}
	for id, ok := range seen {
		if !ok {
			return nil, errInvalid(fmt.Sprintf("tokenizer vocab is not contiguous: id %d is unassigned", id), nil)
		}
	}

	t := &Tokenizer{tokens: tokens, ids: ids, special: special, bos: -1, eos: -1, unk: -1}
	if id, ok := ids[TokenBOS]; ok {
		t.bos = id
	}
	if id, ok := ids[TokenEOS]; ok {
		t.eos = id
	}
	if id, ok := ids[TokenUNK]; ok {
		t.unk = id
	}
	if t.bos < 0 || t.eos < 0 {
		return nil, errInvalid("tokenizer is missing the [BOS] or [EOS] token", nil)
	}
	return t, nil
}

// VocabSize returns the number of tokens, specials included.
func (t *Tokenizer) VocabSize() int { return len(t.tokens) }

// BOS returns the begin-of-word token id.
func (t *Tokenizer) BOS() int { return t.bos }

// EOS returns the end-of-word token id.
func (t *Tokenizer) EOS() int { return t.eos }

// IsSpecial reports whether id is a special token.
func (t *Tokenizer) IsSpecial(id int) bool { return t.special[id] }

// Token returns the string for id.
func (t *Tokenizer) Token(id int) (string, bool) {
	if id < 0 || id >= len(t.tokens) {
		return "", false
	}
	return t.tokens[id], true
}

// Decode concatenates the tokens for ids, skipping special tokens and
// ids outside the vocabulary.
func (t *Tokenizer) Decode(ids []int) string {
	var sb strings.Builder
	for _, id := range ids {
		if id < 0 || id >= len(t.tokens) || t.special[id] {
			continue
		}
		sb.WriteString(t.tokens[id])
	}
	return sb.String()
}

// Encode maps each character of s to its token id. Characters outside
// the vocabulary map to [UNK] when present and are dropped otherwise.
func (t *Tokenizer) Encode(s string) []int {
	out := make([]int, 0, len(s))
	for _, r := range s {
		if id, ok := t.ids[string(r)]; ok {
			out = append(out, id)
			continue
		}
		if t.unk >= 0 {
			out = append(out, t.unk)
		}
	}
	return out
}
