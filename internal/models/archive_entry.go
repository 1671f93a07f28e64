package models

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"sort"
	"strconv"
)

// ArchivePath is one captured subtree, keyed by its original absolute path.
type ArchivePath struct {
	Path  string `json:"path"`
	Value Node   `json:"value"`
}

// ArchivePaths is the ordered list of captured subtrees. It decodes from the
// current sequence form as well as the legacy path -> value mapping; the
// mapping is normalised in lexicographic path order.
type ArchivePaths []ArchivePath

func (p *ArchivePaths) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var seq []ArchivePath
		if err := json.Unmarshal(trimmed, &seq); err != nil {
			return err
		}
		*p = seq
		return nil
	case '{':
		var mapping map[string]Node
		if err := json.Unmarshal(trimmed, &mapping); err != nil {
			return err
		}
		if seq, ok := indexedSequence(mapping); ok {
			*p = seq
			return nil
		}
		keys := make([]string, 0, len(mapping))
		for k := range mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		seq := make(ArchivePaths, 0, len(keys))
		for _, k := range keys {
			seq = append(seq, ArchivePath{Path: k, Value: mapping[k]})
		}
		*p = seq
		return nil
	}
	return fmt.Errorf("archive paths: unexpected JSON %q", trimmed[:1])
}

// indexedSequence recognises a sequence that a store has flattened into an
// object keyed "0", "1", ... with {path, value} members.
func indexedSequence(mapping map[string]Node) (ArchivePaths, bool) {
	if len(mapping) == 0 {
		return nil, false
	}
	seq := make(ArchivePaths, len(mapping))
	for k, v := range mapping {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(mapping) || v.Kind() != KindObject {
			return nil, false
		}
		path, ok := v.Member("path").AsString()
		if !ok || v.Len() > 2 {
			return nil, false
		}
		seq[i] = ArchivePath{Path: path, Value: v.Member("value")}
	}
	return seq, true
}

// PathsFromMap builds ArchivePaths from an unordered mapping, sorted by path.
func PathsFromMap(m map[string]Node) ArchivePaths {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(ArchivePaths, 0, len(keys))
	for _, k := range keys {
		out = append(out, ArchivePath{Path: k, Value: m[k]})
	}
	return out
}

// ArchiveEntry is the snapshot stored under archives/{entity}/{id}.
type ArchiveEntry struct {
	Entity     string          `json:"entity"`
	ID         string          `json:"id"`
	ArchivedAt int64           `json:"archivedAt"`
	ArchivedBy *string         `json:"archivedBy"`
	Paths      ArchivePaths    `json:"paths"`
	Preview    map[string]Node `json:"preview,omitempty"`
}

// PreviewString reads one named string field of the preview.
func (e *ArchiveEntry) PreviewString(field string) (string, bool) {
	if e == nil || e.Preview == nil {
		return "", false
	}
	return e.Preview[field].AsString()
}

func (e *ArchiveEntry) ToNode() (Node, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Undefined, err
	}
	return ParseNode(data)
}

// EntryFromNode decodes a stored entry, normalising legacy paths.
func EntryFromNode(n Node) (*ArchiveEntry, error) {
	if n.Kind() != KindObject {
		return nil, fmt.Errorf("archive entry: expected object, got %s", n.Kind())
	}
	data, err := n.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var entry ArchiveEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("archive entry: %w", err)
	}
	return &entry, nil
}

// SanitizePreview drops undefined members. Null members are kept. An empty
// result is returned as nil so the field is omitted.
func SanitizePreview(preview map[string]Node) map[string]Node {
	out := make(map[string]Node, len(preview))
	for k, v := range preview {
		if v.IsDefined() {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
