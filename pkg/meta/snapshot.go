package meta

import (
	"encoding/json"
	"fmt"
)

// Recognized snapshot keys. All optional; metrics must tolerate any subset.
const (
	KeyAuthor       = "author"
	KeyName         = "name"
	KeyDescription  = "description"
	KeyDownloads    = "downloads"
	KeyLikes        = "likes"
	KeyStars        = "stars"
	KeyLicense      = "license"
	KeyLastModified = "lastModified"
	KeyReadme       = "readme"
	KeyTags         = "tags"
	KeyDatasets     = "datasets"
	KeySiblings     = "siblings"
	KeyContributors = "contributors"
	KeySize         = "size"
	KeyUsedStorage  = "usedStorage"
	KeySafetensors  = "safetensors"
)

// FileEntry is a single record from the artifact file listing.
type FileEntry struct {
	Name string
	Size int64
}

// Snapshot is the read-only fact bag about an artifact, built once before
// scoring and shared across all concurrently running metrics. Accessors are
// defensive: absent or mistyped keys yield zero values, never panics.
type Snapshot struct {
	data map[string]any
}

// NewSnapshot wraps the given map. The caller must not mutate the map after
// handing it over.
func NewSnapshot(data map[string]any) *Snapshot {
	if data == nil {
		data = map[string]any{}
	}
	return &Snapshot{data: data}
}

// ParseSnapshot builds a Snapshot from raw JSON.
func ParseSnapshot(b []byte) (*Snapshot, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("error parsing snapshot: %w", err)
	}
	return NewSnapshot(m), nil
}

func (s *Snapshot) Has(key string) bool {
	_, ok := s.data[key]
	return ok
}

func (s *Snapshot) Raw(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Str returns the string value for key, or "" when absent or not a string.
func (s *Snapshot) Str(key string) string {
	if v, ok := s.data[key].(string); ok {
		return v
	}
	return ""
}

// Int64 returns the numeric value for key. JSON decoding produces float64,
// so all common numeric shapes are coerced.
func (s *Snapshot) Int64(key string) (int64, bool) {
	switch v := s.data[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Float returns the float value for key with the same coercions as Int64.
func (s *Snapshot) Float(key string) (float64, bool) {
	switch v := s.data[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// StrList returns the string entries for key. Non-string entries in a mixed
// list are skipped.
func (s *Snapshot) StrList(key string) []string {
	raw, ok := s.data[key].([]any)
	if !ok {
		if typed, ok := s.data[key].([]string); ok {
			return typed
		}
		return nil
	}
	list := make([]string, 0, len(raw))
	for _, item := range raw {
		if str, ok := item.(string); ok {
			list = append(list, str)
		}
	}
	return list
}

// Files returns the file listing for key. Entries are maps with an
// "rfilename" (or "filename") and an optional "size" in bytes.
func (s *Snapshot) Files(key string) []FileEntry {
	raw, ok := s.data[key].([]any)
	if !ok {
		if typed, ok := s.data[key].([]FileEntry); ok {
			return typed
		}
		return nil
	}

	files := make([]FileEntry, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		e := FileEntry{}
		if name, ok := m["rfilename"].(string); ok {
			e.Name = name
		} else if name, ok := m["filename"].(string); ok {
			e.Name = name
		}
		if e.Name == "" {
			continue
		}
		if size, ok := m["size"].(float64); ok {
			e.Size = int64(size)
		} else if size, ok := m["size"].(int64); ok {
			e.Size = size
		} else if size, ok := m["size"].(int); ok {
			e.Size = int64(size)
		}
		files = append(files, e)
	}
	return files
}
