package catalog

import (
	"github.com/glorpus-work/drmget/internal/logger"
)

// Flat is an ordered path → value map produced by Flatten. Setting a path
// that already exists replaces the value and keeps the original position.
type Flat struct {
	keys   []string
	values map[string]string
}

// NewFlat returns an empty Flat.
func NewFlat() *Flat {
	return &Flat{values: make(map[string]string)}
}

// Set records value under path.
func (f *Flat) Set(path, value string) {
	if _, ok := f.values[path]; !ok {
		f.keys = append(f.keys, path)
	}
	f.values[path] = value
}

// Get returns the value recorded under path.
func (f *Flat) Get(path string) (string, bool) {
	v, ok := f.values[path]
	return v, ok
}

// Keys returns the recorded paths in first-insertion order.
func (f *Flat) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of entries.
func (f *Flat) Len() int { return len(f.keys) }

// Map returns a plain copy of the entries.
func (f *Flat) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Flatten records every leaf of n under its dotted path. When into is
// non-nil the entries are merged into it and it is returned, which lets
// callers accumulate several subtrees into one worklist.
func Flatten(n Node, into *Flat) *Flat {
	if into == nil {
		into = NewFlat()
	}
	Walk(n, flattener{out: into})
	return into
}

type flattener struct {
	out *Flat
}

func (f flattener) Leaf(path []string, _ string, value Scalar, _ int) {
	p := JoinPath(path)
	logger.Debug("flattened entry", logger.Fields{"path": p, "value": value.Value})
	f.out.Set(p, value.Value)
}

func (flattener) Enter([]string, string, int) {}

func (flattener) Empty(path []string, key string) {
	warnEmpty(path, key)
}

func warnEmpty(path []string, key string) {
	logger.Warn("catalog entry has no value and was skipped", logger.Fields{
		"key":  key,
		"path": JoinPath(path),
	})
}
