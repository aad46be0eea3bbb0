// Package catalog models vendor catalog metadata as a generic tree and
// provides the traversal used to display it or flatten it into a worklist.
//
// A Node is exactly one of Scalar, Sequence or *Mapping; a nil Node is the
// empty value. Trees are built once per retrieval and never mutated after.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Node is a catalog value. The set of implementations is closed.
type Node interface {
	isNode()
}

// Kind distinguishes the scalar flavours found in catalog data.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// Scalar is a leaf. Numbers and booleans keep their textual form so that
// rendering and flattening never reformat vendor data.
type Scalar struct {
	Value string
	Kind  Kind
}

// Sequence is an ordered list of nodes.
type Sequence []Node

// Mapping is a string-keyed map that remembers insertion order.
type Mapping struct {
	keys   []string
	values map[string]Node
}

func (Scalar) isNode()   {}
func (Sequence) isNode() {}
func (*Mapping) isNode() {}

// String returns a scalar node.
func String(s string) Scalar { return Scalar{Value: s, Kind: KindString} }

// IsEmpty reports whether the scalar carries no value.
func (s Scalar) IsEmpty() bool { return s.Kind == KindString && s.Value == "" }

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Node)}
}

// Set stores value under key. An existing key keeps its position.
func (m *Mapping) Set(key string, value Node) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the node stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Child returns the mapping under key, creating it when absent. It is the
// building block for category → label grouping.
func (m *Mapping) Child(key string) *Mapping {
	if existing, ok := m.values[key].(*Mapping); ok && existing != nil {
		return existing
	}
	child := NewMapping()
	m.Set(key, child)
	return child
}

// Merge copies every entry of other into m. Nested mappings present on
// both sides are merged recursively rather than replaced.
func (m *Mapping) Merge(other *Mapping) {
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		if src, ok := v.(*Mapping); ok {
			if dst, ok := m.values[k].(*Mapping); ok && dst != nil {
				dst.Merge(src)
				continue
			}
		}
		m.Set(k, v)
	}
}

// Lookup follows a path of mapping keys from n.
func Lookup(n Node, path ...string) (Node, bool) {
	cur := n
	for _, key := range path {
		m, ok := cur.(*Mapping)
		if !ok {
			return nil, false
		}
		if cur, ok = m.Get(key); !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString follows path and returns the scalar text found there.
func LookupString(n Node, path ...string) (string, bool) {
	v, ok := Lookup(n, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(Scalar)
	if !ok || s.IsEmpty() {
		return "", false
	}
	return s.Value, true
}

// FromValue converts plain Go values (as produced by decoders or written in
// tests) into a Node. Map keys are sorted because Go maps carry no order.
func FromValue(v interface{}) Node {
	switch t := v.(type) {
	case nil:
		return nil
	case Node:
		return t
	case string:
		return String(t)
	case bool:
		return Scalar{Value: fmt.Sprint(t), Kind: KindBool}
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return Scalar{Value: fmt.Sprint(t), Kind: KindNumber}
	case []interface{}:
		seq := make(Sequence, 0, len(t))
		for _, el := range t {
			seq = append(seq, FromValue(el))
		}
		return seq
	case []string:
		seq := make(Sequence, 0, len(t))
		for _, el := range t {
			seq = append(seq, String(el))
		}
		return seq
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, FromValue(t[k]))
		}
		return m
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, String(t[k]))
		}
		return m
	default:
		return String(fmt.Sprint(t))
	}
}

// ToValue is the inverse of FromValue, losing key order.
func ToValue(n Node) interface{} {
	switch t := n.(type) {
	case nil:
		return nil
	case Scalar:
		return t.Value
	case Sequence:
		out := make([]interface{}, 0, len(t))
		for _, el := range t {
			out = append(out, ToValue(el))
		}
		return out
	case *Mapping:
		if t == nil {
			return nil
		}
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.keys {
			out[k] = ToValue(t.values[k])
		}
		return out
	}
	return nil
}

// JoinPath renders a key stack the way flattened entries are keyed.
func JoinPath(path []string) string {
	return strings.Join(path, ".")
}
