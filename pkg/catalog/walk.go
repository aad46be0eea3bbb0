package catalog

// Visitor receives traversal events from Walk. The path slice is only valid
// for the duration of the call; visitors must copy it if they keep it.
type Visitor interface {
	// Leaf is called for every non-empty scalar. key is the last path element.
	Leaf(path []string, key string, value Scalar, depth int)
	// Enter is called before descending into a mapping value.
	Enter(path []string, key string, depth int)
	// Empty is called for null values and empty strings, which are skipped.
	Empty(path []string, key string)
}

// Walk traverses n depth-first in pre-order.
//
// Sequence elements share their parent's path: no index segment is added,
// so sibling leaves under a list collapse onto the same logical path.
func Walk(n Node, v Visitor) {
	w := &walker{v: v}
	switch t := n.(type) {
	case *Mapping:
		w.children(t, 0)
	default:
		w.element("", t, 0)
	}
}

type walker struct {
	v    Visitor
	path []string
}

func (w *walker) children(m *Mapping, depth int) {
	for _, k := range m.keys {
		w.visit(k, m.values[k], depth)
	}
}

func (w *walker) visit(key string, n Node, depth int) {
	w.path = append(w.path, key)
	defer func() { w.path = w.path[:len(w.path)-1] }()

	switch t := n.(type) {
	case nil:
		w.v.Empty(w.path, key)
	case Scalar:
		if t.IsEmpty() {
			w.v.Empty(w.path, key)
			return
		}
		w.v.Leaf(w.path, key, t, depth)
	case Sequence:
		for _, el := range t {
			w.element(key, el, depth+1)
		}
	case *Mapping:
		if t == nil {
			w.v.Empty(w.path, key)
			return
		}
		w.v.Enter(w.path, key, depth)
		w.children(t, depth+1)
	}
}

// element handles one member of a sequence; the owning key is already on
// the path stack.
func (w *walker) element(key string, n Node, depth int) {
	switch t := n.(type) {
	case nil:
		w.v.Empty(w.path, key)
	case Scalar:
		if t.IsEmpty() {
			w.v.Empty(w.path, key)
			return
		}
		w.v.Leaf(w.path, key, t, depth)
	case Sequence:
		for _, el := range t {
			w.element(key, el, depth+1)
		}
	case *Mapping:
		if t == nil {
			w.v.Empty(w.path, key)
			return
		}
		w.children(t, depth)
	}
}
