package manifest

import (
	"github.com/glorpus-work/drmget/pkg/errors"
)

// Selection is a validated component choice.
type Selection struct {
	// Tags are the component tags to build, displayOnly removed.
	Tags []string
	// DisplayOnly is set when displayOnly was part of the request.
	DisplayOnly bool
}

// Select validates tags and expands them. An empty request, or displayOnly
// on its own, selects every component. Duplicates are dropped.
func Select(tags []string) (Selection, error) {
	var sel Selection
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t == DisplayOnly {
			sel.DisplayOnly = true
			continue
		}
		if _, ok := RuleFor(t); !ok {
			return Selection{}, errors.ErrUnknownComponentWithTag(t)
		}
		if !seen[t] {
			seen[t] = true
			sel.Tags = append(sel.Tags, t)
		}
	}
	if len(sel.Tags) == 0 {
		sel.Tags = Tags()
	}
	return sel, nil
}

// Rules returns the rules for the selected tags, in selection order.
func (s Selection) Rules() []Rule {
	out := make([]Rule, 0, len(s.Tags))
	for _, t := range s.Tags {
		if r, ok := RuleFor(t); ok {
			out = append(out, r)
		}
	}
	return out
}

// Needs reports whether any selected rule reads from src.
func (s Selection) Needs(src Source) bool {
	for _, r := range s.Rules() {
		if r.Source == src {
			return true
		}
	}
	return false
}

// NeedsCatalog reports whether building tags requires the vendor catalog.
// Unknown tags never need anything.
func NeedsCatalog(tags []string) bool {
	sel, err := Select(tags)
	return err == nil && sel.Needs(SourceCatalog)
}

// NeedsMirrorLinks reports whether building tags requires the scraped
// mirror-link table.
func NeedsMirrorLinks(tags []string) bool {
	sel, err := Select(tags)
	return err == nil && sel.Needs(SourceMirrorLinks)
}
