package manifest

import (
	"strings"

	"github.com/glorpus-work/drmget/internal/logger"
	"github.com/glorpus-work/drmget/pkg/catalog"
	"github.com/glorpus-work/drmget/pkg/errors"
	"github.com/hashicorp/go-version"
)

// Builder applies the rule table to catalog and mirror-link data.
type Builder struct{}

// NewBuilder returns a Builder over the default rule table.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build produces the category → label → value tree for the given tags.
// Categories shared by several tags are merged. cat and links may be nil
// when no selected rule reads from them.
func (b *Builder) Build(tags []string, cat, links catalog.Node) (*catalog.Mapping, error) {
	sel, err := Select(tags)
	if err != nil {
		return nil, err
	}

	out := catalog.NewMapping()
	for _, rule := range sel.Rules() {
		logger.Info("component requested", logger.Fields{"component": rule.Tag})

		src := cat
		if rule.Source == SourceMirrorLinks {
			src = links
		}

		if rule.IsList() {
			err = b.applyList(out.Child(rule.Category), rule, src)
		} else {
			err = b.applyField(out.Child(rule.Category), rule, src)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *Builder) applyField(dst *catalog.Mapping, rule Rule, src catalog.Node) error {
	value, ok := catalog.LookupString(src, rule.Path...)
	if !ok {
		return errors.ErrCatalogFieldWithPath(rule.Source.String() + ":" + catalog.JoinPath(rule.Path))
	}
	dst.Set(rule.Label, catalog.String(value))
	return nil
}

func (b *Builder) applyList(dst *catalog.Mapping, rule Rule, src catalog.Node) error {
	base, ok := catalog.LookupString(src, rule.BaseLocation...)
	if !ok {
		return errors.ErrCatalogFieldWithPath(rule.Source.String() + ":" + catalog.JoinPath(rule.BaseLocation))
	}
	list, ok := catalog.Lookup(src, rule.List...)
	if !ok {
		return errors.ErrCatalogFieldWithPath(rule.Source.String() + ":" + catalog.JoinPath(rule.List))
	}

	var entries catalog.Sequence
	switch t := list.(type) {
	case catalog.Sequence:
		entries = t
	case *catalog.Mapping:
		entries = catalog.Sequence{t}
	}

	versions := make(map[string]*version.Version)
	for _, el := range entries {
		entry, ok := el.(*catalog.Mapping)
		if !ok {
			continue
		}
		label, ok := catalog.LookupString(entry, rule.LabelField)
		if !ok {
			logger.Warn("list entry has no label and was skipped", logger.Fields{
				"component": rule.Tag,
				"field":     rule.LabelField,
			})
			continue
		}

		v := parseVersion(entry, rule.VersionField)
		if prev, seen := versions[label]; seen && prev != nil && v != nil && v.LessThan(prev) {
			logger.Debug("older duplicate ignored", logger.Fields{"label": label, "version": v.String(), "kept": prev.String()})
			continue
		}
		versions[label] = v

		resolved := catalog.NewMapping()
		for _, field := range entry.Keys() {
			if !contains(rule.Locations, field) {
				continue
			}
			loc, ok := catalog.LookupString(entry, field)
			if !ok {
				logger.Debug("location not set", logger.Fields{"label": label, "field": field})
				continue
			}
			resolved.Set(field, catalog.String(resolveLocation(base, loc)))
		}
		dst.Set(label, resolved)
	}
	return nil
}

// resolveLocation joins a catalog-relative location onto its base host.
// Catalog locations use backslashes.
func resolveLocation(base, loc string) string {
	base = strings.TrimRight(strings.ReplaceAll(base, `\`, "/"), "/")
	loc = strings.TrimLeft(strings.ReplaceAll(loc, `\`, "/"), "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + "/" + loc
}

func parseVersion(entry *catalog.Mapping, field string) *version.Version {
	if field == "" {
		return nil
	}
	raw, ok := catalog.LookupString(entry, field)
	if !ok {
		return nil
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
