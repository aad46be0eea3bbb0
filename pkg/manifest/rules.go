// Package manifest turns a component selection plus the parsed vendor
// catalog and mirror-link table into the category → label → URL tree that
// is displayed or downloaded.
package manifest

// Source names the structure a rule reads from.
type Source int

const (
	// SourceCatalog is the parsed DRMVersion catalog.
	SourceCatalog Source = iota
	// SourceMirrorLinks is the table scraped from the SUU landing page.
	SourceMirrorLinks
)

func (s Source) String() string {
	switch s {
	case SourceCatalog:
		return "catalog"
	case SourceMirrorLinks:
		return "mirror links"
	default:
		return "unknown"
	}
}

// DisplayOnly is the pseudo-tag that selects display mode. Alone it stands
// for every component.
const DisplayOnly = "displayOnly"

// Rule is the extraction recipe for one component tag. A rule either reads
// a single field (Path + Label) or iterates a list (List + LabelField +
// Locations), resolving each location against the BaseLocation field.
type Rule struct {
	Tag         string
	Description string
	Source      Source
	Category    string

	Path  []string
	Label string

	List         []string
	LabelField   string
	VersionField string
	Locations    []string
	BaseLocation []string
}

// IsList reports whether the rule iterates a list of entries.
func (r Rule) IsList() bool { return len(r.List) > 0 }

// Rules is the recognised component vocabulary, in canonical order.
var Rules = []Rule{
	{
		Tag:         "drminstaller-linux",
		Description: "Display or download the current DRM Installer for Linux.",
		Source:      SourceCatalog,
		Category:    "DRM Installer",
		Path:        []string{"AppUpdateInfo", "LinuxInstaller"},
		Label:       "Linux 64 bit",
	},
	{
		Tag:         "drminstaller-windows",
		Description: "Display or download the current DRM Installer for Windows.",
		Source:      SourceCatalog,
		Category:    "DRM Installer",
		Path:        []string{"AppUpdateInfo", "WindowsInstaller"},
		Label:       "Windows 64 bit",
	},
	{
		Tag:          "plugins",
		Description:  "Display or download DRM plugins only.",
		Source:       SourceCatalog,
		Category:     "Plugin",
		List:         []string{"RMPlugins", "Plugin"},
		LabelField:   "Description",
		VersionField: "Version",
		Locations:    []string{"FileLocation", "SignFileLocation"},
		BaseLocation: []string{"RMPlugins", "_baselocation"},
	},
	{
		Tag:         "suu-linux",
		Description: "Display or download the SUU for Linux inband firmware updates.",
		Source:      SourceMirrorLinks,
		Category:    "SUU",
		Path:        []string{"Linux 64 bit", "Download Link"},
		Label:       "Linux 64 bit",
	},
	{
		Tag:         "suu-windows",
		Description: "Display or download the SUU for Windows inband and out-of-band firmware updates.",
		Source:      SourceMirrorLinks,
		Category:    "SUU",
		Path:        []string{"Windows 64 bit", "Download Link"},
		Label:       "Windows 64 bit",
	},
}

// RuleFor returns the rule registered for tag.
func RuleFor(tag string) (Rule, bool) {
	for _, r := range Rules {
		if r.Tag == tag {
			return r, true
		}
	}
	return Rule{}, false
}

// Tags returns every component tag, in canonical order.
func Tags() []string {
	out := make([]string, 0, len(Rules))
	for _, r := range Rules {
		out = append(out, r.Tag)
	}
	return out
}
