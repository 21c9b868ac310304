// Package catalog is the static registry of known Whisper models. It is
// the authoritative answer to "is this a valid model identifier"; binding
// and download paths must reject identifiers the catalog does not know
// before touching storage or loaders.
package catalog

import "errors"

// ErrUnknownModel is returned when an identifier is not in the catalog.
var ErrUnknownModel = errors.New("unknown model identifier")

// Descriptor describes a known model. Descriptors are immutable and
// defined at compile time; sizes follow the published faster-whisper
// model card.
type Descriptor struct {
	Name          string `json:"name"`
	Size          string `json:"size"`
	Description   string `json:"description"`
	Parameters    string `json:"parameters"`
	RelativeSpeed string `json:"relative_speed"`
	VRAMRequired  string `json:"vram_required"`
}

// descriptors is ordered smallest to largest. List preserves this order.
var descriptors = []Descriptor{
	{
		Name:          "tiny",
		Size:          "~39 MB",
		Description:   "Fastest, least accurate",
		Parameters:    "39M",
		RelativeSpeed: "~10x",
		VRAMRequired:  "~1 GB",
	},
	{
		Name:          "base",
		Size:          "~74 MB",
		Description:   "Good balance of speed and accuracy",
		Parameters:    "74M",
		RelativeSpeed: "~7x",
		VRAMRequired:  "~1 GB",
	},
	{
		Name:          "small",
		Size:          "~244 MB",
		Description:   "Better accuracy, slower",
		Parameters:    "244M",
		RelativeSpeed: "~4x",
		VRAMRequired:  "~2 GB",
	},
	{
		Name:          "medium",
		Size:          "~769 MB",
		Description:   "High accuracy, moderate speed",
		Parameters:    "769M",
		RelativeSpeed: "~2x",
		VRAMRequired:  "~5 GB",
	},
	{
		Name:          "large",
		Size:          "~1550 MB",
		Description:   "Highest accuracy, slowest",
		Parameters:    "1550M",
		RelativeSpeed: "~1x",
		VRAMRequired:  "~10 GB",
	},
	{
		Name:          "large-v2",
		Size:          "~1550 MB",
		Description:   "Improved large model",
		Parameters:    "1550M",
		RelativeSpeed: "~1x",
		VRAMRequired:  "~10 GB",
	},
	{
		Name:          "large-v3",
		Size:          "~1550 MB",
		Description:   "Latest large model with better performance",
		Parameters:    "1550M",
		RelativeSpeed: "~1x",
		VRAMRequired:  "~10 GB",
	},
}

// recommendations maps use-case tags to model identifiers. Unknown tags
// fall back to the balanced choice.
var recommendations = map[string]string{
	"speed":       "tiny",
	"balanced":    "base",
	"accuracy":    "large-v3",
	"development": "base",
	"production":  "small",
}

// balancedModel is the fallback recommendation.
const balancedModel = "base"

// List returns all known descriptors in stable order. The returned slice
// is a copy; callers may mutate it freely.
func List() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Names returns the identifiers of all known models in stable order.
func Names() []string {
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	return names
}

// IsKnown reports whether name is a known model identifier. Matching is
// exact and case-sensitive.
func IsKnown(name string) bool {
	for _, d := range descriptors {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Describe returns the descriptor for name. The boolean not-found signal
// is canonical: unknown identifiers never yield a synthetic descriptor.
func Describe(name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Recommend maps a use-case tag to a model identifier. Pure, no I/O.
func Recommend(useCase string) string {
	if name, ok := recommendations[useCase]; ok {
		return name
	}
	return balancedModel
}
