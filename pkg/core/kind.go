package core

import "strings"

// Kind is a widget kind known to the compiler.
// Kinds outside this set are dispatched through the converter registry.
type Kind int

// Known widget kinds.
const (
	KindUnknown Kind = iota
	KindView
	KindText
	KindButton
	KindImage
	KindTextField
	KindToggle
	KindSlider
	KindScroll
	KindList
	KindSpacer
	KindDivider
	KindProgress
)

var kindNames = map[Kind]string{
	KindView:      "View",
	KindText:      "Text",
	KindButton:    "Button",
	KindImage:     "Image",
	KindTextField: "TextField",
	KindToggle:    "Toggle",
	KindSlider:    "Slider",
	KindScroll:    "Scroll",
	KindList:      "List",
	KindSpacer:    "Spacer",
	KindDivider:   "Divider",
	KindProgress:  "Progress",
}

// Aliases accepted in documents. Matching is case-insensitive.
var kindAliases = map[string]Kind{
	"view":       KindView,
	"container":  KindView,
	"safeview":   KindView,
	"text":       KindText,
	"label":      KindText,
	"button":     KindButton,
	"image":      KindImage,
	"textfield":  KindTextField,
	"edittext":   KindTextField,
	"textview":   KindTextField,
	"toggle":     KindToggle,
	"switch":     KindToggle,
	"check":      KindToggle,
	"slider":     KindSlider,
	"scroll":     KindScroll,
	"scrollview": KindScroll,
	"list":       KindList,
	"table":      KindList,
	"collection": KindList,
	"spacer":     KindSpacer,
	"blank":      KindSpacer,
	"divider":    KindDivider,
	"progress":   KindProgress,
	"indicator":  KindProgress,
}

// ParseKind maps a document kind tag to a known Kind.
// Unrecognized tags return KindUnknown.
func ParseKind(tag string) Kind {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return k
	}
	return KindUnknown
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsContainer reports whether nodes of this kind lay out children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindView, KindScroll, KindList:
		return true
	}
	return false
}

// KnownKinds returns the canonical names of all known kinds.
func KnownKinds() []string {
	names := make([]string, 0, len(kindNames))
	for k := KindView; k <= KindProgress; k++ {
		names = append(names, kindNames[k])
	}
	return names
}
