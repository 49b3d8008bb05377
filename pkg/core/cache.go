package core

import (
	"sort"
	"time"
)

// DependencyRecord lists the partials and styles a top-level document
// transitively referenced during its last successful compile.
type DependencyRecord struct {
	Partials []string `yaml:"partials,omitempty" json:"partials,omitempty"`
	Styles   []string `yaml:"styles,omitempty" json:"styles,omitempty"`
}

// Empty reports whether the record has no dependencies.
func (r DependencyRecord) Empty() bool {
	return len(r.Partials) == 0 && len(r.Styles) == 0
}

// Normalized returns a sorted, de-duplicated copy.
func (r DependencyRecord) Normalized() DependencyRecord {
	return DependencyRecord{
		Partials: uniqueSorted(r.Partials),
		Styles:   uniqueSorted(r.Styles),
	}
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// CacheEntry is the persisted build state of one top-level document.
type CacheEntry struct {
	Document     string
	CompiledAt   time.Time
	Dependencies DependencyRecord
	Artifacts    []string
	Fingerprint  string
}

// StaleReason explains why a document needs recompilation.
type StaleReason string

// Staleness reasons.
const (
	StaleUpToDate          StaleReason = "up-to-date"
	StaleNew               StaleReason = "new"
	StaleModified          StaleReason = "modified"
	StaleDependencyChanged StaleReason = "dependency-changed"
	StaleArtifactMissing   StaleReason = "artifact-missing"
	StaleConfigChanged     StaleReason = "config-changed"
	StaleForced            StaleReason = "forced"
)

// Staleness is the verdict of a rebuild check.
type Staleness struct {
	Reason StaleReason
	// Detail names the dependency or artifact behind the verdict, if any.
	Detail string
}

// Stale reports whether the document needs rebuild.
func (s Staleness) Stale() bool {
	return s.Reason != StaleUpToDate && s.Reason != ""
}

func (s Staleness) String() string {
	if s.Detail == "" {
		return string(s.Reason)
	}
	return string(s.Reason) + " (" + s.Detail + ")"
}
