package core

// ArtifactRole distinguishes the files generated for one document.
type ArtifactRole string

// Artifact roles.
const (
	ArtifactData ArtifactRole = "data"
	ArtifactView ArtifactRole = "view"
)

// Artifact is one generated file.
type Artifact struct {
	Document string       `json:"document"`
	Role     ArtifactRole `json:"role"`
	Path     string       `json:"path"`  // relative to the output directory
	Group    string       `json:"group"` // logical grouping for the project manifest
	Changed  bool         `json:"changed"`
}

// ManifestEntry is handed to the external project-manifest mutator.
type ManifestEntry struct {
	Path  string `json:"path"`
	Group string `json:"group"`
}

// Manifest lists artifacts generated by a build.
type Manifest struct {
	Entries []ManifestEntry `json:"entries"`
}
