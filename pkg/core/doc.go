// Package core defines the shared language of the leaplayout compiler.
//
// This package contains:
//   - The layout tree (Node, Object) and attribute value helpers
//   - Widget kinds and layout strategy enumerations
//   - Binding declarations and action bindings
//   - Build cache records (DependencyRecord, CacheEntry)
//   - The error taxonomy shared by every pipeline stage
//   - Build history types (BuildRun, DocumentRun)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
