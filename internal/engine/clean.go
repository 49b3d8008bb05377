package engine

import (
	"errors"
	"fmt"
)

// Clean removes every recorded artifact and resets the build cache, so
// the next build compiles everything. It returns the removed artifact
// paths relative to the output directory.
func (e *Engine) Clean() ([]string, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	var removed []string
	var errs []error
	for _, entry := range e.cache.Entries() {
		if err := e.emitter.Remove(entry.Artifacts); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, entry.Artifacts...)
	}
	if err := e.cache.Reset(); err != nil {
		errs = append(errs, fmt.Errorf("reset cache: %w", err))
	}
	e.logger.Info("cleaned build outputs", "artifacts", len(removed))
	return removed, errors.Join(errs...)
}
