package state

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// RecordDocumentRun stores one document's outcome. An empty ID is
// filled in.
func (s *SQLiteStore) RecordDocumentRun(dr *core.DocumentRun) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if dr.ID == "" {
		dr.ID = generateID()
	}

	_, err := s.db.ExecContext(ctx(), `
		INSERT INTO document_runs
			(id, run_id, document, status, reason, error_kind, error, warnings, artifacts, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dr.ID, dr.RunID, dr.Document, string(dr.Status), string(dr.Reason), string(dr.ErrorKind),
		dr.Error, dr.Warnings, dr.Artifacts, toMillis(dr.StartedAt), dr.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to record document run %s: %w", dr.Document, err)
	}
	return nil
}

const documentRunColumns = `id, run_id, document, status, reason, error_kind, error, warnings, artifacts, started_at, duration_ms`

// GetDocumentRuns returns the document outcomes of a run, by document.
func (s *SQLiteStore) GetDocumentRuns(runID string) ([]*core.DocumentRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT `+documentRunColumns+` FROM document_runs WHERE run_id = ? ORDER BY document`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.DocumentRun
	for rows.Next() {
		dr, err := scanDocumentRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document run: %w", err)
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

// GetLatestDocumentRun returns the most recent outcome for a document,
// or nil if it was never compiled.
func (s *SQLiteStore) GetLatestDocumentRun(document string) (*core.DocumentRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx(),
		`SELECT `+documentRunColumns+` FROM document_runs WHERE document = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		document)
	dr, err := scanDocumentRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest document run: %w", err)
	}
	return dr, nil
}

func scanDocumentRun(sc scanner) (*core.DocumentRun, error) {
	var (
		dr                        core.DocumentRun
		status, reason, errorKind string
		startedAt                 int64
	)
	err := sc.Scan(&dr.ID, &dr.RunID, &dr.Document, &status, &reason, &errorKind,
		&dr.Error, &dr.Warnings, &dr.Artifacts, &startedAt, &dr.DurationMS)
	if err != nil {
		return nil, err
	}
	dr.Status = core.DocumentStatus(status)
	dr.Reason = core.StaleReason(reason)
	dr.ErrorKind = core.ErrorKind(errorKind)
	dr.StartedAt = fromMillis(startedAt)
	return &dr, nil
}
