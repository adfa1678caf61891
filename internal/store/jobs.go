package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobcatalog-engine/internal/domain"
	"jobcatalog-engine/internal/normalize"
)

// UpsertOutcome says what an upsert did to the catalog.
type UpsertOutcome string

const (
	OutcomeInserted UpsertOutcome = "inserted"
	OutcomeUpdated  UpsertOutcome = "updated"
	OutcomeSkipped  UpsertOutcome = "skipped" // duplicate, fingerprint unchanged
)

const jobColumns = `id, company, ats_provider, title, location, apply_url,
description, fingerprint, detail_fingerprint, status, scraped_at, updated_at`

// Upsert inserts a normalized listing or updates the existing row for its
// (company, apply_url) pair. Inserts default to status "new"; updates
// touch descriptive fields only, never status or description. updated_at
// is refreshed on every call so staleness queries keep working.
func (s *Store) Upsert(ctx context.Context, p domain.JobPosting) (domain.JobPosting, UpsertOutcome, error) {
	existing, err := s.GetByID(ctx, p.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.JobPosting{}, "", err
	}

	now := time.Now().UTC()

	if errors.Is(err, ErrNotFound) {
		p.Status = domain.StatusNew
		p.Description = nil
		p.DetailFingerprint = ""
		p.ScrapedAt = now
		p.UpdatedAt = now

		_, ierr := s.db.ExecContext(ctx, `
INSERT INTO jobs (id, company, ats_provider, title, location, apply_url, fingerprint, status, scraped_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?);`,
			p.ID, p.Company, p.ATSProvider, p.Title, p.Location, p.ApplyURL,
			p.Fingerprint, string(p.Status),
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		if ierr != nil {
			// a concurrent worker may have inserted the same pair; read back once
			if row, gerr := s.GetByID(ctx, p.ID); gerr == nil {
				return row, OutcomeSkipped, nil
			}
			return domain.JobPosting{}, "", &StoreError{Kind: ErrKindIOFailure, Err: ierr}
		}
		return p, OutcomeInserted, nil
	}

	if existing.Fingerprint == p.Fingerprint {
		if _, uerr := s.db.ExecContext(ctx,
			`UPDATE jobs SET updated_at = ? WHERE id = ?;`,
			now.Format(time.RFC3339), p.ID,
		); uerr != nil {
			return domain.JobPosting{}, "", &StoreError{Kind: ErrKindIOFailure, Err: uerr}
		}
		existing.UpdatedAt = now
		return existing, OutcomeSkipped, nil
	}

	if _, uerr := s.db.ExecContext(ctx, `
UPDATE jobs
SET title = ?, location = ?, ats_provider = ?, fingerprint = ?, updated_at = ?
WHERE id = ?;`,
		p.Title, p.Location, p.ATSProvider, p.Fingerprint,
		now.Format(time.RFC3339), p.ID,
	); uerr != nil {
		return domain.JobPosting{}, "", &StoreError{Kind: ErrKindIOFailure, Err: uerr}
	}

	existing.Title = p.Title
	existing.Location = p.Location
	existing.ATSProvider = p.ATSProvider
	existing.Fingerprint = p.Fingerprint
	existing.UpdatedAt = now
	return existing, OutcomeUpdated, nil
}

// UpsertDetail writes a description onto an existing row. Empty text
// never overwrites (last-known-good); unchanged content only refreshes
// updated_at. Reports whether the description actually changed.
func (s *Store) UpsertDetail(ctx context.Context, id, description string) (bool, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	if description == "" {
		return false, nil
	}

	fp := normalize.DetailFingerprint(description)
	if fp == existing.DetailFingerprint {
		if _, uerr := s.db.ExecContext(ctx,
			`UPDATE jobs SET updated_at = ? WHERE id = ?;`, now, id,
		); uerr != nil {
			return false, &StoreError{Kind: ErrKindIOFailure, Err: uerr}
		}
		return false, nil
	}

	if _, uerr := s.db.ExecContext(ctx, `
UPDATE jobs SET description = ?, detail_fingerprint = ?, updated_at = ?
WHERE id = ?;`,
		description, fp, now, id,
	); uerr != nil {
		return false, &StoreError{Kind: ErrKindIOFailure, Err: uerr}
	}
	return true, nil
}

// UpdateStatus is the curation interface: it enforces the transition
// table and never lets re-scrape semantics leak in. A concurrent status
// write is retried once against a fresh read, then surfaces as conflict.
func (s *Store) UpdateStatus(ctx context.Context, id string, to domain.Status) (domain.JobPosting, error) {
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.GetByID(ctx, id)
		if err != nil {
			return domain.JobPosting{}, err
		}

		if err := domain.Transition(existing.Status, to); err != nil {
			return domain.JobPosting{}, err
		}

		now := time.Now().UTC()
		res, uerr := s.db.ExecContext(ctx, `
UPDATE jobs SET status = ?, updated_at = ?
WHERE id = ? AND status = ?;`,
			string(to), now.Format(time.RFC3339), id, string(existing.Status),
		)
		if uerr != nil {
			return domain.JobPosting{}, &StoreError{Kind: ErrKindIOFailure, Err: uerr}
		}
		if n, _ := res.RowsAffected(); n > 0 {
			existing.Status = to
			existing.UpdatedAt = now
			return existing, nil
		}
		// status moved underneath us; loop re-reads and re-validates
	}
	return domain.JobPosting{}, &StoreError{Kind: ErrKindConflict}
}

// ResetStatus is the administrative reopen: the only path back to "new"
// from any state, including terminal ones.
func (s *Store) ResetStatus(ctx context.Context, id string) (domain.JobPosting, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.JobPosting{}, err
	}

	now := time.Now().UTC()
	if _, uerr := s.db.ExecContext(ctx, `
UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?;`,
		string(domain.StatusNew), now.Format(time.RFC3339), id,
	); uerr != nil {
		return domain.JobPosting{}, &StoreError{Kind: ErrKindIOFailure, Err: uerr}
	}
	existing.Status = domain.StatusNew
	existing.UpdatedAt = now
	return existing, nil
}

// Flush deletes every posting. Administrative, batch mode only.
func (s *Store) Flush(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs;`)
	if err != nil {
		return 0, &StoreError{Kind: ErrKindIOFailure, Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.JobPosting, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?;`, id)
	return scanJob(row)
}

// ListByStatus returns the catalog filtered by status; pass "" for all.
func (s *Store) ListByStatus(ctx context.Context, status domain.Status) ([]domain.JobPosting, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY scraped_at DESC, id;`
	args := []any{}
	if status != "" {
		query = `SELECT ` + jobColumns + ` FROM jobs WHERE status = ? ORDER BY scraped_at DESC, id;`
		args = append(args, string(status))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Kind: ErrKindIOFailure, Err: err}
	}
	defer rows.Close()

	var out []domain.JobPosting
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Kind: ErrKindIOFailure, Err: err}
	}
	return out, nil
}

// Approved is the consumption interface: everything curation let
// through, for the generation/compilation collaborators.
func (s *Store) Approved(ctx context.Context) ([]domain.JobPosting, error) {
	return s.ListByStatus(ctx, domain.StatusApproved)
}

// PendingDetail returns rows the detail pass still owes a description.
func (s *Store) PendingDetail(ctx context.Context) ([]domain.JobPosting, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+jobColumns+` FROM jobs
WHERE description IS NULL AND status NOT IN (?, ?)
ORDER BY scraped_at, id;`,
		string(domain.StatusIgnored), string(domain.StatusRejected),
	)
	if err != nil {
		return nil, &StoreError{Kind: ErrKindIOFailure, Err: err}
	}
	defer rows.Close()

	var out []domain.JobPosting
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Kind: ErrKindIOFailure, Err: err}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (domain.JobPosting, error) {
	var j domain.JobPosting
	var desc sql.NullString
	var status, scrapedAt, updatedAt string

	err := r.Scan(
		&j.ID, &j.Company, &j.ATSProvider, &j.Title, &j.Location, &j.ApplyURL,
		&desc, &j.Fingerprint, &j.DetailFingerprint, &status, &scrapedAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.JobPosting{}, ErrNotFound
	}
	if err != nil {
		return domain.JobPosting{}, &StoreError{Kind: ErrKindIOFailure, Err: err}
	}

	if desc.Valid {
		j.Description = &desc.String
	}
	j.Status = domain.Status(status)
	j.ScrapedAt, _ = time.Parse(time.RFC3339, scrapedAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return j, nil
}
