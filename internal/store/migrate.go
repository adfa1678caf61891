package store

// Migrate brings the schema to the current version, tracked via
// PRAGMA user_version.
func (s *Store) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Kind: ErrKindIOFailure, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return &StoreError{Kind: ErrKindIOFailure, Err: err}
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  ats_provider TEXT NOT NULL,
  title TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  apply_url TEXT NOT NULL,
  description TEXT,
  fingerprint TEXT NOT NULL,
  detail_fingerprint TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'new',
  scraped_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return &StoreError{Kind: ErrKindIOFailure, Err: err}
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_company_url
ON jobs(company, apply_url);
`); err != nil {
		return &StoreError{Kind: ErrKindIOFailure, Err: err}
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_status
ON jobs(status);
`); err != nil {
		return &StoreError{Kind: ErrKindIOFailure, Err: err}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return &StoreError{Kind: ErrKindIOFailure, Err: err}
	}

	return tx.Commit()
}
