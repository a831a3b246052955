// Package healthstore is a SQLite-backed host biometric store. Each subject
// has its own grants, characteristics and time-stamped quantity samples.
package healthstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/wellness/internal/domain/biometric"
	"github.com/okian/wellness/pkg/logger"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const dateLayout = time.DateOnly

// Sample is one stored quantity measurement.
type Sample struct {
	Kind    biometric.Kind
	Value   float64
	Unit    biometric.Unit
	StartAt time.Time
}

// DB owns the SQLite connection.
type DB struct {
	db     *sql.DB
	logger logger.Logger
}

// Option applies a configuration option to the DB.
type Option func(*DB)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.logger = l
		}
	}
}

// Open creates the parent directory if needed, opens the database in WAL
// mode and runs migrations.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("healthstore: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("healthstore: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("healthstore: pragma %q: %w", p, err)
		}
	}

	d := &DB{db: db}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("healthstore")
	}
	if err := d.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("healthstore: migration: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS grants (
			subject   TEXT NOT NULL,
			data_type TEXT NOT NULL,
			PRIMARY KEY (subject, data_type)
		);

		CREATE TABLE IF NOT EXISTS characteristics (
			subject       TEXT PRIMARY KEY,
			sex           TEXT NOT NULL DEFAULT 'not_set',
			date_of_birth TEXT
		);

		CREATE TABLE IF NOT EXISTS samples (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			subject  TEXT NOT NULL,
			kind     TEXT NOT NULL,
			value    REAL NOT NULL,
			unit     TEXT NOT NULL,
			start_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_samples_subject_kind_start
			ON samples(subject, kind, start_at);
	`
	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Grant gives subject read access to types.
func (d *DB) Grant(ctx context.Context, subject string, types ...biometric.DataType) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("healthstore: begin grant: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range types {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO grants (subject, data_type) VALUES (?, ?)`, subject, string(t),
		); err != nil {
			return fmt.Errorf("healthstore: grant %s: %w", t, err)
		}
	}
	return tx.Commit()
}

// Revoke withdraws read access to types.
func (d *DB) Revoke(ctx context.Context, subject string, types ...biometric.DataType) error {
	for _, t := range types {
		if _, err := d.db.ExecContext(ctx,
			`DELETE FROM grants WHERE subject = ? AND data_type = ?`, subject, string(t),
		); err != nil {
			return fmt.Errorf("healthstore: revoke %s: %w", t, err)
		}
	}
	return nil
}

// SetCharacteristics replaces the subject's characteristic data.
func (d *DB) SetCharacteristics(ctx context.Context, subject string, c biometric.Characteristics) error {
	var dob sql.NullString
	if !c.DateOfBirth.IsZero() {
		dob = sql.NullString{String: c.DateOfBirth.Format(dateLayout), Valid: true}
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO characteristics (subject, sex, date_of_birth) VALUES (?, ?, ?)
		ON CONFLICT(subject) DO UPDATE SET sex = excluded.sex, date_of_birth = excluded.date_of_birth`,
		subject, c.Sex.String(), dob,
	)
	if err != nil {
		return fmt.Errorf("healthstore: set characteristics: %w", err)
	}
	return nil
}

// AddSample stores one measurement.
func (d *DB) AddSample(ctx context.Context, subject string, s Sample) error {
	if _, err := biometric.ParseKind(string(s.Kind)); err != nil {
		return fmt.Errorf("healthstore: add sample: %w", err)
	}
	if _, err := biometric.ParseUnit(string(s.Unit)); err != nil {
		return fmt.Errorf("healthstore: add sample: %w", err)
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO samples (subject, kind, value, unit, start_at) VALUES (?, ?, ?, ?, ?)`,
		subject, string(s.Kind), s.Value, string(s.Unit), s.StartAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("healthstore: add sample: %w", err)
	}
	return nil
}

// ForSubject returns the HostStore view of one subject.
func (d *DB) ForSubject(subject string) *SubjectStore {
	return &SubjectStore{db: d, subject: subject}
}

// SubjectStore implements biometric.HostStore for one subject.
type SubjectStore struct {
	db      *DB
	subject string
}

var _ biometric.HostStore = (*SubjectStore)(nil)

// RequestAuthorization reports whether every requested type was granted.
func (s *SubjectStore) RequestAuthorization(ctx context.Context, types []biometric.DataType) (bool, error) {
	if len(types) == 0 {
		return true, nil
	}
	unique := make(map[biometric.DataType]struct{}, len(types))
	args := make([]any, 0, len(types)+1)
	args = append(args, s.subject)
	for _, t := range types {
		if _, ok := unique[t]; ok {
			continue
		}
		unique[t] = struct{}{}
		args = append(args, string(t))
	}

	query := `SELECT COUNT(*) FROM grants WHERE subject = ? AND data_type IN (?` +
		strings.Repeat(", ?", len(unique)-1) + `)`
	var granted int
	if err := s.db.db.QueryRowContext(ctx, query, args...).Scan(&granted); err != nil {
		return false, fmt.Errorf("healthstore: authorization: %w", err)
	}
	return granted == len(unique), nil
}

// MostRecentSample returns the latest sample of req.Kind converted into
// req.Unit, or false when the subject has none.
func (s *SubjectStore) MostRecentSample(ctx context.Context, req biometric.SampleRequest) (float64, bool, error) {
	order := "DESC"
	if req.Order == biometric.Ascending {
		order = "ASC"
	}
	query := `SELECT value, unit FROM samples WHERE subject = ? AND kind = ? ORDER BY start_at ` + order + `, id ` + order + ` LIMIT 1`

	var (
		value float64
		unit  string
	)
	err := s.db.db.QueryRowContext(ctx, query, s.subject, string(req.Kind)).Scan(&value, &unit)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("healthstore: query %s: %w", req.Kind, err)
	}

	converted, err := biometric.Convert(value, biometric.Unit(unit), req.Unit)
	if err != nil {
		return 0, false, fmt.Errorf("healthstore: %s sample: %w", req.Kind, err)
	}
	return converted, true, nil
}

// Characteristics returns the subject's characteristic data. A subject with
// no row reads as unset.
func (s *SubjectStore) Characteristics(ctx context.Context) (biometric.Characteristics, error) {
	var (
		sex string
		dob sql.NullString
	)
	err := s.db.db.QueryRowContext(ctx,
		`SELECT sex, date_of_birth FROM characteristics WHERE subject = ?`, s.subject,
	).Scan(&sex, &dob)
	if errors.Is(err, sql.ErrNoRows) {
		return biometric.Characteristics{}, nil
	}
	if err != nil {
		return biometric.Characteristics{}, fmt.Errorf("healthstore: characteristics: %w", err)
	}

	var c biometric.Characteristics
	if c.Sex, err = biometric.ParseSex(sex); err != nil {
		return biometric.Characteristics{}, fmt.Errorf("healthstore: characteristics: %w", err)
	}
	if dob.Valid {
		if c.DateOfBirth, err = time.Parse(dateLayout, dob.String); err != nil {
			return biometric.Characteristics{}, fmt.Errorf("healthstore: date of birth: %w", err)
		}
	}
	return c, nil
}
