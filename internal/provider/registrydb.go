package provider

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/osintlab/personscan/internal/model"
	"github.com/osintlab/personscan/internal/normalize"
)

// RegistryDB provides SQLite-based storage for the structured identity
// registries: voter rolls, tax IDs, national IDs, and criminal case
// indexes. Registries are bulk-loaded reference data; the provider
// only reads them.
type RegistryDB struct {
	db     *sql.DB
	dbPath string
}

// OpenRegistry opens or creates the registry database in dbDir.
func OpenRegistry(dbDir string) (*RegistryDB, error) {
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	dbPath := filepath.Join(dbDir, "registry.db")

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	r := &RegistryDB{db: db, dbPath: dbPath}
	if err := r.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create registry tables: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (r *RegistryDB) Close() error {
	return r.db.Close()
}

// createTables creates the registry schema if it doesn't exist. Every
// table carries name_key, the normalized form records are matched on.
func (r *RegistryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS voter_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name_key TEXT NOT NULL,
		epic_number TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		age TEXT, dob TEXT, gender TEXT, address TEXT,
		father_name TEXT, relation_name TEXT, state TEXT,
		assembly_constituency TEXT, parliamentary_constituency TEXT,
		part_number TEXT, serial_number TEXT, polling_station TEXT,
		photo TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_voter_name ON voter_records(name_key);

	CREATE TABLE IF NOT EXISTS pan_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name_key TEXT NOT NULL,
		pan_number TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		dob TEXT, father_name TEXT, date_of_issue TEXT,
		photo_link TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_pan_name ON pan_records(name_key);

	CREATE TABLE IF NOT EXISTS aadhar_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name_key TEXT NOT NULL,
		ref_id TEXT NOT NULL UNIQUE,
		status TEXT, name TEXT NOT NULL,
		dob TEXT, address TEXT, email TEXT, gender TEXT,
		year_of_birth TEXT, photo TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_aadhar_name ON aadhar_records(name_key);

	CREATE TABLE IF NOT EXISTS criminal_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name_key TEXT NOT NULL,
		name TEXT NOT NULL,
		case_number TEXT, status TEXT, charges TEXT,
		filing_date TEXT, court TEXT, address TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_criminal_name ON criminal_records(name_key);
	`

	_, err := r.db.ExecContext(context.Background(), schema)
	return err
}

// nameKey is the match key registries index on.
func nameKey(name string) string {
	return strings.ToLower(normalize.Name(name))
}

// InsertVoter adds one voter roll entry.
func (r *RegistryDB) InsertVoter(ctx context.Context, rec *model.VoterRecord) error {
	query := `
	INSERT INTO voter_records (
		name_key, epic_number, name, age, dob, gender, address,
		father_name, relation_name, state, assembly_constituency,
		parliamentary_constituency, part_number, serial_number,
		polling_station, photo
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(epic_number) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		nameKey(rec.Name), rec.EpicNumber, rec.Name, rec.Age, rec.DOB,
		rec.Gender, rec.Address, rec.FatherName, rec.RelationName,
		rec.State, rec.AssemblyConstituency, rec.ParliamentaryConstituency,
		rec.PartNumber, rec.SerialNumber, rec.PollingStation, rec.Photo,
	)
	if err != nil {
		return fmt.Errorf("failed to insert voter record: %w", err)
	}
	return nil
}

// InsertPan adds one tax-ID registry entry.
func (r *RegistryDB) InsertPan(ctx context.Context, rec *model.PanRecord) error {
	query := `
	INSERT INTO pan_records (
		name_key, pan_number, name, dob, father_name, date_of_issue, photo_link
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(pan_number) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		nameKey(rec.Name), rec.PanNumber, rec.Name, rec.DOB,
		rec.FatherName, rec.DateOfIssue, rec.PhotoLink,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pan record: %w", err)
	}
	return nil
}

// InsertAadhar adds one national-ID registry entry.
func (r *RegistryDB) InsertAadhar(ctx context.Context, rec *model.AadharRecord) error {
	query := `
	INSERT INTO aadhar_records (
		name_key, ref_id, status, name, dob, address, email, gender,
		year_of_birth, photo
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(ref_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		nameKey(rec.Name), rec.RefID, rec.Status, rec.Name, rec.DOB,
		rec.Address, rec.Email, rec.Gender, rec.YearOfBirth, rec.Photo,
	)
	if err != nil {
		return fmt.Errorf("failed to insert aadhar record: %w", err)
	}
	return nil
}

// InsertCriminal adds one criminal case index entry.
func (r *RegistryDB) InsertCriminal(ctx context.Context, rec *model.CriminalRecord) error {
	query := `
	INSERT INTO criminal_records (
		name_key, name, case_number, status, charges, filing_date, court, address
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		nameKey(rec.Name), rec.Name, rec.CaseNumber, rec.Status,
		strings.Join(rec.Charges, "|"), rec.FilingDate, rec.Court, rec.Address,
	)
	if err != nil {
		return fmt.Errorf("failed to insert criminal record: %w", err)
	}
	return nil
}

// matchVoter returns voter entries matching the normalized name, and
// the location hint when one is given. Voter rolls are address-keyed,
// so the location filter is a substring match on address and state.
func (r *RegistryDB) matchVoter(ctx context.Context, name, location string) ([]model.VoterRecord, error) {
	query := `
	SELECT epic_number, name, age, dob, gender, address, father_name,
	       relation_name, state, assembly_constituency,
	       parliamentary_constituency, part_number, serial_number,
	       polling_station, photo
	FROM voter_records
	WHERE name_key = ?
	`
	args := []any{nameKey(name)}
	if location != "" {
		query += ` AND (address LIKE ? OR state LIKE ?)`
		pattern := "%" + location + "%"
		args = append(args, pattern, pattern)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query voter records: %w", err)
	}
	defer rows.Close()

	var out []model.VoterRecord
	for rows.Next() {
		var rec model.VoterRecord
		if err := rows.Scan(
			&rec.EpicNumber, &rec.Name, &rec.Age, &rec.DOB, &rec.Gender,
			&rec.Address, &rec.FatherName, &rec.RelationName, &rec.State,
			&rec.AssemblyConstituency, &rec.ParliamentaryConstituency,
			&rec.PartNumber, &rec.SerialNumber, &rec.PollingStation,
			&rec.Photo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan voter record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// matchPan returns tax-ID entries matching the normalized name.
func (r *RegistryDB) matchPan(ctx context.Context, name string) ([]model.PanRecord, error) {
	query := `
	SELECT pan_number, name, dob, father_name, date_of_issue, photo_link
	FROM pan_records
	WHERE name_key = ?
	`
	rows, err := r.db.QueryContext(ctx, query, nameKey(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query pan records: %w", err)
	}
	defer rows.Close()

	var out []model.PanRecord
	for rows.Next() {
		var rec model.PanRecord
		if err := rows.Scan(
			&rec.PanNumber, &rec.Name, &rec.DOB, &rec.FatherName,
			&rec.DateOfIssue, &rec.PhotoLink,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// matchAadhar returns national-ID entries matching the normalized name.
func (r *RegistryDB) matchAadhar(ctx context.Context, name string) ([]model.AadharRecord, error) {
	query := `
	SELECT ref_id, status, name, dob, address, email, gender,
	       year_of_birth, photo
	FROM aadhar_records
	WHERE name_key = ?
	`
	rows, err := r.db.QueryContext(ctx, query, nameKey(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query aadhar records: %w", err)
	}
	defer rows.Close()

	var out []model.AadharRecord
	for rows.Next() {
		var rec model.AadharRecord
		if err := rows.Scan(
			&rec.RefID, &rec.Status, &rec.Name, &rec.DOB, &rec.Address,
			&rec.Email, &rec.Gender, &rec.YearOfBirth, &rec.Photo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan aadhar record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// matchCriminal returns criminal case entries matching the normalized
// name, filtered by location when one is given.
func (r *RegistryDB) matchCriminal(ctx context.Context, name, location string) ([]model.CriminalRecord, error) {
	query := `
	SELECT name, case_number, status, charges, filing_date, court, address
	FROM criminal_records
	WHERE name_key = ?
	`
	args := []any{nameKey(name)}
	if location != "" {
		query += ` AND (address LIKE ? OR court LIKE ?)`
		pattern := "%" + location + "%"
		args = append(args, pattern, pattern)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query criminal records: %w", err)
	}
	defer rows.Close()

	var out []model.CriminalRecord
	for rows.Next() {
		var rec model.CriminalRecord
		var charges string
		if err := rows.Scan(
			&rec.Name, &rec.CaseNumber, &rec.Status, &charges,
			&rec.FilingDate, &rec.Court, &rec.Address,
		); err != nil {
			return nil, fmt.Errorf("failed to scan criminal record: %w", err)
		}
		if charges != "" {
			rec.Charges = strings.Split(charges, "|")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
