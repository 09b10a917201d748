package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paperbase/paperbase/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectPaperFields contains the standard field list for SELECT queries.
const selectPaperFields = `paper_id, source, doi, title, abstract, venue,
	pub_year, url, pdf_url, html_url, citations,
	authors_json, categories_json, keywords_json, extra_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			paper_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			doi TEXT,
			title TEXT NOT NULL,
			abstract TEXT,
			venue TEXT,
			pub_year INTEGER,
			url TEXT,
			pdf_url TEXT,
			html_url TEXT,
			citations INTEGER NOT NULL DEFAULT 0,
			authors_json TEXT NOT NULL,
			categories_json TEXT,
			keywords_json TEXT,
			extra_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi) WHERE doi IS NOT NULL AND doi != '';

		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			paper_id,
			title,
			abstract,
			authors_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// Returns the number of papers indexed.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	papers, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	if _, err := d.db.Exec("DELETE FROM papers"); err != nil {
		return 0, fmt.Errorf("clearing papers table: %w", err)
	}
	if _, err := d.db.Exec("DELETE FROM papers_fts"); err != nil {
		return 0, fmt.Errorf("clearing papers_fts table: %w", err)
	}

	for _, p := range papers {
		if err := d.insert(p); err != nil {
			return 0, err
		}
	}

	return len(papers), nil
}

// Upsert inserts or replaces a single paper in both tables.
func (d *DB) Upsert(p paper.Paper) error {
	if _, err := d.db.Exec("DELETE FROM papers WHERE paper_id = ?", p.PaperID); err != nil {
		return fmt.Errorf("deleting paper %s: %w", p.PaperID, err)
	}
	if _, err := d.db.Exec("DELETE FROM papers_fts WHERE paper_id = ?", p.PaperID); err != nil {
		return fmt.Errorf("deleting fts for %s: %w", p.PaperID, err)
	}
	return d.insert(p)
}

func (d *DB) insert(p paper.Paper) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors for %s: %w", p.PaperID, err)
	}

	_, err = d.db.Exec(`
		INSERT INTO papers (
			paper_id, source, doi, title, abstract, venue,
			pub_year, url, pdf_url, html_url, citations,
			authors_json, categories_json, keywords_json, extra_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.PaperID, string(p.Source), nullableStringValue(paper.NormalizeDOI(p.DOI)),
		p.Title, nullableStringValue(p.Abstract), nullableStringValue(p.Venue),
		p.Year(), nullableStringValue(p.URL), nullableStringValue(p.PDFURL),
		nullableStringValue(p.HTMLURL), p.CitationsCount,
		string(authorsJSON), nullableJSON(p.Categories), nullableJSON(p.Keywords),
		nullableMapJSON(p.Extra),
	)
	if err != nil {
		return fmt.Errorf("inserting paper %s: %w", p.PaperID, err)
	}

	_, err = d.db.Exec(`
		INSERT INTO papers_fts (paper_id, title, abstract, authors_text)
		VALUES (?, ?, ?, ?)
	`, p.PaperID, p.Title, p.Abstract, strings.Join(p.Authors, ", "))
	if err != nil {
		return fmt.Errorf("inserting fts for %s: %w", p.PaperID, err)
	}

	return nil
}

// GetByID retrieves a paper by its source identifier.
func (d *DB) GetByID(id string) (*paper.Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE paper_id = ?`, id)
	return scanPaper(row)
}

// GetByDOI retrieves a paper by normalized DOI.
func (d *DB) GetByDOI(doi string) (*paper.Paper, error) {
	doi = paper.NormalizeDOI(doi)
	if doi == "" {
		return nil, nil
	}
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE doi = ?`, doi)
	return scanPaper(row)
}

// Search performs a full-text search over title, abstract, and authors.
func (d *DB) Search(query string, limit int) ([]paper.Paper, error) {
	ftsQuery := prepareFTSQuery(query)

	rows, err := d.db.Query(`
		SELECT `+selectPaperFields+`
		FROM papers
		WHERE paper_id IN (SELECT paper_id FROM papers_fts WHERE papers_fts MATCH ?)
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// ListAll returns all papers ordered by ID, optionally limited.
func (d *DB) ListAll(limit int) ([]paper.Paper, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers ORDER BY paper_id`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Count returns the total number of papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(s scanner) (*paper.Paper, error) {
	var p paper.Paper
	var source string
	var doi, abstract, venue, url, pdfURL, htmlURL sql.NullString
	var authorsJSON string
	var categoriesJSON, keywordsJSON, extraJSON sql.NullString
	var pubYear sql.NullInt64

	err := s.Scan(
		&p.PaperID, &source, &doi, &p.Title, &abstract, &venue,
		&pubYear, &url, &pdfURL, &htmlURL, &p.CitationsCount,
		&authorsJSON, &categoriesJSON, &keywordsJSON, &extraJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.Source = paper.Source(source)
	p.DOI = doi.String
	p.Abstract = abstract.String
	p.Venue = venue.String
	p.URL = url.String
	p.PDFURL = pdfURL.String
	p.HTMLURL = htmlURL.String

	// JSONL remains the source of truth for full dates; the index keeps
	// the year only.
	if pubYear.Valid && pubYear.Int64 > 0 {
		p.PublishedDate = time.Date(int(pubYear.Int64), 1, 1, 0, 0, 0, 0, time.UTC)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", p.PaperID, err)
	}
	if categoriesJSON.Valid && categoriesJSON.String != "" {
		if err := json.Unmarshal([]byte(categoriesJSON.String), &p.Categories); err != nil {
			return nil, fmt.Errorf("parsing categories JSON for %s: %w", p.PaperID, err)
		}
	}
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &p.Keywords); err != nil {
			return nil, fmt.Errorf("parsing keywords JSON for %s: %w", p.PaperID, err)
		}
	}
	if extraJSON.Valid && extraJSON.String != "" {
		if err := json.Unmarshal([]byte(extraJSON.String), &p.Extra); err != nil {
			return nil, fmt.Errorf("parsing extra JSON for %s: %w", p.PaperID, err)
		}
	}

	return &p, nil
}

func scanPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		if p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableJSON(items []string) sql.NullString {
	if len(items) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func nullableMapJSON(m map[string]string) sql.NullString {
	if len(m) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
