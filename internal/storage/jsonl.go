// Package storage persists the paper library in JSONL and mirrors it
// into a SQLite full-text index.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paperbase/paperbase/internal/paper"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all papers from a JSONL file.
func ReadAll(path string) ([]paper.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file reads as empty library
		}
		return nil, fmt.Errorf("opening papers file: %w", err)
	}
	defer f.Close()

	var papers []paper.Paper
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p paper.Paper
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		papers = append(papers, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading papers file: %w", err)
	}

	return papers, nil
}

// Append adds a paper to the end of a JSONL file, creating it if needed.
func Append(path string, p paper.Paper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening papers file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding paper: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing paper: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}

	return nil
}

// WriteAll writes all papers to a JSONL file, replacing existing content.
func WriteAll(path string, papers []paper.Paper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating papers file: %w", err)
	}
	defer f.Close()

	for i, p := range papers {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding paper %d: %w", i, err)
		}

		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing paper %d: %w", i, err)
		}
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	return nil
}

// FindByDOI searches for a paper by normalized DOI.
func FindByDOI(papers []paper.Paper, doi string) (int, bool) {
	doi = paper.NormalizeDOI(doi)
	if doi == "" {
		return -1, false
	}
	for i, p := range papers {
		if paper.NormalizeDOI(p.DOI) == doi {
			return i, true
		}
	}
	return -1, false
}

// FindByID searches for a paper by its source identifier.
func FindByID(papers []paper.Paper, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, p := range papers {
		if p.PaperID == id {
			return i, true
		}
	}
	return -1, false
}

// MergeInto folds incoming papers into an existing library, replacing
// entries that share a DOI or paper ID and appending the rest. Returns
// the merged slice plus how many entries were added and replaced.
func MergeInto(existing, incoming []paper.Paper) ([]paper.Paper, int, int) {
	added, replaced := 0, 0
	for _, p := range incoming {
		idx, found := FindByDOI(existing, p.DOI)
		if !found {
			idx, found = FindByID(existing, p.PaperID)
		}
		if found {
			existing[idx] = p
			replaced++
			continue
		}
		existing = append(existing, p)
		added++
	}
	return existing, added, replaced
}
