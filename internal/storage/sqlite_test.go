package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "papers.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRebuildFromJSONL(t *testing.T) {
	dir := t.TempDir()
	jsonlPath := filepath.Join(dir, "papers.jsonl")

	in := samplePapers()
	in[0].PublishedDate = time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	if err := WriteAll(jsonlPath, in); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	db := openTestDB(t)
	n, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		t.Fatalf("RebuildFromJSONL: %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d papers, want 2", n)
	}

	count, err := db.Count()
	if err != nil || count != 2 {
		t.Errorf("Count = %d, %v", count, err)
	}

	p, err := db.GetByID("2301.00001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p == nil || p.Title != "Sparse Attention at Scale" {
		t.Fatalf("GetByID = %+v", p)
	}
	if p.Year() != 2023 {
		t.Errorf("year lost in index: %d", p.Year())
	}
	if len(p.Authors) != 2 || p.Authors[1] != "Alan Turing" {
		t.Errorf("authors = %v", p.Authors)
	}

	// Rebuild is idempotent: no duplicate rows.
	if _, err := db.RebuildFromJSONL(jsonlPath); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	if count, _ := db.Count(); count != 2 {
		t.Errorf("Count after second rebuild = %d", count)
	}
}

func TestGetByDOI(t *testing.T) {
	db := openTestDB(t)
	for _, p := range samplePapers() {
		if err := db.Upsert(p); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	p, err := db.GetByDOI("DOI:10.5555/GNN-SURVEY")
	if err != nil {
		t.Fatalf("GetByDOI: %v", err)
	}
	if p == nil || p.PaperID != "s2-abc" {
		t.Fatalf("GetByDOI = %+v", p)
	}

	p, err = db.GetByDOI("10.0000/nope")
	if err != nil || p != nil {
		t.Errorf("missing DOI should return nil, nil; got %+v, %v", p, err)
	}
}

func TestSearch(t *testing.T) {
	db := openTestDB(t)
	for _, p := range samplePapers() {
		if err := db.Upsert(p); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	hits, err := db.Search("message passing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].PaperID != "s2-abc" {
		t.Errorf("hits = %+v", hits)
	}

	hits, err = db.Search("Hopper", 10)
	if err != nil {
		t.Fatalf("author search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("author search hits = %+v", hits)
	}
}

func TestUpsert_Replaces(t *testing.T) {
	db := openTestDB(t)
	p := samplePapers()[0]
	if err := db.Upsert(p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	p.Title = "Sparse Attention at Scale (revised)"
	p.CitationsCount = 7
	if err := db.Upsert(p); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	if count, _ := db.Count(); count != 1 {
		t.Fatalf("Count = %d", count)
	}
	got, err := db.GetByID(p.PaperID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %+v, %v", got, err)
	}
	if got.Title != "Sparse Attention at Scale (revised)" || got.CitationsCount != 7 {
		t.Errorf("stale row survived upsert: %+v", got)
	}
}

func TestListAll(t *testing.T) {
	db := openTestDB(t)
	for _, p := range samplePapers() {
		if err := db.Upsert(p); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	all, err := db.ListAll(0)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAll = %d papers", len(all))
	}
	if all[0].PaperID > all[1].PaperID {
		t.Errorf("not ordered by id: %q, %q", all[0].PaperID, all[1].PaperID)
	}

	one, err := db.ListAll(1)
	if err != nil || len(one) != 1 {
		t.Errorf("limited list = %d papers, %v", len(one), err)
	}
}
