package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/LilVoxy/coursework_startups/ETL/models"
	"github.com/LilVoxy/coursework_startups/ETL/utils"
)

func newTestIngestor(t *testing.T) *Ingestor {
	t.Helper()
	t.Chdir(t.TempDir())
	return NewIngestor(utils.NewETLLogger(false))
}

func TestIngestMissingFile(t *testing.T) {
	i := newTestIngestor(t)

	_, err := i.Ingest("data/raw/nonexistent.csv")
	if !errors.Is(err, models.ErrMissingSourceFile) {
		t.Fatalf("ожидался ErrMissingSourceFile, получено %v", err)
	}
}

func TestIngestReadsHeaderAndRows(t *testing.T) {
	i := newTestIngestor(t)

	path := filepath.Join(t.TempDir(), "raw.csv")
	content := "Startup Name,Country\nAcme,US\nBeta,IN\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := i.Ingest(path)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Колонки результата в точности совпадают с исходным заголовком
	if len(table.Header) != 2 || table.Header[0] != "Startup Name" || table.Header[1] != "Country" {
		t.Errorf("неожиданный заголовок: %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("ожидалось 2 строки, получено %d", len(table.Rows))
	}
	if table.Rows[1][0] != "Beta" {
		t.Errorf("неожиданная строка: %v", table.Rows[1])
	}
}
