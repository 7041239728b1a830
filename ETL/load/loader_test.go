package load

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/LilVoxy/coursework_startups/ETL/models"
	"github.com/LilVoxy/coursework_startups/ETL/utils"
	"github.com/LilVoxy/coursework_startups/database"
)

func newTestLoader(t *testing.T) (*Loader, *sql.DB) {
	t.Helper()
	t.Chdir(t.TempDir())

	db, err := database.Connect(filepath.Join(t.TempDir(), "funding.db"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewLoader(db, utils.NewETLLogger(false)), db
}

// writeInterim записывает промежуточный CSV из набора записей
func writeInterim(t *testing.T, path string, records []*models.StartupRecord) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(models.CanonicalColumns); err != nil {
		t.Fatal(err)
	}
	for _, record := range records {
		if err := writer.Write(record.CSVRow()); err != nil {
			t.Fatal(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		t.Fatal(err)
	}
}

func makeRecords(n int) []*models.StartupRecord {
	records := make([]*models.StartupRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &models.StartupRecord{
			StartupID:   fmt.Sprintf("id-%04d", i),
			Name:        fmt.Sprintf("Startup %d", i),
			Country:     sql.NullString{String: "US", Valid: true},
			FundingMUSD: sql.NullFloat64{Float64: float64(i), Valid: true},
		})
	}
	return records
}

func countStartups(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM startups").Scan(&count); err != nil {
		t.Fatalf("COUNT: %v", err)
	}
	return count
}

func TestLoadFullReplace(t *testing.T) {
	loader, db := newTestLoader(t)
	interim := filepath.Join(t.TempDir(), "startups_clean.csv")

	// Первая загрузка: 100 записей
	writeInterim(t, interim, makeRecords(100))
	loaded, err := loader.LoadFromInterim(interim)
	if err != nil {
		t.Fatalf("LoadFromInterim: %v", err)
	}
	if loaded != 100 || countStartups(t, db) != 100 {
		t.Fatalf("ожидалось 100 записей, загружено %d, в таблице %d", loaded, countStartups(t, db))
	}

	// Вторая загрузка меньшего объема полностью замещает первую:
	// ни одна строка первой загрузки не переживает вторую
	writeInterim(t, interim, makeRecords(80))
	if _, err := loader.LoadFromInterim(interim); err != nil {
		t.Fatalf("LoadFromInterim (повторно): %v", err)
	}
	if got := countStartups(t, db); got != 80 {
		t.Fatalf("после повторной загрузки ожидалось 80 записей, получено %d", got)
	}

	// Промежуточный файл остается на месте для повторной попытки
	if _, err := os.Stat(interim); err != nil {
		t.Errorf("промежуточный файл исчез: %v", err)
	}
}

func TestLoadStampsLastUpdated(t *testing.T) {
	loader, db := newTestLoader(t)
	interim := filepath.Join(t.TempDir(), "startups_clean.csv")

	writeInterim(t, interim, makeRecords(3))
	if _, err := loader.LoadFromInterim(interim); err != nil {
		t.Fatalf("LoadFromInterim: %v", err)
	}

	value, err := database.LastUpdated(db)
	if err != nil {
		t.Fatalf("LastUpdated: %v", err)
	}
	if value == "" {
		t.Error("после успешной загрузки отметка last_updated обязана присутствовать")
	}
}

func TestLoadRoundTripPreservesValues(t *testing.T) {
	loader, db := newTestLoader(t)
	interim := filepath.Join(t.TempDir(), "startups_clean.csv")

	record := &models.StartupRecord{
		StartupID:     "id-0001",
		Name:          "Acme",
		FoundedYear:   sql.NullInt64{Int64: 2020, Valid: true},
		Country:       sql.NullString{String: "US", Valid: true},
		FundingMUSD:   sql.NullFloat64{Float64: 10.5, Valid: true},
		Acquired:      sql.NullInt64{Int64: 1, Valid: true},
		Followers:     sql.NullFloat64{Float64: 1500000, Valid: true},
		ValuationBUSD: sql.NullFloat64{},
	}
	writeInterim(t, interim, []*models.StartupRecord{record})

	if _, err := loader.LoadFromInterim(interim); err != nil {
		t.Fatalf("LoadFromInterim: %v", err)
	}

	var name string
	var year sql.NullInt64
	var funding, valuation, followers sql.NullFloat64
	var acquired sql.NullInt64
	err := db.QueryRow(`
		SELECT name, founded_year, funding_musd, valuation_busd, acquired, followers
		FROM startups WHERE startup_id = 'id-0001'
	`).Scan(&name, &year, &funding, &valuation, &acquired, &followers)
	if err != nil {
		t.Fatalf("SELECT: %v", err)
	}

	if name != "Acme" || year.Int64 != 2020 || funding.Float64 != 10.5 {
		t.Errorf("значения искажены: name=%q year=%v funding=%v", name, year, funding)
	}
	if valuation.Valid {
		t.Error("NULL-оценка обязана остаться NULL после загрузки")
	}
	if !acquired.Valid || acquired.Int64 != 1 {
		t.Errorf("флаг acquired искажен: %+v", acquired)
	}
	if followers.Float64 != 1500000 {
		t.Errorf("followers искажены: %+v", followers)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	interim := filepath.Join(t.TempDir(), "startups_clean.csv")
	content := []byte("startup_id,name\nid-0001,Acme\n")
	if err := os.WriteFile(interim, content, 0644); err != nil {
		t.Fatal(err)
	}

	archiveDir := t.TempDir()
	archivePath, err := ArchiveInterim(interim, archiveDir)
	if err != nil {
		t.Fatalf("ArchiveInterim: %v", err)
	}

	restored, err := ReadArchive(archivePath)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if string(restored) != string(content) {
		t.Errorf("архив искажает данные: %q != %q", restored, content)
	}
}
