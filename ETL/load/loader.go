package load

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/LilVoxy/coursework_startups/ETL/models"
	"github.com/LilVoxy/coursework_startups/ETL/utils"
)

// Schema определяет фиксированную схему хранилища: таблица фактов startups,
// таблица metadata с отметкой последнего обновления и таблица visits
// со счетчиком посещений дашборда
const Schema = `
CREATE TABLE IF NOT EXISTS startups (
	startup_id TEXT PRIMARY KEY,
	name TEXT,
	founded_year INTEGER,
	country TEXT,
	industry TEXT,
	funding_stage TEXT,
	funding_musd REAL,
	employees INTEGER,
	revenue_musd REAL,
	valuation_busd REAL,
	success_score REAL,
	acquired INTEGER,
	ipo INTEGER,
	customers_mil REAL,
	tech_stack TEXT,
	followers REAL
);

CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS visits (
	day TEXT PRIMARY KEY,
	visits INTEGER NOT NULL DEFAULT 0
);
`

// Loader отвечает за загрузку нормализованных данных в хранилище
type Loader struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewLoader создает новый экземпляр Loader
func NewLoader(db *sql.DB, logger *utils.ETLLogger) *Loader {
	return &Loader{db: db, logger: logger}
}

// EnsureSchema создает таблицы хранилища, если они еще не существуют
func (l *Loader) EnsureSchema() error {
	if _, err := l.db.Exec(Schema); err != nil {
		return &models.LoadError{Stage: "schema", Err: err}
	}
	return nil
}

// LoadFromInterim полностью замещает содержимое таблицы фактов данными
// из промежуточного файла и обновляет отметку last_updated.
// Замещение и отметка выполняются в одной транзакции: при любой ошибке
// прежнее содержимое таблицы остается нетронутым, а промежуточный файл
// сохраняется для повторной попытки
func (l *Loader) LoadFromInterim(path string) (int, error) {
	startTime := time.Now()
	l.logger.LogLoadStart()

	records, err := l.readInterim(path)
	if err != nil {
		return 0, &models.LoadError{Stage: "interim", Err: err}
	}

	if err := l.EnsureSchema(); err != nil {
		return 0, err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, &models.LoadError{Stage: "transaction", Err: err}
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Полное замещение: сначала очищаем таблицу фактов целиком
	if _, err = tx.Exec("DELETE FROM startups"); err != nil {
		return 0, &models.LoadError{Stage: "replace", Err: err}
	}

	// INSERT OR REPLACE повторяет поведение записи последней строки
	// при коллизии одинаковых пар (name, country)
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO startups (
			startup_id, name, founded_year, country, industry, funding_stage,
			funding_musd, employees, revenue_musd, valuation_busd, success_score,
			acquired, ipo, customers_mil, tech_stack, followers
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, &models.LoadError{Stage: "prepare", Err: err}
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.Exec(
			record.StartupID,
			record.Name,
			record.FoundedYear,
			record.Country,
			record.Industry,
			record.FundingStage,
			record.FundingMUSD,
			record.Employees,
			record.RevenueMUSD,
			record.ValuationBUSD,
			record.SuccessScore,
			record.Acquired,
			record.IPO,
			record.CustomersMil,
			record.TechStack,
			record.Followers,
		)
		if err != nil {
			return 0, &models.LoadError{Stage: "insert", Err: err}
		}
	}

	// Отметка времени последней успешной загрузки
	_, err = tx.Exec(`
		INSERT INTO metadata (key, value) VALUES ('last_updated', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, &models.LoadError{Stage: "metadata", Err: err}
	}

	if err = tx.Commit(); err != nil {
		return 0, &models.LoadError{Stage: "commit", Err: err}
	}

	l.logger.LogLoadComplete(len(records), time.Since(startTime))

	return len(records), nil
}

// readInterim читает промежуточный CSV и восстанавливает записи
func (l *Loader) readInterim(path string) ([]*models.StartupRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии промежуточного файла: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении промежуточного файла: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("промежуточный файл пуст: %s", path)
	}

	records := make([]*models.StartupRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := models.ParseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("ошибка при разборе строки %d промежуточного файла: %w", i+1, err)
		}
		records = append(records, record)
	}

	return records, nil
}
