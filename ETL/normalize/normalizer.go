package normalize

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_startups/ETL/models"
	"github.com/LilVoxy/coursework_startups/ETL/utils"
	"github.com/google/uuid"
)

// Normalizer приводит сырые данные к канонической схеме таблицы фактов
type Normalizer struct {
	logger *utils.ETLLogger
}

// NewNormalizer создает новый экземпляр Normalizer
func NewNormalizer(logger *utils.ETLLogger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize выполняет фазу нормализации:
//  1. переименование колонок по фиксированной таблице соответствий;
//  2. приведение текстовых колонок acquired/ipo ("yes"/"no") к 0/1;
//  3. разбор суффиксов величины в колонке followers;
//  4. вычисление детерминированного startup_id (UUID версии 5 от name+country).
//
// Ровно одна выходная запись на каждую входную строку
func (n *Normalizer) Normalize(raw *models.RawTable) ([]*models.StartupRecord, error) {
	startTime := time.Now()
	n.logger.LogNormalizeStart()

	index, missing, unexpected := indexColumns(raw.Header)

	// Неопознанные колонки отбрасываются молча, но попадают в отладочный лог
	for _, column := range unexpected {
		n.logger.Debug("Колонка %q не входит в каноническую схему и будет отброшена", column)
	}

	if len(missing) > 0 {
		err := &models.SchemaError{Missing: missing, Unexpected: unexpected}
		n.logger.Error("Несоответствие схемы исходных данных: %v", err)
		return nil, err
	}

	records := make([]*models.StartupRecord, 0, len(raw.Rows))
	for rowNum, row := range raw.Rows {
		record, err := n.normalizeRow(index, row, rowNum)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	n.logger.LogNormalizeComplete(len(records), time.Since(startTime))

	return records, nil
}

// normalizeRow приводит одну исходную строку к канонической записи
func (n *Normalizer) normalizeRow(index columnIndex, row []string, rowNum int) (*models.StartupRecord, error) {
	cell := func(canonical string) string {
		pos := index[canonical]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	record := &models.StartupRecord{
		Name:         cell("name"),
		Country:      optionalString(cell("country")),
		Industry:     optionalString(cell("industry")),
		FundingStage: optionalString(cell("funding_stage")),
		TechStack:    optionalString(cell("tech_stack")),
	}

	record.FoundedYear = optionalInt(cell("founded_year"))
	record.Employees = optionalInt(cell("employees"))
	record.FundingMUSD = optionalFloat(cell("funding_musd"))
	record.RevenueMUSD = optionalFloat(cell("revenue_musd"))
	record.ValuationBUSD = optionalFloat(cell("valuation_busd"))
	record.SuccessScore = optionalFloat(cell("success_score"))
	record.CustomersMil = optionalFloat(cell("customers_mil"))

	// Текстовые флаги "yes"/"no" приводятся к 0/1 без учета регистра;
	// любое другое значение становится NULL
	record.Acquired = yesNoFlag(cell("acquired"))
	record.IPO = yesNoFlag(cell("ipo"))

	// Суффиксы величины (K, M) разрешаются до загрузки; неразборчивое
	// значение останавливает нормализацию, а не превращается в ноль
	followers, ok := parseMagnitude(cell("followers"))
	if !ok {
		err := &models.MalformedMagnitudeError{
			Row:    rowNum + 1,
			Column: "followers",
			Value:  cell("followers"),
		}
		n.logger.Error("Ошибка при разборе суффикса величины: %v", err)
		return nil, err
	}
	record.Followers = followers

	// Стабильный идентификатор: UUID версии 5 от конкатенации name и country.
	// Повторный запуск на тех же данных дает тот же идентификатор;
	// одинаковые пары (name, country) намеренно дают коллизию
	record.StartupID = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(record.Name+nullableValue(record.Country))).String()

	return record, nil
}

// WriteInterim записывает нормализованную таблицу в промежуточный CSV,
// перезаписывая предыдущий файл
func (n *Normalizer) WriteInterim(records []*models.StartupRecord, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ошибка при создании каталога промежуточных данных: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка при создании промежуточного файла: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(models.CanonicalColumns); err != nil {
		return fmt.Errorf("ошибка при записи заголовка: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.CSVRow()); err != nil {
			return fmt.Errorf("ошибка при записи промежуточного файла: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("ошибка при записи промежуточного файла: %w", err)
	}

	n.logger.Info("Промежуточный файл записан: %s (%d записей)", path, len(records))

	return nil
}

// yesNoFlag переводит текстовый флаг в 0/1: "yes" → 1, "no" → 0,
// все остальное (включая пустую строку) → NULL
func yesNoFlag(value string) sql.NullInt64 {
	switch strings.ToLower(value) {
	case "yes":
		return sql.NullInt64{Int64: 1, Valid: true}
	case "no":
		return sql.NullInt64{Int64: 0, Valid: true}
	default:
		return sql.NullInt64{}
	}
}

// optionalString превращает пустую строку в NULL
func optionalString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

// optionalInt разбирает целое значение; пустые и неразборчивые значения
// становятся NULL
func optionalInt(value string) sql.NullInt64 {
	if value == "" {
		return sql.NullInt64{}
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: parsed, Valid: true}
}

// optionalFloat разбирает вещественное значение; пустые и неразборчивые
// значения становятся NULL
func optionalFloat(value string) sql.NullFloat64 {
	if value == "" {
		return sql.NullFloat64{}
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: parsed, Valid: true}
}

// nullableValue возвращает строку из NullString или пустую строку для NULL
func nullableValue(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
