package models

import (
	"database/sql"
	"fmt"
	"strconv"
)

// CanonicalColumns задаёт канонический порядок колонок таблицы фактов.
// Этот же порядок используется в заголовке промежуточного CSV.
var CanonicalColumns = []string{
	"startup_id",
	"name",
	"founded_year",
	"country",
	"industry",
	"funding_stage",
	"funding_musd",
	"employees",
	"revenue_musd",
	"valuation_busd",
	"success_score",
	"acquired",
	"ipo",
	"customers_mil",
	"tech_stack",
	"followers",
}

// RawTable представляет сырые данные, прочитанные из исходного CSV
type RawTable struct {
	Header []string
	Rows   [][]string
}

// StartupRecord представляет одну запись о стартапе в канонической схеме
type StartupRecord struct {
	StartupID     string
	Name          string
	FoundedYear   sql.NullInt64
	Country       sql.NullString
	Industry      sql.NullString
	FundingStage  sql.NullString
	FundingMUSD   sql.NullFloat64
	Employees     sql.NullInt64
	RevenueMUSD   sql.NullFloat64
	ValuationBUSD sql.NullFloat64
	SuccessScore  sql.NullFloat64
	Acquired      sql.NullInt64
	IPO           sql.NullInt64
	CustomersMil  sql.NullFloat64
	TechStack     sql.NullString
	Followers     sql.NullFloat64
}

// CSVRow сериализует запись в строку промежуточного CSV.
// Порядок значений соответствует CanonicalColumns, NULL кодируется пустой строкой
func (r *StartupRecord) CSVRow() []string {
	return []string{
		r.StartupID,
		r.Name,
		nullIntString(r.FoundedYear),
		nullString(r.Country),
		nullString(r.Industry),
		nullString(r.FundingStage),
		nullFloatString(r.FundingMUSD),
		nullIntString(r.Employees),
		nullFloatString(r.RevenueMUSD),
		nullFloatString(r.ValuationBUSD),
		nullFloatString(r.SuccessScore),
		nullIntString(r.Acquired),
		nullIntString(r.IPO),
		nullFloatString(r.CustomersMil),
		nullString(r.TechStack),
		nullFloatString(r.Followers),
	}
}

// ParseRecord восстанавливает запись из строки промежуточного CSV
func ParseRecord(values []string) (*StartupRecord, error) {
	if len(values) != len(CanonicalColumns) {
		return nil, fmt.Errorf("ожидалось %d значений, получено %d", len(CanonicalColumns), len(values))
	}

	record := &StartupRecord{
		StartupID: values[0],
		Name:      values[1],
	}

	var err error
	if record.FoundedYear, err = parseNullInt(values[2]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе founded_year: %w", err)
	}
	record.Country = parseNullString(values[3])
	record.Industry = parseNullString(values[4])
	record.FundingStage = parseNullString(values[5])
	if record.FundingMUSD, err = parseNullFloat(values[6]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе funding_musd: %w", err)
	}
	if record.Employees, err = parseNullInt(values[7]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе employees: %w", err)
	}
	if record.RevenueMUSD, err = parseNullFloat(values[8]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе revenue_musd: %w", err)
	}
	if record.ValuationBUSD, err = parseNullFloat(values[9]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе valuation_busd: %w", err)
	}
	if record.SuccessScore, err = parseNullFloat(values[10]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе success_score: %w", err)
	}
	if record.Acquired, err = parseNullInt(values[11]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе acquired: %w", err)
	}
	if record.IPO, err = parseNullInt(values[12]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе ipo: %w", err)
	}
	if record.CustomersMil, err = parseNullFloat(values[13]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе customers_mil: %w", err)
	}
	record.TechStack = parseNullString(values[14])
	if record.Followers, err = parseNullFloat(values[15]); err != nil {
		return nil, fmt.Errorf("ошибка при разборе followers: %w", err)
	}

	return record, nil
}

func nullString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullIntString(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func nullFloatString(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func parseNullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func parseNullInt(v string) (sql.NullInt64, error) {
	if v == "" {
		return sql.NullInt64{}, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: parsed, Valid: true}, nil
}

func parseNullFloat(v string) (sql.NullFloat64, error) {
	if v == "" {
		return sql.NullFloat64{}, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: parsed, Valid: true}, nil
}
