// database/startup_query.go
package database

import (
	"database/sql"
	"fmt"
)

// GroupTotal представляет сумму метрики по одному значению ключа группировки
type GroupTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// FundingValuationPoint представляет точку диаграммы "финансирование/оценка"
type FundingValuationPoint struct {
	FundingMUSD   float64 `json:"fundingMusd"`
	ValuationBUSD float64 `json:"valuationBusd"`
	Industry      string  `json:"industry"`
}

// AcquisitionIPOStats представляет сводку по поглощениям и IPO
type AcquisitionIPOStats struct {
	TotalAcquired int `json:"totalAcquired"`
	TotalIPO      int `json:"totalIpo"`
	TotalStartups int `json:"totalStartups"`
}

// FilterOptions представляет доступные значения фильтров для боковой панели
type FilterOptions struct {
	Countries  []string `json:"countries"`
	Industries []string `json:"industries"`
	MinYear    int      `json:"minYear"`
	MaxYear    int      `json:"maxYear"`
}

// TopIndustries возвращает 10 отраслей с наибольшей суммой финансирования
func TopIndustries(db *sql.DB) ([]GroupTotal, error) {
	return groupTotals(db, `
		SELECT industry, SUM(funding_musd) AS total
		FROM startups
		WHERE industry IS NOT NULL
		GROUP BY industry
		ORDER BY total DESC
		LIMIT 10
	`)
}

// TopCountries возвращает 10 стран с наибольшей суммой финансирования
func TopCountries(db *sql.DB) ([]GroupTotal, error) {
	return groupTotals(db, `
		SELECT country, SUM(funding_musd) AS total
		FROM startups
		WHERE country IS NOT NULL
		GROUP BY country
		ORDER BY total DESC
		LIMIT 10
	`)
}

// groupTotals выполняет запрос вида "ключ, сумма" и сканирует результат
func groupTotals(db *sql.DB, query string) ([]GroupTotal, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе агрегации: %w", err)
	}
	defer rows.Close()

	// Пустая таблица дает пустой список, а не null в JSON-ответе
	totals := []GroupTotal{}
	for rows.Next() {
		var t GroupTotal
		var total sql.NullFloat64
		if err := rows.Scan(&t.Key, &total); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании агрегации: %w", err)
		}
		if total.Valid {
			t.Total = total.Float64
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по агрегации: %w", err)
	}

	return totals, nil
}

// FundingVsValuation возвращает пары (финансирование, оценка) по отраслям.
// Строки с NULL в любой из двух метрик не участвуют в диаграмме
func FundingVsValuation(db *sql.DB) ([]FundingValuationPoint, error) {
	rows, err := db.Query(`
		SELECT funding_musd, valuation_busd, IFNULL(industry, '')
		FROM startups
		WHERE funding_musd IS NOT NULL AND valuation_busd IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе финансирования и оценки: %w", err)
	}
	defer rows.Close()

	points := []FundingValuationPoint{}
	for rows.Next() {
		var p FundingValuationPoint
		if err := rows.Scan(&p.FundingMUSD, &p.ValuationBUSD, &p.Industry); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании точки: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по точкам: %w", err)
	}

	return points, nil
}

// AcquisitionIPO возвращает сводку по поглощениям, IPO и общему числу стартапов
func AcquisitionIPO(db *sql.DB) (AcquisitionIPOStats, error) {
	var stats AcquisitionIPOStats
	var acquired, ipo sql.NullInt64

	err := db.QueryRow(`
		SELECT
			SUM(acquired) AS total_acquired,
			SUM(ipo) AS total_ipo,
			COUNT(*) AS total_startups
		FROM startups
	`).Scan(&acquired, &ipo, &stats.TotalStartups)
	if err != nil {
		return stats, fmt.Errorf("ошибка при запросе сводки поглощений и IPO: %w", err)
	}

	stats.TotalAcquired = int(acquired.Int64)
	stats.TotalIPO = int(ipo.Int64)

	return stats, nil
}

// Filters возвращает доступные значения фильтров: отсортированные списки
// стран и отраслей и диапазон годов основания
func Filters(db *sql.DB) (FilterOptions, error) {
	var options FilterOptions

	countries, err := distinctStrings(db, "SELECT DISTINCT country FROM startups WHERE country IS NOT NULL ORDER BY country")
	if err != nil {
		return options, fmt.Errorf("ошибка при запросе списка стран: %w", err)
	}
	options.Countries = countries

	industries, err := distinctStrings(db, "SELECT DISTINCT industry FROM startups WHERE industry IS NOT NULL ORDER BY industry")
	if err != nil {
		return options, fmt.Errorf("ошибка при запросе списка отраслей: %w", err)
	}
	options.Industries = industries

	var minYear, maxYear sql.NullInt64
	err = db.QueryRow("SELECT MIN(founded_year), MAX(founded_year) FROM startups").Scan(&minYear, &maxYear)
	if err != nil {
		return options, fmt.Errorf("ошибка при запросе диапазона годов: %w", err)
	}
	options.MinYear = int(minYear.Int64)
	options.MaxYear = int(maxYear.Int64)

	return options, nil
}

func distinctStrings(db *sql.DB, query string) ([]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// LastUpdated возвращает отметку времени последней успешной загрузки
func LastUpdated(db *sql.DB) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM metadata WHERE key = 'last_updated'").Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка при запросе отметки last_updated: %w", err)
	}
	return value, nil
}
