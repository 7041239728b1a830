package analytics

import (
	"database/sql"
	"fmt"

	"github.com/LilVoxy/coursework_startups/ETL/models"
)

// Dataset представляет упорядоченный снимок таблицы фактов в памяти.
// Порядок записей соответствует порядку загрузки и служит детерминированным
// разрешением ничьих в сортировках
type Dataset []*models.StartupRecord

// LoadDataset читает текущее содержимое таблицы фактов из хранилища
func LoadDataset(db *sql.DB) (Dataset, error) {
	rows, err := db.Query(`
		SELECT startup_id, name, founded_year, country, industry, funding_stage,
		       funding_musd, employees, revenue_musd, valuation_busd, success_score,
		       acquired, ipo, customers_mil, tech_stack, followers
		FROM startups
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении таблицы фактов: %w", err)
	}
	defer rows.Close()

	var dataset Dataset
	for rows.Next() {
		var r models.StartupRecord
		err := rows.Scan(
			&r.StartupID,
			&r.Name,
			&r.FoundedYear,
			&r.Country,
			&r.Industry,
			&r.FundingStage,
			&r.FundingMUSD,
			&r.Employees,
			&r.RevenueMUSD,
			&r.ValuationBUSD,
			&r.SuccessScore,
			&r.Acquired,
			&r.IPO,
			&r.CustomersMil,
			&r.TechStack,
			&r.Followers,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи о стартапе: %w", err)
		}
		dataset = append(dataset, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по таблице фактов: %w", err)
	}

	return dataset, nil
}

// Apply возвращает отфильтрованное представление набора данных.
// Порядок записей сохраняется; пустой результат — корректное значение,
// а не ошибка
func (d Dataset) Apply(f Filter) Dataset {
	countrySet := toSet(f.Countries)
	industrySet := toSet(f.Industries)

	var filtered Dataset
	for _, record := range d {
		if len(countrySet) > 0 && !inSet(countrySet, record.Country) {
			continue
		}
		if len(industrySet) > 0 && !inSet(industrySet, record.Industry) {
			continue
		}
		if !inYearRange(record.FoundedYear, f.YearFrom, f.YearTo) {
			continue
		}
		filtered = append(filtered, record)
	}

	return filtered
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, value sql.NullString) bool {
	if !value.Valid {
		return false
	}
	_, ok := set[value.String]
	return ok
}

// inYearRange проверяет попадание года основания во включительный диапазон.
// Записи без года основания исключаются, только если диапазон задан
func inYearRange(year sql.NullInt64, from, to int) bool {
	if from == 0 && to == 0 {
		return true
	}
	if !year.Valid {
		return false
	}
	if from != 0 && year.Int64 < int64(from) {
		return false
	}
	if to != 0 && year.Int64 > int64(to) {
		return false
	}
	return true
}
