package analytics

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	"github.com/LilVoxy/coursework_startups/ETL/models"
)

// GroupKey задает колонку группировки
type GroupKey string

const (
	GroupCountry     GroupKey = "country"
	GroupIndustry    GroupKey = "industry"
	GroupFoundedYear GroupKey = "founded_year"
)

// Metric задает числовую колонку для агрегации
type Metric string

const (
	MetricFunding      Metric = "funding_musd"
	MetricRevenue      Metric = "revenue_musd"
	MetricValuation    Metric = "valuation_busd"
	MetricSuccessScore Metric = "success_score"
	MetricEmployees    Metric = "employees"
	MetricCustomers    Metric = "customers_mil"
	MetricFollowers    Metric = "followers"
	MetricAcquired     Metric = "acquired"
	MetricIPO          Metric = "ipo"
)

// metricValue извлекает значение метрики из записи
func metricValue(r *models.StartupRecord, m Metric) sql.NullFloat64 {
	switch m {
	case MetricFunding:
		return r.FundingMUSD
	case MetricRevenue:
		return r.RevenueMUSD
	case MetricValuation:
		return r.ValuationBUSD
	case MetricSuccessScore:
		return r.SuccessScore
	case MetricEmployees:
		return nullIntToFloat(r.Employees)
	case MetricCustomers:
		return r.CustomersMil
	case MetricFollowers:
		return r.Followers
	case MetricAcquired:
		return nullIntToFloat(r.Acquired)
	case MetricIPO:
		return nullIntToFloat(r.IPO)
	default:
		return sql.NullFloat64{}
	}
}

// groupValue извлекает значение ключа группировки.
// Записи с NULL в ключе в группировке не участвуют
func groupValue(r *models.StartupRecord, k GroupKey) (string, bool) {
	switch k {
	case GroupCountry:
		return r.Country.String, r.Country.Valid
	case GroupIndustry:
		return r.Industry.String, r.Industry.Valid
	case GroupFoundedYear:
		if !r.FoundedYear.Valid {
			return "", false
		}
		return strconv.FormatInt(r.FoundedYear.Int64, 10), true
	default:
		return "", false
	}
}

// groupAccumulator накапливает сумму и количество ненулевых значений группы
type groupAccumulator struct {
	sum   float64
	n     int
	total int
}

// groupBy агрегирует метрику по ключу, сохраняя порядок первого появления
// каждой группы. Пустая выборка дает пустой результат
func groupBy(d Dataset, key GroupKey, metric Metric) ([]string, map[string]*groupAccumulator) {
	var order []string
	groups := make(map[string]*groupAccumulator)

	for _, record := range d {
		k, ok := groupValue(record, key)
		if !ok {
			continue
		}

		acc, seen := groups[k]
		if !seen {
			acc = &groupAccumulator{}
			groups[k] = acc
			order = append(order, k)
		}
		acc.total++

		if v := metricValue(record, metric); v.Valid {
			acc.sum += v.Float64
			acc.n++
		}
	}

	return order, groups
}

// GroupSum возвращает сумму метрики по каждой группе.
// Группа, в которой все значения NULL, дает сумму 0 и неопределенность
// не возникает: сумма пустого множества определена
func GroupSum(d Dataset, key GroupKey, metric Metric) []GroupedRow {
	order, groups := groupBy(d, key, metric)

	rows := make([]GroupedRow, 0, len(order))
	for _, k := range order {
		acc := groups[k]
		rows = append(rows, GroupedRow{Key: k, Value: Defined(acc.sum), Count: acc.total})
	}

	return rows
}

// GroupMean возвращает среднее метрики по каждой группе.
// NULL-значения не участвуют в среднем; группа без единого значения
// дает неопределенную метрику
func GroupMean(d Dataset, key GroupKey, metric Metric) []GroupedRow {
	order, groups := groupBy(d, key, metric)

	rows := make([]GroupedRow, 0, len(order))
	for _, k := range order {
		acc := groups[k]
		value := Nullable{}
		if acc.n > 0 {
			value = Defined(acc.sum / float64(acc.n))
		}
		rows = append(rows, GroupedRow{Key: k, Value: value, Count: acc.total})
	}

	return rows
}

// GroupCount возвращает число записей в каждой группе
func GroupCount(d Dataset, key GroupKey) []GroupedRow {
	order, groups := groupBy(d, key, MetricFunding)

	rows := make([]GroupedRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, GroupedRow{Key: k, Value: Defined(float64(groups[k].total)), Count: groups[k].total})
	}

	return rows
}

// TopN возвращает n групп с наибольшей суммой метрики.
// Сортировка устойчива: при равенстве сумм порядок первого появления
// группы сохраняется — ничьи разрешаются детерминированно
func TopN(d Dataset, key GroupKey, metric Metric, n int) []GroupedRow {
	rows := GroupSum(d, key, metric)

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value.Value > rows[j].Value.Value
	})

	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	return rows
}

// ArgMaxSum возвращает ключ группы с максимальной суммой метрики.
// Для пустой выборки редукция не определена
func ArgMaxSum(d Dataset, key GroupKey, metric Metric) (string, error) {
	rows := TopN(d, key, metric, 1)
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: argmax(%s по %s)", ErrUndefinedReduction, metric, key)
	}
	return rows[0].Key, nil
}

// Ratio вычисляет отношение двух сумм. Нулевой или неопределенный
// знаменатель дает неопределенный результат, а не ошибку деления
func Ratio(numerator, denominator float64) Nullable {
	if denominator == 0 {
		return Nullable{}
	}
	return Defined(numerator / denominator)
}

// Timeline возвращает погодовые сводки для страницы трендов,
// отсортированные по году основания
func Timeline(d Dataset) []YearStats {
	type yearAcc struct {
		startups     int
		funding      float64
		valuationSum float64
		valuationN   int
		successSum   float64
		successN     int
	}

	years := make(map[int64]*yearAcc)
	var order []int64

	for _, record := range d {
		if !record.FoundedYear.Valid {
			continue
		}
		year := record.FoundedYear.Int64

		acc, seen := years[year]
		if !seen {
			acc = &yearAcc{}
			years[year] = acc
			order = append(order, year)
		}

		acc.startups++
		if record.FundingMUSD.Valid {
			acc.funding += record.FundingMUSD.Float64
		}
		if record.ValuationBUSD.Valid {
			acc.valuationSum += record.ValuationBUSD.Float64
			acc.valuationN++
		}
		if record.SuccessScore.Valid {
			acc.successSum += record.SuccessScore.Float64
			acc.successN++
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	stats := make([]YearStats, 0, len(order))
	for _, year := range order {
		acc := years[year]
		s := YearStats{
			Year:         int(year),
			Startups:     acc.startups,
			TotalFunding: acc.funding,
		}
		if acc.valuationN > 0 {
			s.AvgValuation = Defined(acc.valuationSum / float64(acc.valuationN))
		}
		if acc.successN > 0 {
			s.AvgSuccessScore = Defined(acc.successSum / float64(acc.successN))
		}
		stats = append(stats, s)
	}

	return stats
}

func nullIntToFloat(v sql.NullInt64) sql.NullFloat64 {
	if !v.Valid {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(v.Int64), Valid: true}
}
