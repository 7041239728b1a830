package analytics

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrUndefinedReduction возвращается при попытке скалярной редукции
// (например, "страна с максимальным финансированием") над пустой выборкой.
// Вызывающая сторона обязана проверить выборку до вызова
var ErrUndefinedReduction = errors.New("скалярная редукция не определена для пустой выборки")

// Filter представляет предикат фильтрации таблицы фактов:
// множества стран и отраслей и включительный диапазон годов основания.
// Пустое множество и нулевая граница означают отсутствие ограничения
type Filter struct {
	Countries  []string
	Industries []string
	YearFrom   int
	YearTo     int
}

// Canonical возвращает каноническое строковое представление фильтра.
// Порядок элементов множеств не влияет на результат — представление
// используется как ключ кэша
func (f Filter) Canonical() string {
	countries := append([]string(nil), f.Countries...)
	industries := append([]string(nil), f.Industries...)
	sort.Strings(countries)
	sort.Strings(industries)

	return strings.Join([]string{
		strings.Join(countries, ","),
		strings.Join(industries, ","),
		strconv.Itoa(f.YearFrom),
		strconv.Itoa(f.YearTo),
	}, "|")
}

// Nullable представляет вещественную метрику, которая может быть
// не определена (NULL в хранилище или деление на ноль)
type Nullable struct {
	Value float64
	Valid bool
}

// Defined создает определенное значение метрики
func Defined(value float64) Nullable {
	return Nullable{Value: value, Valid: true}
}

// MarshalJSON сериализует неопределенную метрику как null
func (n Nullable) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON восстанавливает метрику из числа или null
func (n *Nullable) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Nullable{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// GroupedRow представляет одну строку сгруппированной таблицы:
// значение ключа группировки и числовую сводку по группе
type GroupedRow struct {
	Key   string   `json:"key"`
	Value Nullable `json:"value"`
	Count int      `json:"count"`
}

// YearStats представляет сводку по одному году основания
// для страницы трендов
type YearStats struct {
	Year            int      `json:"year"`
	Startups        int      `json:"startups"`
	TotalFunding    float64  `json:"totalFunding"`
	AvgValuation    Nullable `json:"avgValuation"`
	AvgSuccessScore Nullable `json:"avgSuccessScore"`
}

// KPIs представляет набор именованных скалярных показателей дашборда.
// Правило вычисления каждого показателя зафиксировано в kpis.go
type KPIs struct {
	TotalStartups           int      `json:"totalStartups"`
	TotalFundingMUSD        float64  `json:"totalFundingMusd"`
	AvgFundingMUSD          Nullable `json:"avgFundingMusd"`
	AvgValuationBUSD        Nullable `json:"avgValuationBusd"`
	AvgRevenueMUSD          Nullable `json:"avgRevenueMusd"`
	AvgEmployees            Nullable `json:"avgEmployees"`
	IPOPct                  Nullable `json:"ipoPct"`
	AcquiredPct             Nullable `json:"acquiredPct"`
	AvgSuccessScore         Nullable `json:"avgSuccessScore"`
	AvgCustomersMil         Nullable `json:"avgCustomersMil"`
	TopCountry              string   `json:"topCountry"`
	TopIndustry             string   `json:"topIndustry"`
	MedianFundingMUSD       Nullable `json:"medianFundingMusd"`
	ValuationFundingRatio   Nullable `json:"valuationFundingRatio"`
	TopTechStack            string   `json:"topTechStack"`
	HighestSuccessStartup   string   `json:"highestSuccessStartup"`
	AvgFundingPerEmployee   Nullable `json:"avgFundingPerEmployee"`
	TotalFollowersMil       float64  `json:"totalFollowersMil"`
	AvgValuationPerEmployee Nullable `json:"avgValuationPerEmployee"`
}
