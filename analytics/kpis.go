package analytics

import (
	"fmt"
	"sort"
)

// CalculateKPIs вычисляет полный набор скалярных показателей по выборке.
// Пустая выборка — нарушение контракта вызывающей стороны: часть
// показателей (Top Country, Highest Success Startup) не определена,
// поэтому вызов обязан быть защищен проверкой на пустоту.
//
// Правила вычисления:
//   - Total Startups        — число записей в выборке;
//   - Total Funding ($M)    — сумма funding_musd;
//   - Avg *                 — средние с пропуском NULL-значений;
//   - IPO % / Acquired %    — 100 × среднее флага 0/1;
//   - Top Country/Industry  — ключ с максимальной суммой funding_musd;
//   - Median Funding ($M)   — медиана funding_musd (среднее двух средних
//     значений при четном количестве);
//   - Valuation / Funding   — сумма valuation_busd / сумма funding_musd;
//   - Top Tech Stack        — мода tech_stack ("N/A", если колонка пуста);
//   - Highest Success       — имя стартапа с максимальным success_score;
//   - Avg Funding per Employee — сумма funding_musd / сумма employees;
//   - Total Followers (M)   — сумма followers / 1 000 000;
//   - Avg Valuation / Employee — сумма valuation_busd × 1000 / сумма employees.
//
// Отношения с нулевым знаменателем дают неопределенное значение (null)
func CalculateKPIs(d Dataset) (*KPIs, error) {
	if len(d) == 0 {
		return nil, fmt.Errorf("%w: расчет KPI", ErrUndefinedReduction)
	}

	kpis := &KPIs{
		TotalStartups: len(d),
	}

	fundingSum, _ := sumMetric(d, MetricFunding)
	kpis.TotalFundingMUSD = fundingSum
	kpis.AvgFundingMUSD = meanMetric(d, MetricFunding)
	kpis.AvgValuationBUSD = meanMetric(d, MetricValuation)
	kpis.AvgRevenueMUSD = meanMetric(d, MetricRevenue)
	kpis.AvgEmployees = meanMetric(d, MetricEmployees)
	kpis.AvgSuccessScore = meanMetric(d, MetricSuccessScore)
	kpis.AvgCustomersMil = meanMetric(d, MetricCustomers)
	kpis.IPOPct = scale(meanMetric(d, MetricIPO), 100)
	kpis.AcquiredPct = scale(meanMetric(d, MetricAcquired), 100)

	topCountry, err := ArgMaxSum(d, GroupCountry, MetricFunding)
	if err != nil {
		return nil, err
	}
	kpis.TopCountry = topCountry

	topIndustry, err := ArgMaxSum(d, GroupIndustry, MetricFunding)
	if err != nil {
		return nil, err
	}
	kpis.TopIndustry = topIndustry

	kpis.MedianFundingMUSD = medianMetric(d, MetricFunding)

	valuationSum, _ := sumMetric(d, MetricValuation)
	kpis.ValuationFundingRatio = Ratio(valuationSum, fundingSum)

	kpis.TopTechStack = topTechStack(d)

	highest, err := highestSuccessStartup(d)
	if err != nil {
		return nil, err
	}
	kpis.HighestSuccessStartup = highest

	employeesSum, _ := sumMetric(d, MetricEmployees)
	kpis.AvgFundingPerEmployee = Ratio(fundingSum, employeesSum)
	kpis.AvgValuationPerEmployee = Ratio(valuationSum*1000, employeesSum)

	followersSum, _ := sumMetric(d, MetricFollowers)
	kpis.TotalFollowersMil = followersSum / 1_000_000

	return kpis, nil
}

// sumMetric возвращает сумму метрики и число ненулевых значений
func sumMetric(d Dataset, m Metric) (float64, int) {
	var sum float64
	var n int
	for _, record := range d {
		if v := metricValue(record, m); v.Valid {
			sum += v.Float64
			n++
		}
	}
	return sum, n
}

// meanMetric возвращает среднее метрики с пропуском NULL-значений.
// Если ненулевых значений нет, среднее не определено
func meanMetric(d Dataset, m Metric) Nullable {
	sum, n := sumMetric(d, m)
	if n == 0 {
		return Nullable{}
	}
	return Defined(sum / float64(n))
}

// medianMetric возвращает медиану метрики по ненулевым значениям
func medianMetric(d Dataset, m Metric) Nullable {
	var values []float64
	for _, record := range d {
		if v := metricValue(record, m); v.Valid {
			values = append(values, v.Float64)
		}
	}
	if len(values) == 0 {
		return Nullable{}
	}

	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return Defined(values[mid])
	}
	return Defined((values[mid-1] + values[mid]) / 2)
}

// topTechStack возвращает моду колонки tech_stack.
// Ничьи разрешаются в пользу лексикографически меньшего значения;
// полностью пустая колонка дает "N/A"
func topTechStack(d Dataset) string {
	counts := make(map[string]int)
	for _, record := range d {
		if record.TechStack.Valid {
			counts[record.TechStack.String]++
		}
	}
	if len(counts) == 0 {
		return "N/A"
	}

	best := ""
	bestCount := 0
	for stack, count := range counts {
		if count > bestCount || (count == bestCount && stack < best) {
			best = stack
			bestCount = count
		}
	}

	return best
}

// highestSuccessStartup возвращает имя стартапа с максимальным
// success_score; ничья разрешается в пользу первой встреченной записи
func highestSuccessStartup(d Dataset) (string, error) {
	var best string
	bestScore := 0.0
	found := false

	for _, record := range d {
		if !record.SuccessScore.Valid {
			continue
		}
		if !found || record.SuccessScore.Float64 > bestScore {
			best = record.Name
			bestScore = record.SuccessScore.Float64
			found = true
		}
	}

	if !found {
		return "", fmt.Errorf("%w: максимум success_score", ErrUndefinedReduction)
	}

	return best, nil
}

// scale умножает определенную метрику на множитель
func scale(n Nullable, factor float64) Nullable {
	if !n.Valid {
		return n
	}
	return Defined(n.Value * factor)
}
