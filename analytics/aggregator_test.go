package analytics

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/LilVoxy/coursework_startups/ETL/models"
)

// rec собирает запись с основными полями для тестов агрегации
func rec(name, country, industry string, year int, funding float64) *models.StartupRecord {
	return &models.StartupRecord{
		StartupID:   name,
		Name:        name,
		Country:     sql.NullString{String: country, Valid: country != ""},
		Industry:    sql.NullString{String: industry, Valid: industry != ""},
		FoundedYear: sql.NullInt64{Int64: int64(year), Valid: year != 0},
		FundingMUSD: sql.NullFloat64{Float64: funding, Valid: true},
	}
}

// scenario воспроизводит сквозной сценарий из трех записей
func scenario() Dataset {
	return Dataset{
		rec("Acme", "US", "AI", 2020, 10),
		rec("Beta", "US", "Fintech", 2021, 20),
		rec("Gamma", "IN", "AI", 2020, 5),
	}
}

func TestApplyFilterScenario(t *testing.T) {
	d := scenario()

	filtered := d.Apply(Filter{
		Countries: []string{"US"},
		YearFrom:  2020,
		YearTo:    2021,
	})

	if len(filtered) != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", len(filtered))
	}

	sum, _ := sumMetric(filtered, MetricFunding)
	if sum != 30 {
		t.Errorf("сумма финансирования по US: ожидалось 30, получено %v", sum)
	}
}

func TestApplyEmptyFilterResultIsValid(t *testing.T) {
	d := scenario()

	// Страна без совпадений дает пустую выборку, а не ошибку
	filtered := d.Apply(Filter{Countries: []string{"DE"}})
	if len(filtered) != 0 {
		t.Fatalf("ожидалась пустая выборка, получено %d записей", len(filtered))
	}

	// Групповые агрегации над пустой выборкой возвращают пустой результат
	if rows := GroupSum(filtered, GroupCountry, MetricFunding); len(rows) != 0 {
		t.Errorf("GroupSum над пустой выборкой: %v", rows)
	}
	if rows := TopN(filtered, GroupCountry, MetricFunding, 10); len(rows) != 0 {
		t.Errorf("TopN над пустой выборкой: %v", rows)
	}

	// Скалярная редукция над пустой выборкой не определена
	if _, err := ArgMaxSum(filtered, GroupCountry, MetricFunding); !errors.Is(err, ErrUndefinedReduction) {
		t.Errorf("ожидался ErrUndefinedReduction, получено %v", err)
	}
}

func TestTopCountryUnfiltered(t *testing.T) {
	d := scenario()

	top, err := ArgMaxSum(d, GroupCountry, MetricFunding)
	if err != nil {
		t.Fatalf("ArgMaxSum: %v", err)
	}
	// US: 10+20=30 против IN: 5
	if top != "US" {
		t.Errorf("ожидалась US, получено %q", top)
	}
}

func TestGroupSumPreservesFirstSeenOrder(t *testing.T) {
	d := scenario()

	rows := GroupSum(d, GroupIndustry, MetricFunding)
	if len(rows) != 2 {
		t.Fatalf("ожидалось 2 группы, получено %d", len(rows))
	}
	if rows[0].Key != "AI" || rows[1].Key != "Fintech" {
		t.Errorf("порядок групп не соответствует порядку первого появления: %v", rows)
	}
	if rows[0].Value.Value != 15 || rows[1].Value.Value != 20 {
		t.Errorf("неверные суммы: %v", rows)
	}
}

func TestTopNTieBreakIsFirstSeen(t *testing.T) {
	// Две группы с равными суммами: ничья разрешается порядком
	// первого появления, детерминированно
	d := Dataset{
		rec("A", "US", "AI", 2020, 10),
		rec("B", "IN", "Fintech", 2020, 10),
		rec("C", "DE", "Health", 2020, 5),
	}

	rows := TopN(d, GroupCountry, MetricFunding, 2)
	if len(rows) != 2 {
		t.Fatalf("ожидалось 2 группы, получено %d", len(rows))
	}
	if rows[0].Key != "US" || rows[1].Key != "IN" {
		t.Errorf("ничья разрешена недетерминированно: %v", rows)
	}
}

func TestGroupMeanSkipsNulls(t *testing.T) {
	withNull := rec("Delta", "US", "AI", 2020, 0)
	withNull.FundingMUSD = sql.NullFloat64{}

	d := Dataset{
		rec("Acme", "US", "AI", 2020, 10),
		withNull,
	}

	rows := GroupMean(d, GroupCountry, MetricFunding)
	if len(rows) != 1 {
		t.Fatalf("ожидалась 1 группа, получено %d", len(rows))
	}
	// NULL не участвует в среднем: 10/1, а не 10/2
	if !rows[0].Value.Valid || rows[0].Value.Value != 10 {
		t.Errorf("среднее с пропуском NULL: %v", rows[0].Value)
	}
	if rows[0].Count != 2 {
		t.Errorf("размер группы обязан учитывать все записи: %d", rows[0].Count)
	}
}

func TestRatioGuard(t *testing.T) {
	if r := Ratio(10, 0); r.Valid {
		t.Errorf("деление на ноль обязано давать неопределенность, получено %v", r.Value)
	}
	if r := Ratio(10, 4); !r.Valid || r.Value != 2.5 {
		t.Errorf("Ratio(10, 4) = %v", r)
	}
}

func TestTimeline(t *testing.T) {
	d := scenario()

	stats := Timeline(d)
	if len(stats) != 2 {
		t.Fatalf("ожидалось 2 года, получено %d", len(stats))
	}
	if stats[0].Year != 2020 || stats[1].Year != 2021 {
		t.Errorf("годы не отсортированы: %v", stats)
	}
	if stats[0].Startups != 2 || stats[0].TotalFunding != 15 {
		t.Errorf("сводка за 2020 неверна: %+v", stats[0])
	}
}

func TestFilterCanonicalOrderIndependent(t *testing.T) {
	a := Filter{Countries: []string{"US", "IN"}, Industries: []string{"AI"}, YearFrom: 2020, YearTo: 2021}
	b := Filter{Countries: []string{"IN", "US"}, Industries: []string{"AI"}, YearFrom: 2020, YearTo: 2021}

	if a.Canonical() != b.Canonical() {
		t.Errorf("каноническое представление зависит от порядка множеств: %q != %q", a.Canonical(), b.Canonical())
	}

	c := Filter{Countries: []string{"US"}}
	if a.Canonical() == c.Canonical() {
		t.Error("различные фильтры дали одинаковое представление")
	}
}
