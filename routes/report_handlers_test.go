// routes/report_handlers_test.go
package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/coursework_startups/ETL/load"
	"github.com/LilVoxy/coursework_startups/cache"
	"github.com/LilVoxy/coursework_startups/database"
)

// newTestDB создает базу во временном каталоге и наполняет ее
// сквозным сценарием из трех стартапов
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "funding.db"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(load.Schema); err != nil {
		t.Fatalf("Schema: %v", err)
	}

	rows := []struct {
		id, name, country, industry string
		year                        int
		funding                     float64
	}{
		{"id-1", "Acme", "US", "AI", 2020, 10},
		{"id-2", "Beta", "US", "Fintech", 2021, 20},
		{"id-3", "Gamma", "IN", "AI", 2020, 5},
	}
	for _, r := range rows {
		_, err := db.Exec(`
			INSERT INTO startups (startup_id, name, country, industry, founded_year, funding_musd, success_score)
			VALUES (?, ?, ?, ?, ?, ?, 5.0)
		`, r.id, r.name, r.country, r.industry, r.year, r.funding)
		if err != nil {
			t.Fatalf("INSERT: %v", err)
		}
	}

	return db
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestKPIsHandlerFilteredScenario(t *testing.T) {
	db := newTestDB(t)

	recorder := doRequest(t, KPIsHandler(db), "GET", "/api/kpis?countries=US&year_from=2020&year_to=2021")
	if recorder.Code != http.StatusOK {
		t.Fatalf("код ответа %d: %s", recorder.Code, recorder.Body.String())
	}

	var response KPIsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}

	if response.Empty || response.KPIs == nil {
		t.Fatalf("ожидались показатели, получено %s", recorder.Body.String())
	}
	if response.KPIs.TotalStartups != 2 {
		t.Errorf("Total Startups = %d", response.KPIs.TotalStartups)
	}
	if response.KPIs.TotalFundingMUSD != 30 {
		t.Errorf("Total Funding = %v", response.KPIs.TotalFundingMUSD)
	}
}

func TestKPIsHandlerEmptyFilter(t *testing.T) {
	db := newTestDB(t)

	// Страна без совпадений — корректное состояние "нет данных", а не 500
	recorder := doRequest(t, KPIsHandler(db), "GET", "/api/kpis?countries=DE")
	if recorder.Code != http.StatusOK {
		t.Fatalf("код ответа %d: %s", recorder.Code, recorder.Body.String())
	}

	var response KPIsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if !response.Empty || response.KPIs != nil {
		t.Errorf("ожидалось состояние empty, получено %s", recorder.Body.String())
	}
}

func TestKPIsHandlerBadYearParam(t *testing.T) {
	db := newTestDB(t)

	recorder := doRequest(t, KPIsHandler(db), "GET", "/api/kpis?year_from=abc")
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("код ответа %d, ожидался 400", recorder.Code)
	}
}

func TestTopCountriesHandlerUsesCache(t *testing.T) {
	db := newTestDB(t)
	queryCache := cache.New(time.Hour)
	handler := TopCountriesHandler(db, queryCache)

	recorder := doRequest(t, handler, "GET", "/api/reports/countries")
	if recorder.Code != http.StatusOK {
		t.Fatalf("код ответа %d", recorder.Code)
	}

	var first []database.GroupTotal
	if err := json.Unmarshal(recorder.Body.Bytes(), &first); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if len(first) != 2 || first[0].Key != "US" || first[0].Total != 30 {
		t.Fatalf("неожиданный топ стран: %v", first)
	}

	// Меняем данные под кэшем: повторный запрос обязан вернуть
	// прежний результат до истечения срока или явной очистки
	if _, err := db.Exec("DELETE FROM startups"); err != nil {
		t.Fatal(err)
	}

	recorder = doRequest(t, handler, "GET", "/api/reports/countries")
	var second []database.GroupTotal
	if err := json.Unmarshal(recorder.Body.Bytes(), &second); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if len(second) != 2 {
		t.Errorf("кэш не сработал: %v", second)
	}

	// После очистки кэша данные перечитываются
	doRequest(t, ClearCacheHandler(queryCache), "POST", "/api/cache/clear")

	recorder = doRequest(t, handler, "GET", "/api/reports/countries")
	var third []database.GroupTotal
	if err := json.Unmarshal(recorder.Body.Bytes(), &third); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if len(third) != 0 {
		t.Errorf("после очистки кэша ожидался пустой отчет: %v", third)
	}
}

func TestFiltersHandler(t *testing.T) {
	db := newTestDB(t)

	recorder := doRequest(t, FiltersHandler(db), "GET", "/api/filters")
	if recorder.Code != http.StatusOK {
		t.Fatalf("код ответа %d", recorder.Code)
	}

	var options database.FilterOptions
	if err := json.Unmarshal(recorder.Body.Bytes(), &options); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}

	if len(options.Countries) != 2 || options.Countries[0] != "IN" || options.Countries[1] != "US" {
		t.Errorf("страны: %v", options.Countries)
	}
	if options.MinYear != 2020 || options.MaxYear != 2021 {
		t.Errorf("диапазон годов: %d–%d", options.MinYear, options.MaxYear)
	}
}

func TestVisitsHandlers(t *testing.T) {
	db := newTestDB(t)

	doRequest(t, BumpVisitHandler(db), "POST", "/api/visits")
	doRequest(t, BumpVisitHandler(db), "POST", "/api/visits")

	recorder := doRequest(t, VisitsHandler(db), "GET", "/api/visits")
	if recorder.Code != http.StatusOK {
		t.Fatalf("код ответа %d", recorder.Code)
	}

	var response VisitsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if response.Total != 2 {
		t.Errorf("сумма посещений = %d", response.Total)
	}
	if len(response.Trend) != 1 || response.Trend[0].Visits != 2 {
		t.Errorf("история посещений: %v", response.Trend)
	}
}

func TestStartupsHandler(t *testing.T) {
	db := newTestDB(t)

	recorder := doRequest(t, StartupsHandler(db), "GET", "/api/startups?industries=AI")
	if recorder.Code != http.StatusOK {
		t.Fatalf("код ответа %d", recorder.Code)
	}

	var startups []StartupJSON
	if err := json.Unmarshal(recorder.Body.Bytes(), &startups); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if len(startups) != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", len(startups))
	}
	if startups[0].Name != "Acme" || startups[1].Name != "Gamma" {
		t.Errorf("порядок записей: %v, %v", startups[0].Name, startups[1].Name)
	}
	// NULL-метрики сериализуются как null
	if startups[0].ValuationBUSD.Valid {
		t.Error("пустая оценка обязана остаться неопределенной")
	}
}

func TestEmptyStoreSerializesAsLists(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Exec("DELETE FROM startups"); err != nil {
		t.Fatal(err)
	}

	// Все табличные отчеты над пустым хранилищем отдают [], а не null:
	// слой диаграмм рассчитывает на единую форму ответа
	reports := []struct {
		name    string
		handler http.HandlerFunc
		target  string
	}{
		{"industries", TopIndustriesHandler(db, cache.New(time.Hour)), "/api/reports/industries"},
		{"countries", TopCountriesHandler(db, cache.New(time.Hour)), "/api/reports/countries"},
		{"funding-valuation", FundingValuationHandler(db), "/api/reports/funding-valuation"},
		{"timeline", TimelineHandler(db), "/api/reports/timeline"},
		{"startups", StartupsHandler(db), "/api/startups"},
	}

	for _, tc := range reports {
		recorder := doRequest(t, tc.handler, "GET", tc.target)
		if recorder.Code != http.StatusOK {
			t.Errorf("%s: код ответа %d", tc.name, recorder.Code)
			continue
		}
		if body := strings.TrimSpace(recorder.Body.String()); body != "[]" {
			t.Errorf("%s: тело ответа %q, ожидалось []", tc.name, body)
		}
	}

	// Вложенные списки тоже остаются списками
	recorder := doRequest(t, FiltersHandler(db), "GET", "/api/filters")
	if !strings.Contains(recorder.Body.String(), `"countries":[]`) ||
		!strings.Contains(recorder.Body.String(), `"industries":[]`) {
		t.Errorf("значения фильтров: %s", recorder.Body.String())
	}

	recorder = doRequest(t, VisitsHandler(db), "GET", "/api/visits")
	if !strings.Contains(recorder.Body.String(), `"trend":[]`) {
		t.Errorf("история посещений: %s", recorder.Body.String())
	}
}
