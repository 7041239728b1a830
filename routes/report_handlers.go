// routes/report_handlers.go
package routes

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/LilVoxy/coursework_startups/ETL/models"
	"github.com/LilVoxy/coursework_startups/analytics"
	"github.com/LilVoxy/coursework_startups/cache"
	"github.com/LilVoxy/coursework_startups/database"
)

// Имена кэшируемых запросов
const (
	queryTopIndustries = "top_industries"
	queryTopCountries  = "top_countries"
)

// KPIsResponse структура ответа API для скалярных показателей.
// Пустая отфильтрованная выборка — корректное состояние "нет данных",
// а не ошибка: показатели в этом случае не вычисляются
type KPIsResponse struct {
	Empty bool            `json:"empty"`
	KPIs  *analytics.KPIs `json:"kpis,omitempty"`
}

// FiltersHandler обрабатывает запросы на получение доступных значений фильтров
func FiltersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := database.Filters(db)
		if err != nil {
			log.Printf("❌ Ошибка при получении значений фильтров: %v", err)
			http.Error(w, "Ошибка при получении значений фильтров", http.StatusInternalServerError)
			return
		}

		writeJSON(w, options)
	}
}

// KPIsHandler обрабатывает запросы на расчет показателей
// по отфильтрованной выборке
func KPIsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			http.Error(w, "Неверный формат параметров фильтра", http.StatusBadRequest)
			return
		}

		dataset, err := analytics.LoadDataset(db)
		if err != nil {
			log.Printf("❌ Ошибка при загрузке таблицы фактов: %v", err)
			http.Error(w, "Ошибка при загрузке данных", http.StatusInternalServerError)
			return
		}

		filtered := dataset.Apply(filter)

		// Проверяем пустоту выборки до любых скалярных редукций
		if len(filtered) == 0 {
			writeJSON(w, KPIsResponse{Empty: true})
			return
		}

		kpis, err := analytics.CalculateKPIs(filtered)
		if err != nil {
			log.Printf("❌ Ошибка при расчете KPI: %v", err)
			http.Error(w, "Ошибка при расчете показателей", http.StatusInternalServerError)
			return
		}

		writeJSON(w, KPIsResponse{KPIs: kpis})
	}
}

// TopIndustriesHandler обрабатывает запросы на топ-10 отраслей
// по сумме финансирования (результат кэшируется)
func TopIndustriesHandler(db *sql.DB, queryCache *cache.QueryCache) http.HandlerFunc {
	return cachedGroupTotals(queryCache, queryTopIndustries, func() ([]database.GroupTotal, error) {
		return database.TopIndustries(db)
	})
}

// TopCountriesHandler обрабатывает запросы на топ-10 стран
// по сумме финансирования (результат кэшируется)
func TopCountriesHandler(db *sql.DB, queryCache *cache.QueryCache) http.HandlerFunc {
	return cachedGroupTotals(queryCache, queryTopCountries, func() ([]database.GroupTotal, error) {
		return database.TopCountries(db)
	})
}

// cachedGroupTotals оборачивает сгруппированный запрос кэшем
// с фиксированным временем жизни
func cachedGroupTotals(queryCache *cache.QueryCache, name string, load func() ([]database.GroupTotal, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Эти отчеты не зависят от фильтра, поэтому ключом служит
		// пустой предикат
		if rows, ok := queryCache.Get(name, analytics.Filter{}); ok {
			writeJSON(w, rows)
			return
		}

		rows, err := load()
		if err != nil {
			log.Printf("❌ Ошибка при выполнении запроса %s: %v", name, err)
			http.Error(w, "Ошибка при получении отчета", http.StatusInternalServerError)
			return
		}

		queryCache.Set(name, analytics.Filter{}, rows)
		writeJSON(w, rows)
	}
}

// FundingValuationHandler обрабатывает запросы на диаграмму
// "финансирование против оценки"
func FundingValuationHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		points, err := database.FundingVsValuation(db)
		if err != nil {
			log.Printf("❌ Ошибка при получении точек диаграммы: %v", err)
			http.Error(w, "Ошибка при получении отчета", http.StatusInternalServerError)
			return
		}

		writeJSON(w, points)
	}
}

// AcquisitionIPOHandler обрабатывает запросы на сводку поглощений и IPO
func AcquisitionIPOHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.AcquisitionIPO(db)
		if err != nil {
			log.Printf("❌ Ошибка при получении сводки поглощений и IPO: %v", err)
			http.Error(w, "Ошибка при получении отчета", http.StatusInternalServerError)
			return
		}

		writeJSON(w, stats)
	}
}

// TimelineHandler обрабатывает запросы на погодовые сводки
// по отфильтрованной выборке
func TimelineHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			http.Error(w, "Неверный формат параметров фильтра", http.StatusBadRequest)
			return
		}

		dataset, err := analytics.LoadDataset(db)
		if err != nil {
			log.Printf("❌ Ошибка при загрузке таблицы фактов: %v", err)
			http.Error(w, "Ошибка при загрузке данных", http.StatusInternalServerError)
			return
		}

		stats := analytics.Timeline(dataset.Apply(filter))
		if stats == nil {
			stats = []analytics.YearStats{}
		}

		writeJSON(w, stats)
	}
}

// StartupJSON структура одной записи для обозревателя стартапов
type StartupJSON struct {
	StartupID     string             `json:"startupId"`
	Name          string             `json:"name"`
	FoundedYear   *int64             `json:"foundedYear"`
	Country       *string            `json:"country"`
	Industry      *string            `json:"industry"`
	FundingStage  *string            `json:"fundingStage"`
	FundingMUSD   analytics.Nullable `json:"fundingMusd"`
	Employees     *int64             `json:"employees"`
	RevenueMUSD   analytics.Nullable `json:"revenueMusd"`
	ValuationBUSD analytics.Nullable `json:"valuationBusd"`
	SuccessScore  analytics.Nullable `json:"successScore"`
	Acquired      *int64             `json:"acquired"`
	IPO           *int64             `json:"ipo"`
	CustomersMil  analytics.Nullable `json:"customersMil"`
	TechStack     *string            `json:"techStack"`
	Followers     analytics.Nullable `json:"followers"`
}

// StartupsHandler обрабатывает запросы обозревателя: возвращает
// отфильтрованные записи таблицы фактов в порядке загрузки
func StartupsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			http.Error(w, "Неверный формат параметров фильтра", http.StatusBadRequest)
			return
		}

		dataset, err := analytics.LoadDataset(db)
		if err != nil {
			log.Printf("❌ Ошибка при загрузке таблицы фактов: %v", err)
			http.Error(w, "Ошибка при загрузке данных", http.StatusInternalServerError)
			return
		}

		filtered := dataset.Apply(filter)
		startups := make([]StartupJSON, 0, len(filtered))
		for _, record := range filtered {
			startups = append(startups, toStartupJSON(record))
		}

		writeJSON(w, startups)
	}
}

// LastUpdatedHandler обрабатывает запросы на отметку последнего обновления
func LastUpdatedHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := database.LastUpdated(db)
		if err != nil {
			log.Printf("❌ Ошибка при получении отметки last_updated: %v", err)
			http.Error(w, "Ошибка при получении метаданных", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]string{"lastUpdated": value})
	}
}

// ClearCacheHandler обрабатывает запрос оператора на очистку кэша
func ClearCacheHandler(queryCache *cache.QueryCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryCache.Clear()
		log.Println("✅ Кэш агрегаций очищен по запросу оператора")
		writeJSON(w, map[string]string{"status": "cleared"})
	}
}

// BumpVisitHandler увеличивает счетчик посещений за сегодня
func BumpVisitHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.BumpVisit(db); err != nil {
			log.Printf("❌ Ошибка при обновлении счетчика посещений: %v", err)
			http.Error(w, "Ошибка при обновлении счетчика посещений", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]string{"status": "ok"})
	}
}

// VisitsResponse структура ответа API для статистики посещений
type VisitsResponse struct {
	Total int                  `json:"total"`
	Trend []database.DayVisits `json:"trend"`
}

// VisitsHandler возвращает историю и сумму посещений дашборда
func VisitsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := database.TotalVisits(db)
		if err != nil {
			log.Printf("❌ Ошибка при получении суммы посещений: %v", err)
			http.Error(w, "Ошибка при получении статистики посещений", http.StatusInternalServerError)
			return
		}

		trend, err := database.VisitTrend(db)
		if err != nil {
			log.Printf("❌ Ошибка при получении истории посещений: %v", err)
			http.Error(w, "Ошибка при получении статистики посещений", http.StatusInternalServerError)
			return
		}

		writeJSON(w, VisitsResponse{Total: total, Trend: trend})
	}
}

// writeJSON кодирует и отправляет ответ в формате JSON
func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Ошибка при кодировании JSON: %v", err)
	}
}

// toStartupJSON переводит запись канонической схемы в формат ответа API
func toStartupJSON(r *models.StartupRecord) StartupJSON {
	return StartupJSON{
		StartupID:     r.StartupID,
		Name:          r.Name,
		FoundedYear:   nullInt(r.FoundedYear),
		Country:       nullStr(r.Country),
		Industry:      nullStr(r.Industry),
		FundingStage:  nullStr(r.FundingStage),
		FundingMUSD:   nullFloat(r.FundingMUSD),
		Employees:     nullInt(r.Employees),
		RevenueMUSD:   nullFloat(r.RevenueMUSD),
		ValuationBUSD: nullFloat(r.ValuationBUSD),
		SuccessScore:  nullFloat(r.SuccessScore),
		Acquired:      nullInt(r.Acquired),
		IPO:           nullInt(r.IPO),
		CustomersMil:  nullFloat(r.CustomersMil),
		TechStack:     nullStr(r.TechStack),
		Followers:     nullFloat(r.Followers),
	}
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) analytics.Nullable {
	if !v.Valid {
		return analytics.Nullable{}
	}
	return analytics.Defined(v.Float64)
}
