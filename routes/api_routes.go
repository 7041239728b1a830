// routes/api_routes.go
package routes

import (
	"database/sql"
	"net/http"

	"github.com/LilVoxy/coursework_startups/cache"
	"github.com/LilVoxy/coursework_startups/websocket"
	"github.com/gorilla/mux"
)

// SetupRoutes настраивает все маршруты API отчетов и WebSocket
func SetupRoutes(router *mux.Router, db *sql.DB, queryCache *cache.QueryCache, hub *websocket.Hub) {
	// WebSocket-канал уведомлений об обновлении данных
	router.HandleFunc("/ws", hub.HandleConnections)

	// Значения фильтров для боковой панели
	router.HandleFunc("/api/filters", FiltersHandler(db)).Methods("GET", "OPTIONS")

	// Скалярные показатели по отфильтрованной выборке
	router.HandleFunc("/api/kpis", KPIsHandler(db)).Methods("GET", "OPTIONS")

	// Сгруппированные таблицы для диаграмм
	router.HandleFunc("/api/reports/industries", TopIndustriesHandler(db, queryCache)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/reports/countries", TopCountriesHandler(db, queryCache)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/reports/funding-valuation", FundingValuationHandler(db)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/reports/acquisition-ipo", AcquisitionIPOHandler(db)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/reports/timeline", TimelineHandler(db)).Methods("GET", "OPTIONS")

	// Построчный обозреватель стартапов
	router.HandleFunc("/api/startups", StartupsHandler(db)).Methods("GET", "OPTIONS")

	// Служебные маршруты
	router.HandleFunc("/api/meta/last-updated", LastUpdatedHandler(db)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/cache/clear", ClearCacheHandler(queryCache)).Methods("POST", "OPTIONS")

	// Счетчик посещений дашборда
	router.HandleFunc("/api/visits", BumpVisitHandler(db)).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/visits", VisitsHandler(db)).Methods("GET")

	// Статические файлы
	router.PathPrefix("/").Handler(http.FileServer(http.Dir("public")))
}
