// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_startups/cache"
	"github.com/LilVoxy/coursework_startups/config"
	"github.com/LilVoxy/coursework_startups/database"
	"github.com/LilVoxy/coursework_startups/routes"
	"github.com/LilVoxy/coursework_startups/websocket"
	"github.com/gorilla/mux"
)

func main() {
	fmt.Println("Запуск сервера дашборда...")

	// Конфигурация читается один раз при старте процесса
	cfg := config.Load()

	if cfg.Debug {
		log.Printf("Конфигурация: база=%s, адрес=%s, страна по умолчанию=%s",
			cfg.DBPath, cfg.HTTPAddr, cfg.DefaultCountry)
	}

	// Инициализация базы данных: единственное соединение на процесс,
	// передается по ссылке всем компонентам
	db, err := database.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("❌ Не удалось инициализировать базу данных: %v", err)
	}
	defer db.Close()

	// Кэш дорогих агрегаций с инвалидацией по времени
	queryCache := cache.New(cfg.CacheTTL)

	// Хаб уведомлений об обновлении данных
	hub := websocket.NewHub()
	go hub.Run()

	// Наблюдатель за отметкой last_updated
	watcher := websocket.StartRefreshWatcher(db, hub)

	// Создаем маршрутизатор
	router := mux.NewRouter()

	// Настраиваем CORS
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	// Регистрируем обработчики API отчетов
	routes.SetupRoutes(router, db, queryCache, hub)

	// Настраиваем сервер
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		log.Printf("✅ Сервер дашборда запущен на http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Ошибка запуска сервера: %v", err)
		}
	}()

	// Канал для сигналов завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Ожидаем сигнал завершения
	<-stop
	log.Println("⚠️ Получен сигнал завершения, закрываем соединения...")

	// Останавливаем наблюдатель обновлений
	watcher.Stop()

	// Закрываем соединение с базой данных
	if err := db.Close(); err != nil {
		log.Printf("❌ Ошибка закрытия соединения с БД: %v", err)
	} else {
		log.Println("✅ Соединение с БД закрыто")
	}

	log.Println("👋 Сервер остановлен")
}
