// websocket/watcher.go
package websocket

import (
	"database/sql"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/LilVoxy/coursework_startups/database"
)

// refreshWatcher хранит последнюю виденную отметку last_updated
// между периодическими проверками
type refreshWatcher struct {
	db       *sql.DB
	hub      *Hub
	lastSeen string
}

// check перечитывает отметку last_updated и при изменении рассылает
// уведомление всем подключенным клиентам дашборда.
// Переход от отсутствующей отметки к первой загрузке — тоже изменение
func (w *refreshWatcher) check() {
	value, err := database.LastUpdated(w.db)
	if err != nil {
		log.Printf("❌ Ошибка при проверке отметки last_updated: %v", err)
		return
	}

	if value == "" || value == w.lastSeen {
		return
	}

	log.Printf("✅ Обнаружена новая загрузка данных: %s", value)
	w.hub.NotifyRefresh(value)
	w.lastSeen = value
}

// StartRefreshWatcher запускает наблюдение за отметкой last_updated:
// раз в минуту она перечитывается из хранилища, и при изменении всем
// подключенным клиентам дашборда рассылается уведомление.
// Стартовое состояние читается синхронно до запуска планировщика:
// что было в хранилище на момент старта сервера, уведомления не дает,
// а первая же последующая загрузка дает — в том числе в свежую базу
// без единой отметки.
// Возвращает планировщик, чтобы вызывающая сторона могла остановить
// наблюдение при завершении процесса
func StartRefreshWatcher(db *sql.DB, hub *Hub) *gocron.Scheduler {
	watcher := &refreshWatcher{db: db, hub: hub}

	value, err := database.LastUpdated(db)
	if err != nil {
		log.Printf("❌ Ошибка при чтении стартовой отметки last_updated: %v", err)
	} else {
		watcher.lastSeen = value
	}

	scheduler := gocron.NewScheduler(time.UTC)

	if _, err := scheduler.Every(1).Minute().Do(watcher.check); err != nil {
		log.Printf("❌ Ошибка при настройке наблюдателя обновлений: %v", err)
		return scheduler
	}

	scheduler.StartAsync()

	return scheduler
}
