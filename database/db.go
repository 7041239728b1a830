// database/db.go
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Connect открывает соединение с базой данных SQLite по указанному пути.
// Соединение создается один раз при старте процесса и передается по ссылке
// всем компонентам, которым оно нужно (Loader, Aggregator, обработчики API)
func Connect(path string) (*sql.DB, error) {
	// Создаем каталог для файла базы данных, если его еще нет
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("ошибка при создании каталога базы данных: %w", err)
		}
	}

	// WAL-журнал позволяет читателям не блокировать друг друга,
	// busy_timeout защищает от гонки с оффлайн-загрузкой ETL
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии базы данных: %w", err)
	}

	// Настройка параметров подключения
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой данных: %w", err)
	}

	return db, nil
}
