package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
// Все значения читаются один раз при старте процесса из окружения
// (файл .env подхватывается, если присутствует)
type Config struct {
	// Путь к файлу базы данных SQLite
	DBPath string

	// Путь к исходному CSV с данными о стартапах
	RawPath string

	// Путь к промежуточному (нормализованному) CSV
	InterimPath string

	// Каталог для сжатых архивов промежуточных файлов
	ArchiveDir string

	// Адрес HTTP-сервера дашборда
	HTTPAddr string

	// Страна по умолчанию для отображения
	DefaultCountry string

	// Включение подробного логирования
	Debug bool

	// Интервал запуска ETL в режиме планировщика
	ETLInterval time.Duration

	// Время жизни кэша агрегаций
	CacheTTL time.Duration
}

// Значения конфигурации по умолчанию
var defaultConfig = Config{
	DBPath:         "db/funding.db",
	RawPath:        "data/raw/global_startup_success_dataset.csv",
	InterimPath:    "data/interim/startups_clean.csv",
	ArchiveDir:     "data/archive",
	HTTPAddr:       ":8080",
	DefaultCountry: "Global",
	Debug:          false,
	ETLInterval:    24 * time.Hour,
	CacheTTL:       6 * time.Hour,
}

// Load читает конфигурацию из окружения
func Load() Config {
	// Подхватываем .env, если он есть (его отсутствие не является ошибкой)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Файл .env не загружен: %v", err)
	}

	cfg := defaultConfig

	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.RawPath = getEnv("RAW_PATH", cfg.RawPath)
	cfg.InterimPath = getEnv("INTERIM_PATH", cfg.InterimPath)
	cfg.ArchiveDir = getEnv("ARCHIVE_DIR", cfg.ArchiveDir)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DefaultCountry = getEnv("DEFAULT_COUNTRY", cfg.DefaultCountry)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)
	cfg.ETLInterval = getEnvHours("ETL_INTERVAL_HOURS", cfg.ETLInterval)
	cfg.CacheTTL = getEnvHours("CACHE_TTL_HOURS", cfg.CacheTTL)

	return cfg
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvBool читает булеву переменную окружения ("true"/"1" — истина)
func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️ Неверное значение %s=%q, используется значение по умолчанию", key, value)
		return fallback
	}
	return parsed
}

// getEnvHours читает длительность в часах из переменной окружения
func getEnvHours(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	hours, err := strconv.Atoi(value)
	if err != nil || hours <= 0 {
		log.Printf("⚠️ Неверное значение %s=%q, используется значение по умолчанию", key, value)
		return fallback
	}
	return time.Duration(hours) * time.Hour
}
