package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_startups/ETL/ingest"
	"github.com/LilVoxy/coursework_startups/ETL/load"
	"github.com/LilVoxy/coursework_startups/ETL/normalize"
	"github.com/LilVoxy/coursework_startups/ETL/utils"
	"github.com/LilVoxy/coursework_startups/config"
	"github.com/LilVoxy/coursework_startups/database"
	"github.com/go-co-op/gocron"
	"github.com/google/subcommands"
)

// Pipeline связывает фазы ETL: Ingest → Normalize → Load.
// Фазы выполняются строго последовательно; сбой фазы останавливает
// конвейер, и оператору сообщается имя отказавшей фазы
type Pipeline struct {
	cfg    config.Config
	logger *utils.ETLLogger
}

// NewPipeline создает новый экземпляр Pipeline
func NewPipeline() *Pipeline {
	cfg := config.Load()
	return &Pipeline{
		cfg:    cfg,
		logger: utils.NewETLLogger(cfg.Debug),
	}
}

// Normalize выполняет фазы Ingest и Normalize и записывает
// промежуточный файл вместе со сжатым архивом.
// Возвращает число нормализованных записей
func (p *Pipeline) Normalize() (int, error) {
	ingestor := ingest.NewIngestor(p.logger)
	raw, err := ingestor.Ingest(p.cfg.RawPath)
	if err != nil {
		return 0, fmt.Errorf("фаза Ingest: %w", err)
	}

	normalizer := normalize.NewNormalizer(p.logger)
	records, err := normalizer.Normalize(raw)
	if err != nil {
		return 0, fmt.Errorf("фаза Normalize: %w", err)
	}

	if err := normalizer.WriteInterim(records, p.cfg.InterimPath); err != nil {
		return 0, fmt.Errorf("фаза Normalize: %w", err)
	}

	archivePath, err := load.ArchiveInterim(p.cfg.InterimPath, p.cfg.ArchiveDir)
	if err != nil {
		// Архив — артефакт для аудита; его отсутствие не должно
		// останавливать конвейер
		p.logger.Error("Не удалось записать архив промежуточного файла: %v", err)
	} else {
		p.logger.Info("Архив промежуточного файла: %s", archivePath)
	}

	return len(records), nil
}

// Load выполняет фазу Load: полное замещение таблицы фактов
// содержимым промежуточного файла
func (p *Pipeline) Load() error {
	db, err := database.Connect(p.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("фаза Load: %w", err)
	}
	defer db.Close()

	loader := load.NewLoader(db, p.logger)
	if _, err := loader.LoadFromInterim(p.cfg.InterimPath); err != nil {
		return fmt.Errorf("фаза Load: %w", err)
	}

	return nil
}

// Run выполняет полный ETL-процесс
func (p *Pipeline) Run() error {
	startTime := time.Now()
	p.logger.LogETLStart()

	records, err := p.Normalize()
	if err != nil {
		return err
	}
	if err := p.Load(); err != nil {
		return err
	}

	p.logger.LogETLComplete(startTime, records)

	return nil
}

// runCmd выполняет полный конвейер один раз
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "выполнить полный ETL-процесс один раз" }
func (*runCmd) Usage() string {
	return "run:\n\tЧтение исходного CSV, нормализация и загрузка в хранилище.\n"
}
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pipeline := NewPipeline()
	if err := pipeline.Run(); err != nil {
		pipeline.logger.Error("ETL-процесс остановлен: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// normalizeCmd выполняет только фазы Ingest и Normalize
type normalizeCmd struct{}

func (*normalizeCmd) Name() string { return "normalize" }
func (*normalizeCmd) Synopsis() string {
	return "прочитать исходный CSV и записать промежуточный файл без загрузки"
}
func (*normalizeCmd) Usage() string {
	return "normalize:\n\tФазы Ingest и Normalize без записи в хранилище.\n"
}
func (*normalizeCmd) SetFlags(*flag.FlagSet) {}

func (*normalizeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pipeline := NewPipeline()
	if _, err := pipeline.Normalize(); err != nil {
		pipeline.logger.Error("Нормализация остановлена: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadCmd выполняет только фазу Load из существующего промежуточного файла.
// Используется для повторной попытки после сбоя хранилища:
// промежуточный файл сохраняется при любой ошибке загрузки
type loadCmd struct{}

func (*loadCmd) Name() string     { return "load" }
func (*loadCmd) Synopsis() string { return "загрузить существующий промежуточный файл в хранилище" }
func (*loadCmd) Usage() string {
	return "load:\n\tПовторная загрузка из промежуточного файла без нормализации.\n"
}
func (*loadCmd) SetFlags(*flag.FlagSet) {}

func (*loadCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pipeline := NewPipeline()
	if err := pipeline.Load(); err != nil {
		pipeline.logger.Error("Загрузка остановлена: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// scheduleCmd запускает конвейер по расписанию до получения сигнала завершения
type scheduleCmd struct{}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "выполнять ETL-процесс по расписанию" }
func (*scheduleCmd) Usage() string {
	return "schedule:\n\tПериодический запуск конвейера с интервалом из конфигурации.\n"
}
func (*scheduleCmd) SetFlags(*flag.FlagSet) {}

func (*scheduleCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pipeline := NewPipeline()
	pipeline.logger.Info("Запуск планировщика ETL с интервалом %v", pipeline.cfg.ETLInterval)

	scheduler := gocron.NewScheduler(time.UTC)
	_, err := scheduler.Every(pipeline.cfg.ETLInterval).Do(func() {
		pipeline.logger.Info("Запланированный запуск ETL-процесса")
		if err := pipeline.Run(); err != nil {
			pipeline.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})
	if err != nil {
		pipeline.logger.Error("Ошибка при настройке планировщика: %v", err)
		return subcommands.ExitFailure
	}

	scheduler.StartAsync()

	// Ожидаем сигнал завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	scheduler.Stop()
	pipeline.logger.Info("Планировщик ETL остановлен")

	return subcommands.ExitSuccess
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&normalizeCmd{}, "")
	subcommands.Register(&loadCmd{}, "")
	subcommands.Register(&scheduleCmd{}, "")

	flag.Parse()

	log.SetFlags(log.LstdFlags)
	os.Exit(int(subcommands.Execute(context.Background())))
}
