package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/LilVoxy/coursework_startups/ETL/models"
	"github.com/LilVoxy/coursework_startups/ETL/utils"
)

// Ingestor отвечает за чтение исходного CSV в память
type Ingestor struct {
	logger *utils.ETLLogger
}

// NewIngestor создает новый экземпляр Ingestor
func NewIngestor(logger *utils.ETLLogger) *Ingestor {
	return &Ingestor{logger: logger}
}

// Ingest читает исходный CSV по указанному пути.
// Никаких преобразований на этой фазе не выполняется: колонки результата
// в точности совпадают с заголовком исходного файла
func (i *Ingestor) Ingest(path string) (*models.RawTable, error) {
	startTime := time.Now()
	i.logger.LogIngestStart(path)

	// Проверяем наличие файла до открытия, чтобы отличить отсутствие
	// исходных данных от прочих ошибок ввода-вывода
	if _, err := os.Stat(path); os.IsNotExist(err) {
		i.logger.Error("Исходный файл не найден: %s", path)
		return nil, fmt.Errorf("%w: %s", models.ErrMissingSourceFile, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии исходного файла: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении исходного CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("исходный CSV пуст: %s", path)
	}

	table := &models.RawTable{
		Header: records[0],
		Rows:   records[1:],
	}

	i.logger.LogIngestComplete(len(table.Rows), len(table.Header), time.Since(startTime))

	return table, nil
}
