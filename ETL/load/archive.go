package load

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
)

// ArchiveInterim сохраняет сжатую копию промежуточного файла в каталоге
// архива. Архив служит артефактом для аудита и повторной загрузки:
// при сбое фазы Load и промежуточный файл, и его архив остаются на месте
func ArchiveInterim(interimPath, archiveDir string) (string, error) {
	data, err := os.ReadFile(interimPath)
	if err != nil {
		return "", fmt.Errorf("ошибка при чтении промежуточного файла для архива: %w", err)
	}

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("ошибка при создании каталога архива: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("startups_clean_%s.csv.snappy", stamp))

	compressed := snappy.Encode(nil, data)
	if err := os.WriteFile(archivePath, compressed, 0644); err != nil {
		return "", fmt.Errorf("ошибка при записи архива: %w", err)
	}

	return archivePath, nil
}

// ReadArchive распаковывает ранее сохраненный архив промежуточного файла
func ReadArchive(archivePath string) ([]byte, error) {
	compressed, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении архива: %w", err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("ошибка при распаковке архива: %w", err)
	}

	return data, nil
}
