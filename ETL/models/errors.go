package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSourceFile возвращается, когда исходный CSV-файл отсутствует
var ErrMissingSourceFile = errors.New("исходный CSV-файл не найден")

// SchemaError описывает несоответствие схемы исходных данных.
// Собирает полный список отсутствующих обязательных колонок и
// неожиданных колонок за один проход, а не по одной
type SchemaError struct {
	Missing    []string
	Unexpected []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("отсутствуют обязательные колонки: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("неожиданные колонки: %s", strings.Join(e.Unexpected, ", ")))
	}
	return "несоответствие схемы: " + strings.Join(parts, "; ")
}

// MalformedMagnitudeError описывает значение с суффиксом величины,
// которое не удалось разобрать
type MalformedMagnitudeError struct {
	Row    int
	Column string
	Value  string
}

func (e *MalformedMagnitudeError) Error() string {
	return fmt.Sprintf("неразборчивое значение %q в колонке %s (строка %d)", e.Value, e.Column, e.Row)
}

// LoadError описывает ошибку фазы загрузки в хранилище
type LoadError struct {
	Stage string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ошибка загрузки на этапе %q: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
