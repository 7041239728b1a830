package normalize

import (
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
)

// parseMagnitude разбирает числовое значение с возможным суффиксом величины:
// "1.5M" → 1500000, "250K" → 250000, "42" → 42.
// Суффиксы нечувствительны к регистру. Пустая строка означает NULL.
// Любое другое неразборчивое значение возвращает ok=false —
// молчаливое приведение к нулю здесь недопустимо
func parseMagnitude(value string) (result sql.NullFloat64, ok bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return sql.NullFloat64{}, true
	}

	// Определяем множитель по последнему символу
	shift := int32(0)
	switch trimmed[len(trimmed)-1] {
	case 'K', 'k':
		shift = 3
		trimmed = trimmed[:len(trimmed)-1]
	case 'M', 'm':
		shift = 6
		trimmed = trimmed[:len(trimmed)-1]
	}

	// Разбор через decimal исключает дрейф плавающей точки
	// при умножении на степень десяти
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return sql.NullFloat64{}, false
	}

	scaled, _ := parsed.Shift(shift).Float64()
	return sql.NullFloat64{Float64: scaled, Valid: true}, true
}
