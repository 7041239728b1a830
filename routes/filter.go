// routes/filter.go
package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/LilVoxy/coursework_startups/analytics"
)

// parseFilter извлекает предикат фильтрации из параметров запроса:
// countries и industries — списки через запятую, year_from и year_to —
// включительные границы диапазона годов основания.
// Отсутствующий параметр означает отсутствие ограничения
func parseFilter(r *http.Request) (analytics.Filter, error) {
	query := r.URL.Query()

	filter := analytics.Filter{
		Countries:  splitParam(query.Get("countries")),
		Industries: splitParam(query.Get("industries")),
	}

	var err error
	if filter.YearFrom, err = intParam(query.Get("year_from")); err != nil {
		return filter, err
	}
	if filter.YearTo, err = intParam(query.Get("year_to")); err != nil {
		return filter, err
	}

	return filter, nil
}

// splitParam разбивает список значений через запятую, отбрасывая пустые
func splitParam(value string) []string {
	if value == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}

func intParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
