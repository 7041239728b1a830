// database/visits.go
package database

import (
	"database/sql"
	"fmt"
	"time"
)

// DayVisits представляет число посещений дашборда за один день
type DayVisits struct {
	Day    string `json:"day"`
	Visits int    `json:"visits"`
}

// BumpVisit увеличивает счетчик посещений за сегодняшний день
func BumpVisit(db *sql.DB) error {
	today := time.Now().UTC().Format("2006-01-02")

	_, err := db.Exec(`
		INSERT INTO visits (day, visits) VALUES (?, 1)
		ON CONFLICT(day) DO UPDATE SET visits = visits + 1
	`, today)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика посещений: %w", err)
	}

	return nil
}

// VisitTrend возвращает историю посещений по дням
func VisitTrend(db *sql.DB) ([]DayVisits, error) {
	rows, err := db.Query("SELECT day, visits FROM visits ORDER BY day")
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе истории посещений: %w", err)
	}
	defer rows.Close()

	trend := []DayVisits{}
	for rows.Next() {
		var d DayVisits
		if err := rows.Scan(&d.Day, &d.Visits); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании посещений: %w", err)
		}
		trend = append(trend, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по посещениям: %w", err)
	}

	return trend, nil
}

// TotalVisits возвращает суммарное число посещений за все время
func TotalVisits(db *sql.DB) (int, error) {
	var total sql.NullInt64
	if err := db.QueryRow("SELECT SUM(visits) FROM visits").Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка при запросе суммы посещений: %w", err)
	}
	return int(total.Int64), nil
}
