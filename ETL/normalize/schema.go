package normalize

// renameMap задает соответствие исходных имен колонок каноническим.
// Все перечисленные исходные колонки обязаны присутствовать во входных
// данных; колонки вне этой таблицы отбрасываются
var renameMap = map[string]string{
	"Startup Name":             "name",
	"Founded Year":             "founded_year",
	"Country":                  "country",
	"Industry":                 "industry",
	"Funding Stage":            "funding_stage",
	"Total Funding ($M)":       "funding_musd",
	"Number of Employees":      "employees",
	"Annual Revenue ($M)":      "revenue_musd",
	"Valuation ($B)":           "valuation_busd",
	"Success Score":            "success_score",
	"Acquired?":                "acquired",
	"IPO?":                     "ipo",
	"Customer Base (Millions)": "customers_mil",
	"Tech Stack":               "tech_stack",
	"Social Media Followers":   "followers",
}

// sourceColumns возвращает упорядоченный по заголовку индекс канонических
// колонок: canonical name → позиция в исходной строке
type columnIndex map[string]int

// indexColumns сопоставляет заголовок исходного CSV канонической схеме.
// Возвращает индекс позиций, список отсутствующих обязательных колонок
// и список неожиданных (отбрасываемых) колонок — все за один проход
func indexColumns(header []string) (columnIndex, []string, []string) {
	index := make(columnIndex, len(renameMap))
	var unexpected []string

	for pos, source := range header {
		canonical, ok := renameMap[source]
		if !ok {
			unexpected = append(unexpected, source)
			continue
		}
		index[canonical] = pos
	}

	var missing []string
	for _, source := range sourceOrder {
		canonical := renameMap[source]
		if _, ok := index[canonical]; !ok {
			missing = append(missing, canonical)
		}
	}

	return index, missing, unexpected
}

// sourceOrder фиксирует порядок исходных колонок для детерминированных
// сообщений об ошибках схемы
var sourceOrder = []string{
	"Startup Name",
	"Founded Year",
	"Country",
	"Industry",
	"Funding Stage",
	"Total Funding ($M)",
	"Number of Employees",
	"Annual Revenue ($M)",
	"Valuation ($B)",
	"Success Score",
	"Acquired?",
	"IPO?",
	"Customer Base (Millions)",
	"Tech Stack",
	"Social Media Followers",
}
