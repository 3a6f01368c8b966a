// Package importer разбирает CSV-выписки: определяет колонки, готовит
// предпросмотр строк и помечает вероятные дубликаты. Записью расходов
// занимается репозиторий, здесь только анализ.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyFile   = errors.New("file has no data rows")
	ErrNoHeader    = errors.New("header row not recognized")
	ErrTooManyRows = errors.New("too many rows")
)

// ColumnMapping хранит индексы распознанных колонок в CSV. Значение -1
// означает, что колонка не найдена.
type ColumnMapping struct {
	Date        int `json:"date"`
	Amount      int `json:"amount"`
	Description int `json:"description"`
	Category    int `json:"category"`
}

// Row представляет разобранную строку выписки.
type Row struct {
	Line        int       `json:"line"`
	SpentOn     time.Time `json:"spent_on"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsDuplicate bool      `json:"is_duplicate"`
	Error       string    `json:"error,omitempty"`
}

// Analysis содержит результат разбора файла: маппинг колонок, строки и счетчики.
type Analysis struct {
	Mapping    ColumnMapping `json:"mapping"`
	Rows       []Row         `json:"rows"`
	ValidRows  int           `json:"valid_rows"`
	ErrorRows  int           `json:"error_rows"`
	Duplicates int           `json:"duplicates"`
}

type Analyzer struct {
	maxRows int
}

// NewAnalyzer создает анализатор с ограничением на число строк.
func NewAnalyzer(maxRows int) *Analyzer {
	return &Analyzer{maxRows: maxRows}
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "01/02/2006", "2006/01/02"}

var columnAliases = map[string][]string{
	"date":        {"date", "дата", "posted", "transaction date"},
	"amount":      {"amount", "сумма", "value", "debit"},
	"description": {"description", "описание", "memo", "details", "назначение"},
	"category":    {"category", "категория", "type"},
}

// Analyze читает CSV, распознает колонки по заголовку и разбирает строки.
// duplicateKeys содержит ключи уже существующих расходов: совпавшие строки
// помечаются дубликатами, но из результата не выбрасываются.
func (a *Analyzer) Analyze(r io.Reader, duplicateKeys map[string]struct{}) (Analysis, error) {
	var analysis Analysis

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return analysis, ErrEmptyFile
		}
		return analysis, fmt.Errorf("read header: %w", err)
	}

	mapping, err := detectColumns(header)
	if err != nil {
		return analysis, err
	}
	analysis.Mapping = mapping

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return analysis, fmt.Errorf("read line %d: %w", line+1, err)
		}

		line++
		if len(analysis.Rows) >= a.maxRows {
			return analysis, ErrTooManyRows
		}

		row := parseRow(line, record, mapping)
		if row.Error == "" {
			key := duplicateKey(row.SpentOn, row.AmountCents)
			if _, exists := duplicateKeys[key]; exists {
				row.IsDuplicate = true
				analysis.Duplicates++
			}
			analysis.ValidRows++
		} else {
			analysis.ErrorRows++
		}

		analysis.Rows = append(analysis.Rows, row)
	}

	if len(analysis.Rows) == 0 {
		return analysis, ErrEmptyFile
	}

	return analysis, nil
}

func detectColumns(header []string) (ColumnMapping, error) {
	mapping := ColumnMapping{Date: -1, Amount: -1, Description: -1, Category: -1}

	for idx, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))

		switch {
		case mapping.Date == -1 && matchesAlias("date", normalized):
			mapping.Date = idx
		case mapping.Amount == -1 && matchesAlias("amount", normalized):
			mapping.Amount = idx
		case mapping.Description == -1 && matchesAlias("description", normalized):
			mapping.Description = idx
		case mapping.Category == -1 && matchesAlias("category", normalized):
			mapping.Category = idx
		}
	}

	if mapping.Date == -1 || mapping.Amount == -1 {
		return mapping, ErrNoHeader
	}

	return mapping, nil
}

func matchesAlias(kind, normalized string) bool {
	for _, alias := range columnAliases[kind] {
		if normalized == alias || strings.HasPrefix(normalized, alias+" ") {
			return true
		}
	}
	return false
}

func parseRow(line int, record []string, mapping ColumnMapping) Row {
	row := Row{Line: line}

	spentOn, err := parseDate(field(record, mapping.Date))
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.SpentOn = spentOn

	amountCents, err := ParseAmountCents(field(record, mapping.Amount))
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.AmountCents = amountCents

	row.Description = strings.TrimSpace(field(record, mapping.Description))
	row.Category = strings.TrimSpace(field(record, mapping.Category))

	return row
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", trimmed)
}

// ParseAmountCents разбирает денежную сумму в центы. Принимает точку и
// запятую как десятичный разделитель, третий знак округляется half-up.
// Знак минус допускается и отбрасывается: выписки пишут траты с минусом.
func ParseAmountCents(value string) (int64, error) {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return 0, errors.New("empty amount")
	}

	// В записях вида "1.234,56" точка служит разделителем тысяч.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	parts := strings.SplitN(s, ".", 3)
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount %q", value)
	}

	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}

	const maxSafe = (1<<63 - 1) / 100
	if whole > maxSafe {
		return 0, fmt.Errorf("amount %q too large", value)
	}

	var fracCents int64
	for i, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", value)
		}
		switch i {
		case 0:
			fracCents = int64(r-'0') * 10
		case 1:
			fracCents += int64(r - '0')
		case 2:
			if r >= '5' {
				fracCents++
			}
		}
	}

	cents := whole*100 + fracCents
	if cents <= 0 {
		return 0, fmt.Errorf("amount %q must be positive", value)
	}

	return cents, nil
}

func duplicateKey(spentOn time.Time, amountCents int64) string {
	return spentOn.Format("2006-01-02") + "|" + strconv.FormatInt(amountCents, 10)
}
