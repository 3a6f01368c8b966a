package importer

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAnalyze(t *testing.T) {
	csvData := `Date,Amount,Description,Category
2026-01-10,1250.00,Grocery store,food
2026-01-11,42.50,Coffee,
2026-01-12,bad,Broken row,misc
`

	analyzer := NewAnalyzer(100)

	analysis, err := analyzer.Analyze(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if analysis.Mapping.Date != 0 || analysis.Mapping.Amount != 1 {
		t.Fatalf("unexpected mapping: %+v", analysis.Mapping)
	}
	if analysis.ValidRows != 2 {
		t.Errorf("valid rows = %d, want 2", analysis.ValidRows)
	}
	if analysis.ErrorRows != 1 {
		t.Errorf("error rows = %d, want 1", analysis.ErrorRows)
	}

	first := analysis.Rows[0]
	if first.AmountCents != 125000 {
		t.Errorf("amount = %d, want 125000", first.AmountCents)
	}
	if first.SpentOn.Format("2006-01-02") != "2026-01-10" {
		t.Errorf("date = %s, want 2026-01-10", first.SpentOn.Format("2006-01-02"))
	}
	if first.Category != "food" {
		t.Errorf("category = %q, want \"food\"", first.Category)
	}

	broken := analysis.Rows[2]
	if broken.Error == "" {
		t.Error("expected parse error on third row")
	}
}

func TestAnalyzeMarksDuplicates(t *testing.T) {
	csvData := `date,amount,description
2026-02-01,100.00,Rent
2026-02-02,15.00,Lunch
`

	spentOn := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	existing := map[string]struct{}{
		duplicateKey(spentOn, 10000): {},
	}

	analysis, err := NewAnalyzer(100).Analyze(strings.NewReader(csvData), existing)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if analysis.Duplicates != 1 {
		t.Fatalf("duplicates = %d, want 1", analysis.Duplicates)
	}
	if !analysis.Rows[0].IsDuplicate {
		t.Error("first row should be flagged as duplicate")
	}
	if analysis.Rows[1].IsDuplicate {
		t.Error("second row should not be flagged")
	}
}

func TestAnalyzeHeaderAliases(t *testing.T) {
	csvData := "Дата,Сумма,Описание,Категория\n02.03.2026,\"1 500,75\",Магазин,еда\n"

	analysis, err := NewAnalyzer(100).Analyze(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	row := analysis.Rows[0]
	if row.Error != "" {
		t.Fatalf("row error: %s", row.Error)
	}
	if row.AmountCents != 150075 {
		t.Errorf("amount = %d, want 150075", row.AmountCents)
	}
	if row.SpentOn.Format("2006-01-02") != "2026-03-02" {
		t.Errorf("date = %s, want 2026-03-02", row.SpentOn.Format("2006-01-02"))
	}
}

func TestAnalyzeNoHeader(t *testing.T) {
	csvData := "foo,bar\n1,2\n"

	_, err := NewAnalyzer(100).Analyze(strings.NewReader(csvData), nil)
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("err = %v, want ErrNoHeader", err)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := NewAnalyzer(100).Analyze(strings.NewReader(""), nil)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}

	_, err = NewAnalyzer(100).Analyze(strings.NewReader("date,amount\n"), nil)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}
}

func TestAnalyzeRowLimit(t *testing.T) {
	csvData := `date,amount
2026-01-01,1.00
2026-01-02,2.00
2026-01-03,3.00
`

	_, err := NewAnalyzer(2).Analyze(strings.NewReader(csvData), nil)
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("err = %v, want ErrTooManyRows", err)
	}
}

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10", 1000},
		{"10.5", 1050},
		{"10.55", 1055},
		{"10.555", 1056},
		{"10.554", 1055},
		{"-99.99", 9999},
		{"1.234,56", 123456},
		{"0.01", 1},
	}

	for _, tc := range cases {
		got, err := ParseAmountCents(tc.in)
		if err != nil {
			t.Errorf("ParseAmountCents(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAmountCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "abc", "1.2.3.4", "0", "-0.00"} {
		if _, err := ParseAmountCents(bad); err == nil {
			t.Errorf("ParseAmountCents(%q) expected error", bad)
		}
	}
}
