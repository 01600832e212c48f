package compare

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func dp(v string) *decimal.Decimal {
	x := d(v)
	return &x
}

func flatSystem(code, currency, rate string) domain.TaxSystem {
	return domain.TaxSystem{
		CountryCode:  code,
		DisplayName:  strings.ToUpper(code) + " Flat",
		CurrencyCode: currency,
		PrimaryTaxType: domain.TaxType{
			Name:     domain.TaxTypeIncomeTax,
			Brackets: []domain.TaxBracket{{Min: d("0"), Rate: d(rate)}},
		},
	}
}

func newTestEngine(t *testing.T) *CompareEngine {
	t.Helper()
	zz := domain.TaxSystem{
		CountryCode:       "zz",
		DisplayName:       "Testland",
		CurrencyCode:      "USD",
		StandardDeduction: domain.StandardDeductions{Single: d("1000"), Married: d("2000")},
		PrimaryTaxType: domain.TaxType{
			Name: domain.TaxTypeIncomeTax,
			Brackets: []domain.TaxBracket{
				{Min: d("0"), Max: dp("9999"), Rate: d("0.1")},
				{Min: d("10000"), Rate: d("0.2")},
			},
		},
		RegionalTax: map[string]domain.RegionalTaxInfo{
			"north": {RegionCode: "north", Rate: dp("0.05")},
		},
	}
	c := catalog.New(zz, flatSystem("yy", "USD", "0.1"), flatSystem("ff", "EUR", "0.25"))
	if len(c.Problems()) != 0 {
		t.Fatalf("unexpected catalog problems: %v", c.Problems())
	}
	return NewCompareEngine(calculation.NewEngine(c))
}

func defaultOptions() CompareOptions {
	return CompareOptions{
		Base:         Target{Country: "zz", Region: "north"},
		Alternatives: []Target{{Country: "yy"}, {Country: "ff"}},
		GrossIncome:  d("16000"),
		FilingStatus: domain.FilingSingle,
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"us", Target{Country: "us"}, false},
		{"US/CA", Target{Country: "us", Region: "ca"}, false},
		{" gb / sct ", Target{Country: "gb", Region: "sct"}, false},
		{"/ca", Target{}, true},
		{"", Target{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if s := (Target{Country: "us", Region: "ca"}).String(); s != "us/ca" {
		t.Errorf("expected us/ca, got %s", s)
	}
}

func TestCompareEngine_Compare(t *testing.T) {
	ce := newTestEngine(t)

	compSet, err := ce.Compare(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	base := compSet.BaseResult
	if base == nil {
		t.Fatal("expected base result")
	}
	if !base.TotalTax.Equal(d("2750")) {
		t.Errorf("expected base total tax 2750, got %s", base.TotalTax)
	}
	if !base.Deductions.Equal(d("1000")) {
		t.Errorf("expected standard deduction 1000, got %s", base.Deductions)
	}
	if !base.EffectiveRatePercent.Equal(d("17.1875")) {
		t.Errorf("expected effective 17.1875, got %s", base.EffectiveRatePercent)
	}

	if len(compSet.AlternativeResults) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(compSet.AlternativeResults))
	}

	yy := compSet.AlternativeResults[0]
	if yy.Name != "yy" {
		t.Errorf("alternatives must keep input order, got %s first", yy.Name)
	}
	if !yy.TotalTax.Equal(d("1600")) {
		t.Errorf("expected yy tax 1600, got %s", yy.TotalTax)
	}
	if !yy.SameCurrencyAsBase || !yy.TaxDiffFromBase.Equal(d("-1150")) {
		t.Errorf("expected yy tax diff -1150, got %s (same currency %v)", yy.TaxDiffFromBase, yy.SameCurrencyAsBase)
	}

	ff := compSet.AlternativeResults[1]
	if ff.SameCurrencyAsBase {
		t.Error("EUR result must not be compared in USD")
	}
	if !ff.TaxDiffFromBase.IsZero() {
		t.Errorf("expected no tax diff across currencies, got %s", ff.TaxDiffFromBase)
	}
	if !ff.EffectiveDiffFromBase.Equal(d("7.8125")) {
		t.Errorf("expected effective diff 7.8125, got %s", ff.EffectiveDiffFromBase)
	}

	if len(compSet.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %v", compSet.Recommendations)
	}
	if !strings.Contains(compSet.Recommendations[2], "saves $1,150.00") {
		t.Errorf("unexpected tax recommendation: %s", compSet.Recommendations[2])
	}
}

func TestCompareEngine_ExplicitDeductions(t *testing.T) {
	ce := newTestEngine(t)
	opts := defaultOptions()
	opts.Deductions = dp("6000")
	opts.Alternatives = nil

	compSet, err := ce.Compare(context.Background(), opts)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	// taxable 10000 sits on the second bracket's Min and stays in the first
	if !compSet.BaseResult.MarginalRatePercent.Equal(d("10")) {
		t.Errorf("expected marginal 10, got %s", compSet.BaseResult.MarginalRatePercent)
	}
	if len(compSet.Recommendations) != 0 {
		t.Errorf("expected no recommendations without alternatives, got %v", compSet.Recommendations)
	}
}

func TestCompareEngine_Errors(t *testing.T) {
	ce := newTestEngine(t)

	opts := defaultOptions()
	opts.Alternatives = []Target{{Country: "nowhere"}}
	_, err := ce.Compare(context.Background(), opts)
	if !errors.Is(err, domain.ErrUnknownJurisdiction) {
		t.Errorf("expected unknown jurisdiction, got %v", err)
	}

	opts = defaultOptions()
	opts.Filter = entitlement.NewStaticFilter([]string{"zz", "yy"})
	_, err = ce.Compare(context.Background(), opts)
	var notEntitled *entitlement.NotEntitledError
	if !errors.As(err, &notEntitled) || notEntitled.CountryCode != "ff" {
		t.Errorf("expected ff to be rejected, got %v", err)
	}

	opts = defaultOptions()
	opts.GrossIncome = d("-1")
	if _, err := ce.Compare(context.Background(), opts); err == nil {
		t.Error("expected error for negative income")
	}

	opts = defaultOptions()
	opts.Deductions = dp("-5")
	if _, err := ce.Compare(context.Background(), opts); err == nil {
		t.Error("expected error for negative deductions")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ce.Compare(ctx, defaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCompareEngine_ConcurrencyLimit(t *testing.T) {
	ce := newTestEngine(t)
	opts := defaultOptions()
	opts.Concurrency = 1

	compSet, err := ce.Compare(context.Background(), opts)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(compSet.All()) != 3 {
		t.Errorf("expected 3 results, got %d", len(compSet.All()))
	}
}

func TestGenerateRecommendations_NoBetterThanBase(t *testing.T) {
	base := &ComparisonResult{Name: "base", Currency: "USD", EffectiveRatePercent: d("5"), MarginalRatePercent: d("5")}
	alt := ComparisonResult{Name: "alt", Currency: "USD", EffectiveRatePercent: d("6"), MarginalRatePercent: d("7"),
		SameCurrencyAsBase: true, TaxDiffFromBase: d("100")}

	recs := GenerateRecommendations(&ComparisonSet{BaseResult: base, AlternativeResults: []ComparisonResult{alt}})
	if len(recs) != 0 {
		t.Errorf("expected no recommendations, got %v", recs)
	}
}

func TestFormatters(t *testing.T) {
	ce := newTestEngine(t)
	compSet, err := ce.Compare(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	table := (&TableFormatter{}).Format(compSet)
	for _, want := range []string{"JURISDICTION COMPARISON", "zz/north (base)", "$2,750.00", "RECOMMENDATIONS", "n/a (EUR vs USD)"} {
		if !strings.Contains(table, want) {
			t.Errorf("table output missing %q", want)
		}
	}

	compact := (&TableFormatter{}).FormatCompact(compSet)
	if compact != "zz/north: 17.19% | yy: 10.00% | ff: 25.00%" {
		t.Errorf("unexpected compact output: %s", compact)
	}

	csvOut, err := (&CSVFormatter{}).Format(compSet)
	if err != nil {
		t.Fatalf("CSV format failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Testland,base,zz,north,USD") {
		t.Errorf("unexpected base row: %s", lines[1])
	}

	jsonOut, err := (&JSONFormatter{Pretty: true}).Format(compSet)
	if err != nil {
		t.Fatalf("JSON format failed: %v", err)
	}
	if !strings.Contains(jsonOut, "\"alternativeResults\"") || strings.Contains(jsonOut, "\"Result\"") {
		t.Errorf("unexpected JSON output: %s", jsonOut)
	}
}
