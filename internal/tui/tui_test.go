package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func dp(v string) *decimal.Decimal {
	x := d(v)
	return &x
}

func testCatalog() *catalog.Catalog {
	zz := domain.TaxSystem{
		CountryCode:  "zz",
		DisplayName:  "Testland",
		CurrencyCode: "USD",
		StandardDeduction: domain.StandardDeductions{
			Single:  d("1000"),
			Married: d("2000"),
		},
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
	yy := domain.TaxSystem{
		CountryCode:  "yy",
		DisplayName:  "Flatland",
		CurrencyCode: "EUR",
		StandardDeduction: domain.StandardDeductions{
			Single:  d("0"),
			Married: d("0"),
		},
		PrimaryTaxType: domain.TaxType{
			Name:     domain.TaxTypeIncomeTax,
			Brackets: []domain.TaxBracket{{Min: d("0"), Rate: d("0.1")}},
		},
	}
	return catalog.New(zz, yy)
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Country == "" {
		opts.Country = "zz"
	}
	m, err := NewModel(testCatalog(), opts)
	require.NoError(t, err)
	return m
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press feeds one message through Update
func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

// typeText clears the focused input and types s into it
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = press(t, m, keyMsg(tea.KeyCtrlU))
	m, _ = press(t, m, runes(s))
	return m
}

// settle runs a calculation command, if any, and feeds its message back
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg, ok := cmd().(CalculationCompleteMsg)
	require.True(t, ok, "expected a calculation command")
	m, _ = press(t, m, msg)
	return m
}

func calculate(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := press(t, m, keyMsg(tea.KeyEnter))
	return settle(t, m, cmd)
}

// focus tabs forward until f has focus
func focus(t *testing.T, m Model, f Field) Model {
	t.Helper()
	for i := 0; m.Focused() != f; i++ {
		require.Less(t, i, int(fieldCount))
		m, _ = press(t, m, keyMsg(tea.KeyTab))
	}
	return m
}

func TestNewModel_Defaults(t *testing.T) {
	m := newTestModel(t, Options{})

	assert.Equal(t, FieldGross, m.Focused())
	assert.Equal(t, domain.FilingSingle, m.FilingStatus())
	assert.Equal(t, "zz", m.Value(FieldCountry))
	assert.Equal(t, "1000", m.Value(FieldDeductions), "standard deduction is pre-filled")
	_, ok := m.Result()
	assert.False(t, ok)
}

func TestNewModel_Errors(t *testing.T) {
	_, err := NewModel(testCatalog(), Options{Country: "xx"})
	assert.True(t, errors.Is(err, domain.ErrUnknownJurisdiction))

	_, err = NewModel(testCatalog(), Options{Country: "yy", Filter: entitlement.NewStaticFilter([]string{"zz"})})
	var notEntitled *entitlement.NotEntitledError
	assert.True(t, errors.As(err, &notEntitled))
}

func TestCalculate_WithRegion(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "16,000")
	m = focus(t, m, FieldRegion)
	m = typeText(t, m, "North")
	m = calculate(t, m)

	require.NoError(t, m.Err())
	res, ok := m.Result()
	require.True(t, ok)
	assert.True(t, res.TaxableIncome.Equal(d("15000")))
	assert.True(t, res.NationalTax.Equal(d("2000")), "national = %s", res.NationalTax)
	assert.True(t, res.RegionalTax.Equal(d("750")))
	assert.True(t, res.TotalTax.Equal(d("2750")))
	assert.True(t, res.MarginalRatePercent.Equal(d("20")))
	assert.Equal(t, "north", m.Value(FieldRegion))
	assert.Len(t, m.breakdown, 2)

	view := m.View()
	assert.Contains(t, view, "$2,750.00")
	assert.Contains(t, view, "Bracket Breakdown")
	assert.Contains(t, view, "$10,000.00 and up")
}

func TestCalculate_Memoized(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000"})
	m = calculate(t, m)
	assert.Equal(t, 1, m.MemoSize())

	m, cmd := press(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd, "repeat calculation is served from the memo")
	assert.Equal(t, 1, m.MemoSize())

	// same amount spelled differently shares the entry
	m = typeText(t, m, "16000.00")
	_, cmd = press(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
}

func TestCalculate_NoGrossIncome(t *testing.T) {
	m := newTestModel(t, Options{})
	m, cmd := press(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.NoError(t, m.Err())
	assert.Contains(t, m.View(), "enter a gross income")
}

func TestCalculate_InvalidAmounts(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "-5")
	m, cmd := press(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
	require.Error(t, m.Err())
	assert.Contains(t, m.Err().Error(), "must not be negative")

	m = typeText(t, m, "abc")
	m, _ = press(t, m, keyMsg(tea.KeyEnter))
	require.Error(t, m.Err())
	assert.Contains(t, m.Err().Error(), "is not a number")
}

func TestToggleStatus_FollowsStandardDeduction(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000"})
	m = calculate(t, m)

	m, cmd := press(t, m, keyMsg(tea.KeyCtrlS))
	assert.Equal(t, domain.FilingMarried, m.FilingStatus())
	assert.Equal(t, "2000", m.Value(FieldDeductions))
	m = settle(t, m, cmd)

	res, _ := m.Result()
	assert.True(t, res.TaxableIncome.Equal(d("14000")))
	assert.True(t, res.TotalTax.Equal(d("1800")), "total = %s", res.TotalTax)
}

func TestToggleStatus_BeforeCalculation(t *testing.T) {
	m := newTestModel(t, Options{})
	m, cmd := press(t, m, keyMsg(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Equal(t, "2000", m.Value(FieldDeductions))
}

func TestCustomDeductions_SurviveToggleUntilReset(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000"})
	m = focus(t, m, FieldDeductions)
	m = typeText(t, m, "500")
	m = calculate(t, m)

	res, _ := m.Result()
	assert.True(t, res.TaxableIncome.Equal(d("15500")))
	assert.Contains(t, m.View(), "(custom)")

	m, cmd := press(t, m, keyMsg(tea.KeyCtrlS))
	m = settle(t, m, cmd)
	assert.Equal(t, "500", m.Value(FieldDeductions))
	res, _ = m.Result()
	assert.True(t, res.TaxableIncome.Equal(d("15500")))

	m, cmd = press(t, m, keyMsg(tea.KeyCtrlR))
	m = settle(t, m, cmd)
	assert.Equal(t, "2000", m.Value(FieldDeductions))
	res, _ = m.Result()
	assert.True(t, res.TaxableIncome.Equal(d("14000")))
}

func TestTypedDeductions_SurviveToggleBeforeEnter(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000"})
	m = focus(t, m, FieldDeductions)
	m = typeText(t, m, "500")

	m, cmd := press(t, m, keyMsg(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Equal(t, domain.FilingMarried, m.FilingStatus())
	assert.Equal(t, "500", m.Value(FieldDeductions))

	m = calculate(t, m)
	res, _ := m.Result()
	assert.True(t, res.TaxableIncome.Equal(d("15500")), "taxable = %s", res.TaxableIncome)

	m, cmd = press(t, m, keyMsg(tea.KeyCtrlR))
	m = settle(t, m, cmd)
	assert.Equal(t, "2000", m.Value(FieldDeductions))
}

func TestTypedDeductions_InvalidBlocksToggle(t *testing.T) {
	m := newTestModel(t, Options{})
	m = focus(t, m, FieldDeductions)
	m = typeText(t, m, "abc")

	m, _ = press(t, m, keyMsg(tea.KeyCtrlS))
	require.Error(t, m.Err())
	assert.Equal(t, domain.FilingSingle, m.FilingStatus())
	assert.Equal(t, "abc", m.Value(FieldDeductions))
}

func TestTypedDeductions_SurviveCountryChangeBeforeEnter(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "1000"})
	m = focus(t, m, FieldDeductions)
	m = typeText(t, m, "500")
	m = focus(t, m, FieldCountry)
	m = typeText(t, m, "yy")
	m, _ = press(t, m, keyMsg(tea.KeyTab))

	require.NoError(t, m.Err())
	assert.Equal(t, "yy", m.Value(FieldCountry))
	assert.Equal(t, "500", m.Value(FieldDeductions))

	m = calculate(t, m)
	res, _ := m.Result()
	assert.True(t, res.TaxableIncome.Equal(d("500")), "taxable = %s", res.TaxableIncome)
	assert.True(t, res.TotalTax.Equal(d("50")))
}

func TestClearedDeductions_RevertToStandard(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000"})
	m = focus(t, m, FieldDeductions)
	m = typeText(t, m, "500")
	m = calculate(t, m)

	m, _ = press(t, m, keyMsg(tea.KeyCtrlU))
	m = calculate(t, m)
	assert.Equal(t, "1000", m.Value(FieldDeductions))
	res, _ := m.Result()
	assert.True(t, res.TaxableIncome.Equal(d("15000")))
}

func TestCountryChange(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "1000"})
	m = focus(t, m, FieldCountry)
	m = typeText(t, m, "YY")
	m, _ = press(t, m, keyMsg(tea.KeyTab))

	require.NoError(t, m.Err())
	assert.Equal(t, "yy", m.Value(FieldCountry))
	assert.Equal(t, "0", m.Value(FieldDeductions), "deductions follow the new jurisdiction")

	m = calculate(t, m)
	res, _ := m.Result()
	assert.Equal(t, "EUR", res.CurrencyCode)
	assert.True(t, res.TotalTax.Equal(d("100")))
}

func TestCountryChange_Unknown(t *testing.T) {
	m := newTestModel(t, Options{})
	m = focus(t, m, FieldCountry)
	m = typeText(t, m, "xx")
	m, _ = press(t, m, keyMsg(tea.KeyTab))

	assert.True(t, errors.Is(m.Err(), domain.ErrUnknownJurisdiction))
	assert.Contains(t, m.View(), "Testland", "previous jurisdiction stays selected")
}

func TestCountryChange_NotEntitled(t *testing.T) {
	m := newTestModel(t, Options{Filter: entitlement.NewStaticFilter([]string{"zz"})})
	m = focus(t, m, FieldCountry)
	m = typeText(t, m, "yy")
	m, _ = press(t, m, keyMsg(tea.KeyTab))

	var notEntitled *entitlement.NotEntitledError
	assert.True(t, errors.As(m.Err(), &notEntitled))
}

func TestUnknownRegion_ZeroRegionalTax(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000", Region: "south"})
	m = calculate(t, m)

	res, _ := m.Result()
	assert.True(t, res.RegionalTax.IsZero())
	assert.Contains(t, m.View(), `unknown region "south"`)
}

func TestFocusCycles(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = press(t, m, keyMsg(tea.KeyShiftTab))
	assert.Equal(t, FieldDeductions, m.Focused())
	m, _ = press(t, m, keyMsg(tea.KeyTab))
	assert.Equal(t, FieldGross, m.Focused())
}

func TestStaleResultIgnored(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000"})
	m, first := press(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, first)

	m = typeText(t, m, "500")
	m, second := press(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, second)

	m = settle(t, m, second)
	m = settle(t, m, first)

	res, _ := m.Result()
	assert.True(t, res.GrossIncome.Equal(d("500")))
	assert.Equal(t, 2, m.MemoSize())
}

func TestStaleErrorIgnored(t *testing.T) {
	m := newTestModel(t, Options{GrossIncome: "16000"})
	m, cmd := press(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)

	stale := CalculationCompleteMsg{Key: memoKey{Country: "zz", Gross: "1"}, Err: errors.New("engine failed")}
	m, _ = press(t, m, stale)
	assert.NoError(t, m.Err())

	m = settle(t, m, cmd)
	_, ok := m.Result()
	assert.True(t, ok)

	m = typeText(t, m, "500")
	m, cmd = press(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	current, ok := cmd().(CalculationCompleteMsg)
	require.True(t, ok)
	current.Err = errors.New("engine failed")
	m, _ = press(t, m, current)
	assert.EqualError(t, m.Err(), "engine failed")
}

func TestQuitAndHelp(t *testing.T) {
	m := newTestModel(t, Options{})

	m, cmd := press(t, m, keyMsg(tea.KeyF1))
	assert.Nil(t, cmd)
	assert.True(t, m.help.ShowAll)

	_, cmd = press(t, m, keyMsg(tea.KeyEsc))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestWindowSize(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 120, m.help.Width)
}
