package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
)

// Options seeds the calculator form
type Options struct {
	Country      string
	Region       string
	FilingStatus domain.FilingStatus
	GrossIncome  string
	Filter       entitlement.Filter
	Logger       calculation.Logger
}

// memoKey identifies one computation. Decimals are keyed by their canonical
// string so that "1000" and "1000.00" share an entry.
type memoKey struct {
	Country    string
	Region     string
	Status     domain.FilingStatus
	Gross      string
	Deductions string
}

// Model represents the entire application state
type Model struct {
	// Terminal dimensions
	width  int
	height int

	catalog *catalog.Catalog
	filter  entitlement.Filter
	engine  *calculation.Engine
	form    *calculation.DeductionForm

	inputs []textinput.Model
	focus  Field
	keys   KeyMap
	help   help.Model

	// deductionsEdited is set once the user types into the deductions field
	deductionsEdited bool

	memo      map[memoKey]domain.TaxCalculationResult
	pending   *memoKey
	result    *domain.TaxCalculationResult
	breakdown []calculation.BracketSlice

	err  error
	info string
}

// NewModel creates the calculator for the given catalog
func NewModel(c *catalog.Catalog, opts Options) (Model, error) {
	country := catalog.NormalizeCode(opts.Country)
	if err := entitlement.Check(opts.Filter, country); err != nil {
		return Model{}, err
	}
	status := opts.FilingStatus
	if status == "" {
		status = domain.FilingSingle
	}

	form, err := calculation.NewDeductionForm(c, country, status)
	if err != nil {
		return Model{}, err
	}

	engine := calculation.NewEngine(c)
	engine.SetLogger(opts.Logger)

	m := Model{
		width:   80,
		height:  24,
		catalog: c,
		filter:  opts.Filter,
		engine:  engine,
		form:    form,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		memo:    make(map[memoKey]domain.TaxCalculationResult),
	}

	m.inputs = make([]textinput.Model, fieldCount)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 20
		ti.Width = 20
		switch Field(i) {
		case FieldGross:
			ti.Placeholder = "75000"
			ti.SetValue(opts.GrossIncome)
		case FieldCountry:
			ti.Placeholder = "us"
			ti.CharLimit = 3
			ti.SetValue(country)
		case FieldRegion:
			ti.Placeholder = "none"
			ti.CharLimit = 8
			ti.SetValue(catalog.NormalizeCode(opts.Region))
		case FieldDeductions:
			ti.Placeholder = "standard"
		}
		m.inputs[i] = ti
	}
	m.inputs[FieldGross].Focus()
	m.syncDeductionsField()

	return m, nil
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Result returns the most recent calculation, if any
func (m Model) Result() (domain.TaxCalculationResult, bool) {
	if m.result == nil {
		return domain.TaxCalculationResult{}, false
	}
	return *m.result, true
}

// Err returns the error currently shown, if any
func (m Model) Err() error { return m.err }

// Focused returns the field receiving keystrokes
func (m Model) Focused() Field { return m.focus }

// FilingStatus returns the selected filing status
func (m Model) FilingStatus() domain.FilingStatus { return m.form.FilingStatus() }

// Value returns the raw text of a field
func (m Model) Value(f Field) string { return m.inputs[f].Value() }

// syncDeductionsField shows the standard deduction while the user has not
// overridden it.
func (m *Model) syncDeductionsField() {
	if m.form.IsOverridden() {
		return
	}
	m.inputs[FieldDeductions].SetValue(m.form.Deductions().String())
	m.deductionsEdited = false
}

// parseAmount accepts digits with optional thousands separators and a leading
// currency symbol. Blank input returns ok=false.
func parseAmount(field Field, raw string) (amount decimal.Decimal, ok bool, err error) {
	cleaned := strings.NewReplacer(",", "", "_", "", " ", "", "$", "").Replace(raw)
	if cleaned == "" {
		return decimal.Zero, false, nil
	}
	amount, err = decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%s: %q is not a number", field, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, false, fmt.Errorf("%s must not be negative", field)
	}
	return amount, true, nil
}

// applyCountry switches the form to the typed country. An unknown or
// disallowed code leaves the previous jurisdiction in place.
func (m *Model) applyCountry() error {
	code := catalog.NormalizeCode(m.inputs[FieldCountry].Value())
	if code == m.form.System().CountryCode {
		return nil
	}
	if err := entitlement.Check(m.filter, code); err != nil {
		return err
	}
	if err := m.form.SetCountry(code); err != nil {
		return err
	}
	m.inputs[FieldCountry].SetValue(code)
	if err := m.applyDeductions(); err != nil {
		return err
	}
	m.syncDeductionsField()
	return nil
}

// applyDeductions records a typed override, or drops it when the field was cleared
func (m *Model) applyDeductions() error {
	if !m.deductionsEdited {
		return nil
	}
	amount, ok, err := parseAmount(FieldDeductions, m.inputs[FieldDeductions].Value())
	if err != nil {
		return err
	}
	if !ok {
		m.form.ResetDeductions()
		m.syncDeductionsField()
		return nil
	}
	m.form.SetDeductions(amount)
	return nil
}

// buildInput validates the form and assembles an engine input. ok is false when
// no gross income has been entered yet.
func (m *Model) buildInput() (input domain.TaxCalculationInput, ok bool, err error) {
	if err := m.applyCountry(); err != nil {
		return input, false, err
	}
	if err := m.applyDeductions(); err != nil {
		return input, false, err
	}
	gross, ok, err := parseAmount(FieldGross, m.inputs[FieldGross].Value())
	if err != nil || !ok {
		return input, false, err
	}

	region := catalog.NormalizeCode(m.inputs[FieldRegion].Value())
	m.inputs[FieldRegion].SetValue(region)
	return m.form.Input(gross, region), true, nil
}

func keyFor(input domain.TaxCalculationInput) memoKey {
	return memoKey{
		Country:    input.CountryCode,
		Region:     input.RegionCode,
		Status:     input.FilingStatus,
		Gross:      input.GrossIncome.String(),
		Deductions: input.Deductions.String(),
	}
}

// calculate serves the form state from the memo, or returns a command that runs
// the engine.
func (m *Model) calculate() tea.Cmd {
	input, ok, err := m.buildInput()
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	if !ok {
		m.info = "enter a gross income"
		return nil
	}

	k := keyFor(input)
	if res, hit := m.memo[k]; hit {
		m.pending = nil
		m.setResult(k, res)
		return nil
	}
	m.pending = &k
	m.info = "calculating..."
	return calculateCmd(m.engine, k, input)
}

func (m *Model) setResult(k memoKey, res domain.TaxCalculationResult) {
	m.result = &res
	m.breakdown = calculation.Breakdown(m.form.System().PrimaryTaxType.Brackets, res.TaxableIncome)
	m.info = ""
	if k.Region != "" && !m.form.System().HasRegions() {
		m.info = fmt.Sprintf("%s has no regional tax", m.form.System().DisplayName)
	} else if k.Region != "" {
		if _, found := m.form.System().RegionalTax[k.Region]; !found {
			m.info = fmt.Sprintf("unknown region %q: no regional tax applied", k.Region)
		}
	}
}

// calculateCmd returns a command that runs one computation
func calculateCmd(engine *calculation.Engine, k memoKey, input domain.TaxCalculationInput) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.Compute(input)
		return CalculationCompleteMsg{Key: k, Result: res, Err: err}
	}
}

// MemoSize returns the number of cached computations
func (m Model) MemoSize() int { return len(m.memo) }
