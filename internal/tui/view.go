package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/output"
	"github.com/rgehrsitz/taxcalc/internal/tui/components"
)

// View renders the current state of the application
func (m Model) View() string {
	sections := []string{
		m.renderTitleBar(),
		m.renderForm(),
	}
	if msg := m.renderStatus(); msg != "" {
		sections = append(sections, msg)
	}
	if m.result != nil {
		sections = append(sections, m.renderResult(), m.renderBreakdown())
	}
	sections = append(sections, m.help.View(m.keys))

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderTitleBar renders the application title and the selected jurisdiction
func (m Model) renderTitleBar() string {
	sys := m.form.System()
	subtitle := fmt.Sprintf("%s • %s", sys.DisplayName, sys.CurrencyCode)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render("TAXCALC - Income Tax Calculator"),
		SubtitleStyle.Render(subtitle),
	)
}

func (m Model) renderForm() string {
	var rows []string
	for i := range m.inputs {
		f := Field(i)
		label := FieldLabelStyle.Render(f.String())
		if f == m.focus {
			label = FocusedFieldLabelStyle.Render(f.String())
		}
		row := label + " " + m.inputs[i].View()
		if f == FieldDeductions {
			if m.form.IsOverridden() {
				row += SubtitleStyle.Render("  (custom)")
			} else {
				row += SubtitleStyle.Render("  (standard)")
			}
		}
		rows = append(rows, row)
	}

	status := "Single"
	if m.form.FilingStatus() == domain.FilingMarried {
		status = "Married"
	}
	rows = append(rows, FieldLabelStyle.Render("Filing Status")+" "+TableCellStyle.Render(status))

	return ActiveBorderStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return ErrorStyle.Render("Error: " + m.err.Error())
	}
	if m.info != "" {
		return InfoStyle.Render(m.info)
	}
	return ""
}

func (m Model) renderResult() string {
	res := *m.result
	cur := res.CurrencyCode

	cards := []*components.MetricCard{
		components.NewMetricCard("Total Tax", output.FormatMoney(res.TotalTax, cur)).
			WithDescription("national " + output.FormatMoney(res.NationalTax, cur)),
		components.NewMetricCard("Net Income", output.FormatMoney(res.NetIncome(), cur)).
			WithDescription("taxable " + output.FormatMoney(res.TaxableIncome, cur)),
		components.NewMetricCard("Effective Rate", output.FormatPercent(res.EffectiveRatePercent)),
		components.NewMetricCard("Marginal Rate", output.FormatPercent(res.MarginalRatePercent)),
	}
	if !res.RegionalTax.IsZero() {
		cards[0].WithDescription(fmt.Sprintf("national %s + %s %s",
			output.FormatMoney(res.NationalTax, cur),
			strings.ToUpper(res.RegionCode),
			output.FormatMoney(res.RegionalTax, cur)))
		cards[0].WithWidth(40)
	}

	columns := 4
	if m.width < 100 {
		columns = 2
	}
	return components.MetricGrid(cards, columns)
}

func (m Model) renderBreakdown() string {
	cur := m.result.CurrencyCode
	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render("Bracket Breakdown"))
	b.WriteString("\n")
	if len(m.breakdown) == 0 {
		b.WriteString(SubtitleStyle.Render("No taxable income."))
		return b.String()
	}
	for _, s := range m.breakdown {
		label := fmt.Sprintf("%-30s %7s", output.BracketRange(s.Bracket.Min, s.Bracket.Max, cur), output.FormatRate(s.Bracket.Rate))
		bar := components.NewFillBar(components.BracketFill(s)).
			WithLabel(TableCellStyle.Render(label)).
			WithSuffix(output.FormatMoney(s.Tax, cur))
		b.WriteString(bar.Render())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
