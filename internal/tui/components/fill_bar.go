package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/tui/tuistyles"
)

// FillBar shows how much of a bracket's width the taxable income used up
type FillBar struct {
	Fraction float64
	Width    int
	Label    string
	Suffix   string
}

// NewFillBar creates a bar for a fraction in [0, 1]; values outside are clamped
func NewFillBar(fraction float64) *FillBar {
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	return &FillBar{Fraction: fraction, Width: 20}
}

// BracketFill returns the fraction of a bracket that a slice occupies. The
// unbounded top bracket always reads as full once income reaches it.
func BracketFill(s calculation.BracketSlice) float64 {
	if s.Bracket.Max == nil {
		return 1
	}
	span := s.Bracket.Max.Add(decimal.NewFromInt(1)).Sub(s.Bracket.Min)
	if !span.IsPositive() {
		return 1
	}
	return s.TaxedAmount.Div(span).InexactFloat64()
}

// WithLabel sets the text rendered before the bar
func (p *FillBar) WithLabel(label string) *FillBar {
	p.Label = label
	return p
}

// WithSuffix sets the text rendered after the bar
func (p *FillBar) WithSuffix(suffix string) *FillBar {
	p.Suffix = suffix
	return p
}

// WithWidth sets the bar width
func (p *FillBar) WithWidth(width int) *FillBar {
	p.Width = width
	return p
}

// Render returns the styled bar
func (p *FillBar) Render() string {
	var content strings.Builder

	if p.Label != "" {
		content.WriteString(p.Label)
		content.WriteString(" ")
	}

	filled := int(float64(p.Width) * p.Fraction)
	if filled > p.Width {
		filled = p.Width
	}
	// a sliver of income still shows up
	if filled == 0 && p.Fraction > 0 {
		filled = 1
	}
	empty := p.Width - filled

	barStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorSuccess)
	emptyStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorBorder)

	content.WriteString("[")
	if filled > 0 {
		content.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	}
	if empty > 0 {
		content.WriteString(emptyStyle.Render(strings.Repeat("░", empty)))
	}
	content.WriteString("]")

	if p.Suffix != "" {
		content.WriteString(" ")
		content.WriteString(p.Suffix)
	}
	return content.String()
}
