package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const syntheticYAML = `
zz:
  displayName: Testland
  currencyCode: usd
  standardDeduction: {single: 1000, married: 2000}
  incomeTax:
    brackets:
      - {min: 0, max: 9999, rate: 0.1}
      - {min: 10000, max: null, rate: 0.2}
  regionalTax:
    North: {rate: 0.05}
    south: {regionCode: south, rate: null}
yy:
  displayName: Broken
  currencyCode: EUR
  standardDeduction: {single: 0, married: 0}
  individualIncome:
    brackets:
      - {min: 0, max: 100, rate: 0.1}
      - {min: 150, max: null, rate: 0.2}
xx:
  displayName: Ambiguous
  currencyCode: EUR
  standardDeduction: {single: 0, married: 0}
  incomeTax:
    brackets:
      - {min: 0, max: null, rate: 0.1}
  federalIncome:
    brackets:
      - {min: 0, max: null, rate: 0.1}
`

func loadSynthetic(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(strings.NewReader(syntheticYAML))
	require.NoError(t, err)
	return c
}

func TestLoad_ValidAndRejected(t *testing.T) {
	c := loadSynthetic(t)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"zz"}, c.Codes())

	problems := c.Problems()
	require.Len(t, problems, 2)

	var malformed *domain.MalformedBracketTableError
	found := false
	for _, p := range problems {
		if errors.As(p, &malformed) {
			found = true
			assert.Equal(t, "yy", malformed.CountryCode)
			assert.Equal(t, 1, malformed.Index)
		}
	}
	assert.True(t, found, "expected a malformed bracket table problem for yy")

	_, err := c.Lookup("yy")
	assert.ErrorIs(t, err, domain.ErrUnknownJurisdiction)
	_, err = c.Lookup("xx")
	assert.ErrorIs(t, err, domain.ErrUnknownJurisdiction)
}

func TestLookup(t *testing.T) {
	c := loadSynthetic(t)

	s, err := c.Lookup("ZZ")
	require.NoError(t, err)
	assert.Equal(t, "zz", s.CountryCode)
	assert.Equal(t, "USD", s.CurrencyCode)
	assert.Equal(t, "$", s.CurrencySymbol, "symbol filled from ISO table")
	assert.Equal(t, domain.TaxTypeIncomeTax, s.PrimaryTaxType.Name)
	require.Len(t, s.PrimaryTaxType.Brackets, 2)
	assert.Nil(t, s.PrimaryTaxType.Brackets[1].Max)
	assert.True(t, s.PrimaryTaxType.Brackets[0].Max.Equal(decimal.NewFromInt(9999)))

	require.Contains(t, s.RegionalTax, "north")
	assert.Equal(t, "North", s.RegionalTax["north"].RegionCode)
	assert.Nil(t, s.RegionalTax["south"].Rate)

	_, err = c.Lookup("qq")
	var unknown *domain.UnknownJurisdictionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "qq", unknown.CountryCode)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	c := loadSynthetic(t)

	s, err := c.Lookup("zz")
	require.NoError(t, err)
	s.PrimaryTaxType.Brackets[0].Rate = decimal.NewFromInt(1)
	s.RegionalTax["north"] = domain.RegionalTaxInfo{}

	again, err := c.Lookup("zz")
	require.NoError(t, err)
	assert.True(t, again.PrimaryTaxType.Brackets[0].Rate.Equal(decimal.NewFromFloat(0.1)))
	assert.NotNil(t, again.RegionalTax["north"].Rate)
}

func TestListAvailable(t *testing.T) {
	c := Default()

	all := c.ListAvailable(nil)
	require.Len(t, all, c.Len())
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].CountryCode, all[i].CountryCode)
	}

	subset := c.ListAvailable(map[string]struct{}{"US": {}, "de": {}, "zz": {}})
	require.Len(t, subset, 2)
	assert.Equal(t, "de", subset[0].CountryCode)
	assert.Equal(t, "us", subset[1].CountryCode)

	assert.Empty(t, c.ListAvailable(map[string]struct{}{}))
}

func TestNew_DuplicateRejected(t *testing.T) {
	base := loadSynthetic(t)
	s, err := base.Lookup("zz")
	require.NoError(t, err)

	c := New(s, s)
	assert.Equal(t, 1, c.Len())
	require.Len(t, c.Problems(), 1)
	assert.Contains(t, c.Problems()[0].Error(), "duplicate")
}

func TestLoad_DuplicateRegionRejected(t *testing.T) {
	const data = `
ca:
  displayName: Canada
  currencyCode: CAD
  standardDeduction: {single: 15000, married: 15000}
  incomeTax:
    brackets:
      - {min: 0, max: null, rate: 0.15}
  regionalTax:
    ON: {rate: 0.05}
    on: {rate: 0.10}
`
	for i := 0; i < 20; i++ {
		c, err := Load(strings.NewReader(data))
		require.NoError(t, err)

		assert.Equal(t, 0, c.Len())
		require.Len(t, c.Problems(), 1)
		assert.Contains(t, c.Problems()[0].Error(), `duplicate region "on"`)
		_, err = c.Lookup("ca")
		assert.True(t, errors.Is(err, domain.ErrUnknownJurisdiction))
	}
}

func TestDefault_AllJurisdictionsValid(t *testing.T) {
	c := Default()

	assert.Empty(t, c.Problems())
	assert.Equal(t, []string{"au", "ca", "de", "gb", "in", "us"}, c.Codes())

	us, err := c.Lookup("us")
	require.NoError(t, err)
	assert.Equal(t, domain.TaxTypeFederalIncome, us.PrimaryTaxType.Name)
	assert.True(t, us.StandardDeduction.Married.Equal(decimal.NewFromInt(29200)))
	assert.Nil(t, us.RegionalTax["tx"].Rate)

	au, err := c.Lookup("au")
	require.NoError(t, err)
	assert.Equal(t, domain.TaxTypeIndividualIncome, au.PrimaryTaxType.Name)
	assert.False(t, au.HasRegions())

	assert.Same(t, c, Default())
}

func TestLoad_JSON(t *testing.T) {
	data := `{"zz": {"displayName": "Testland", "currencyCode": "JPY",
	  "standardDeduction": {"single": 0, "married": 0},
	  "federalIncome": {"brackets": [{"min": 0, "max": null, "rate": 0.1}]}}}`

	c, err := Load(strings.NewReader(data))
	require.NoError(t, err)
	s, err := c.Lookup("zz")
	require.NoError(t, err)
	assert.Equal(t, "JPY", s.CurrencyCode)
	assert.Nil(t, s.RegionalTax)
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(strings.NewReader("zz: [not, a, record"))
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestExport_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Export(&buf))

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	us := raw["us"]
	require.Contains(t, us, "federalIncome")
	brackets := us["federalIncome"].(map[string]any)["brackets"].([]any)
	last := brackets[len(brackets)-1].(map[string]any)
	assert.Nil(t, last["max"])
	assert.Equal(t, 0.37, last["rate"])

	again, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, again.Problems())
	assert.Equal(t, Default().Codes(), again.Codes())
}
