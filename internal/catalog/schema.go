package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed data/jurisdictions.yaml
var defaultData []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded jurisdiction data. The
// data ships with the binary, so a decode failure is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(defaultData))
		if err != nil {
			panic(fmt.Sprintf("embedded jurisdiction data: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// taxTypeRecord is the serialized form of a bracket table
type taxTypeRecord struct {
	Brackets []domain.TaxBracket `yaml:"brackets" json:"brackets"`
}

// systemRecord is the serialized form of a jurisdiction. Exactly one of the
// primary tax type keys must be present.
type systemRecord struct {
	DisplayName       string                            `yaml:"displayName"`
	CurrencyCode      string                            `yaml:"currencyCode"`
	CurrencySymbol    string                            `yaml:"currencySymbol"`
	StandardDeduction domain.StandardDeductions         `yaml:"standardDeduction"`
	IncomeTax         *taxTypeRecord                    `yaml:"incomeTax"`
	FederalIncome     *taxTypeRecord                    `yaml:"federalIncome"`
	IndividualIncome  *taxTypeRecord                    `yaml:"individualIncome"`
	RegionalTax       map[string]domain.RegionalTaxInfo `yaml:"regionalTax"`
}

func (r systemRecord) primary() (domain.TaxType, error) {
	candidates := map[domain.TaxTypeName]*taxTypeRecord{
		domain.TaxTypeIncomeTax:        r.IncomeTax,
		domain.TaxTypeFederalIncome:    r.FederalIncome,
		domain.TaxTypeIndividualIncome: r.IndividualIncome,
	}

	var found []domain.TaxType
	for _, name := range domain.PrimaryTaxTypeNames {
		if rec := candidates[name]; rec != nil {
			found = append(found, domain.TaxType{Name: name, Brackets: rec.Brackets})
		}
	}
	switch len(found) {
	case 0:
		return domain.TaxType{}, fmt.Errorf("no primary tax type (expected one of %v)", domain.PrimaryTaxTypeNames)
	case 1:
		return found[0], nil
	default:
		return domain.TaxType{}, fmt.Errorf("%d primary tax types defined, expected exactly one", len(found))
	}
}

// Load decodes jurisdiction data in YAML or JSON form and builds a catalog.
// Records that cannot be turned into a tax system, and systems that fail
// validation, end up in Problems rather than failing the whole load.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read jurisdiction data: %w", err)
	}

	var records map[string]systemRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse jurisdiction data: %w", err)
	}

	codes := make([]string, 0, len(records))
	for code := range records {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var systems []domain.TaxSystem
	var problems []error
	for _, code := range codes {
		rec := records[code]
		primary, err := rec.primary()
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", code, err))
			continue
		}
		systems = append(systems, domain.TaxSystem{
			CountryCode:       code,
			DisplayName:       rec.DisplayName,
			CurrencyCode:      rec.CurrencyCode,
			CurrencySymbol:    rec.CurrencySymbol,
			StandardDeduction: rec.StandardDeduction,
			PrimaryTaxType:    primary,
			RegionalTax:       rec.RegionalTax,
		})
	}

	c := New(systems...)
	c.problems = append(problems, c.problems...)
	return c, nil
}

// LoadFile loads jurisdiction data from a YAML or JSON file
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

type exportBracket struct {
	Min  json.Number  `json:"min"`
	Max  *json.Number `json:"max"`
	Rate json.Number  `json:"rate"`
}

type exportRegion struct {
	RegionCode string       `json:"regionCode"`
	Rate       *json.Number `json:"rate"`
}

func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func numberPtr(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := number(*d)
	return &n
}

// Export writes the catalog's valid jurisdictions as JSON in the same schema Load
// accepts, with plain numbers for amounts and null for open-ended values.
func (c *Catalog) Export(w io.Writer) error {
	out := make(map[string]map[string]any, len(c.systems))
	for _, s := range c.ListAvailable(nil) {
		brackets := make([]exportBracket, 0, len(s.PrimaryTaxType.Brackets))
		for _, b := range s.PrimaryTaxType.Brackets {
			brackets = append(brackets, exportBracket{Min: number(b.Min), Max: numberPtr(b.Max), Rate: number(b.Rate)})
		}
		rec := map[string]any{
			"displayName":    s.DisplayName,
			"currencyCode":   s.CurrencyCode,
			"currencySymbol": s.CurrencySymbol,
			"standardDeduction": map[string]json.Number{
				"single":  number(s.StandardDeduction.Single),
				"married": number(s.StandardDeduction.Married),
			},
			string(s.PrimaryTaxType.Name): map[string]any{"brackets": brackets},
		}
		if s.RegionalTax != nil {
			regions := make(map[string]exportRegion, len(s.RegionalTax))
			for code, info := range s.RegionalTax {
				regions[code] = exportRegion{RegionCode: info.RegionCode, Rate: numberPtr(info.Rate)}
			}
			rec["regionalTax"] = regions
		}
		out[s.CountryCode] = rec
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
