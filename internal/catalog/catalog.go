// Package catalog holds the immutable table of jurisdiction tax systems.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/rgehrsitz/taxcalc/internal/domain"
)

// Catalog is a read-only set of validated tax systems keyed by lowercase country
// code. It is built once and safe for concurrent use.
type Catalog struct {
	systems  map[string]domain.TaxSystem
	problems []error
}

// New validates each system and builds a catalog from the valid ones. Systems that
// fail validation are neither listed nor resolvable; their errors are kept in Problems.
func New(systems ...domain.TaxSystem) *Catalog {
	c := &Catalog{systems: make(map[string]domain.TaxSystem, len(systems))}
	for _, s := range systems {
		s, err := normalize(s)
		if err != nil {
			c.problems = append(c.problems, err)
			continue
		}
		if _, dup := c.systems[s.CountryCode]; dup {
			c.problems = append(c.problems, fmt.Errorf("duplicate jurisdiction %q", s.CountryCode))
			continue
		}
		if err := s.Validate(); err != nil {
			c.problems = append(c.problems, err)
			continue
		}
		c.systems[s.CountryCode] = s.Clone()
	}
	return c
}

// normalize lowercases codes so lookups are case-insensitive and fills a missing
// currency symbol from the ISO 4217 table. Region keys that collide once
// lowercased make the system ambiguous and are rejected.
func normalize(s domain.TaxSystem) (domain.TaxSystem, error) {
	s.CountryCode = NormalizeCode(s.CountryCode)
	s.CurrencyCode = strings.ToUpper(strings.TrimSpace(s.CurrencyCode))
	if s.CurrencySymbol == "" {
		if cur := money.GetCurrency(s.CurrencyCode); cur != nil {
			s.CurrencySymbol = cur.Grapheme
		}
	}
	if s.RegionalTax != nil {
		regions := make(map[string]domain.RegionalTaxInfo, len(s.RegionalTax))
		for code, info := range s.RegionalTax {
			if info.RegionCode == "" {
				info.RegionCode = code
			}
			key := NormalizeCode(code)
			if _, dup := regions[key]; dup {
				return s, fmt.Errorf("jurisdiction %q: duplicate region %q", s.CountryCode, key)
			}
			regions[key] = info
		}
		s.RegionalTax = regions
	}
	return s, nil
}

// NormalizeCode trims and lowercases a country or region code
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Lookup returns the tax system for a country code.
func (c *Catalog) Lookup(countryCode string) (domain.TaxSystem, error) {
	s, ok := c.systems[NormalizeCode(countryCode)]
	if !ok {
		return domain.TaxSystem{}, &domain.UnknownJurisdictionError{CountryCode: countryCode}
	}
	return s.Clone(), nil
}

// ListAvailable returns the systems sorted by country code. A nil allow-list means
// no restriction; otherwise only codes present in allowed are returned.
func (c *Catalog) ListAvailable(allowed map[string]struct{}) []domain.TaxSystem {
	var normalized map[string]struct{}
	if allowed != nil {
		normalized = make(map[string]struct{}, len(allowed))
		for code := range allowed {
			normalized[NormalizeCode(code)] = struct{}{}
		}
	}

	out := make([]domain.TaxSystem, 0, len(c.systems))
	for _, code := range c.Codes() {
		if normalized != nil {
			if _, ok := normalized[code]; !ok {
				continue
			}
		}
		out = append(out, c.systems[code].Clone())
	}
	return out
}

// Codes returns all resolvable country codes in sorted order
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.systems))
	for code := range c.systems {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of valid jurisdictions
func (c *Catalog) Len() int { return len(c.systems) }

// Problems returns the validation errors for jurisdictions rejected at load time.
func (c *Catalog) Problems() []error {
	return append([]error(nil), c.problems...)
}
