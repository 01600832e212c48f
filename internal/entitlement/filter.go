// Package entitlement decides which jurisdictions a caller may use. The tax engine
// never consults it; callers check before computing and pass the allow-list to
// catalog listings.
package entitlement

import (
	"fmt"
	"strings"
)

// Filter supplies the set of country codes a caller may request. A nil set means
// no restriction.
type Filter interface {
	AllowedCountries() map[string]struct{}
}

// StaticFilter is a fixed allow-list, typically read from configuration
type StaticFilter struct {
	allowed map[string]struct{}
}

// NewStaticFilter builds a filter from country codes. An empty list yields an
// unrestricted filter.
func NewStaticFilter(codes []string) StaticFilter {
	var allowed map[string]struct{}
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if allowed == nil {
			allowed = make(map[string]struct{})
		}
		allowed[c] = struct{}{}
	}
	return StaticFilter{allowed: allowed}
}

// Unrestricted allows every jurisdiction
var Unrestricted Filter = StaticFilter{}

// AllowedCountries returns a copy of the allow-list, or nil when unrestricted
func (f StaticFilter) AllowedCountries() map[string]struct{} {
	if f.allowed == nil {
		return nil
	}
	out := make(map[string]struct{}, len(f.allowed))
	for k := range f.allowed {
		out[k] = struct{}{}
	}
	return out
}

// NotEntitledError is returned by Check for a country outside the allow-list
type NotEntitledError struct {
	CountryCode string
}

func (e *NotEntitledError) Error() string {
	return fmt.Sprintf("jurisdiction %q is not available", e.CountryCode)
}

// Allows reports whether f permits the country code
func Allows(f Filter, countryCode string) bool {
	if f == nil {
		return true
	}
	allowed := f.AllowedCountries()
	if allowed == nil {
		return true
	}
	_, ok := allowed[strings.ToLower(strings.TrimSpace(countryCode))]
	return ok
}

// Check returns *NotEntitledError when f does not permit the country code
func Check(f Filter, countryCode string) error {
	if !Allows(f, countryCode) {
		return &NotEntitledError{CountryCode: countryCode}
	}
	return nil
}
