package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownJurisdiction matches any *UnknownJurisdictionError via errors.Is
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	// ErrMalformedBracketTable matches any *MalformedBracketTableError via errors.Is
	ErrMalformedBracketTable = errors.New("malformed bracket table")
)

// UnknownJurisdictionError is returned when a country code is not in the catalog.
type UnknownJurisdictionError struct {
	CountryCode string
}

func (e *UnknownJurisdictionError) Error() string {
	return fmt.Sprintf("unknown jurisdiction %q", e.CountryCode)
}

func (e *UnknownJurisdictionError) Is(target error) bool {
	return target == ErrUnknownJurisdiction
}

// MalformedBracketTableError describes a bracket table that breaks the ordering,
// contiguity or terminal-bracket rules. Index is -1 when no single bracket is at fault.
type MalformedBracketTableError struct {
	CountryCode string
	TaxType     TaxTypeName
	Index       int
	Reason      string
}

func (e *MalformedBracketTableError) Error() string {
	where := string(e.TaxType)
	if e.CountryCode != "" {
		where = e.CountryCode + "/" + where
	}
	if e.Index >= 0 {
		return fmt.Sprintf("malformed bracket table %s: bracket %d: %s", where, e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed bracket table %s: %s", where, e.Reason)
}

func (e *MalformedBracketTableError) Is(target error) bool {
	return target == ErrMalformedBracketTable
}
