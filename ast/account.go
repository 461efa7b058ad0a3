package ast

import (
	"fmt"
	"regexp"
	"strings"
)

// RootType is one of the five account root categories from spec §3.
type RootType string

const (
	Assets      RootType = "Assets"
	Liabilities RootType = "Liabilities"
	Equity      RootType = "Equity"
	Income      RootType = "Income"
	Expenses    RootType = "Expenses"
)

var rootTypes = map[RootType]bool{
	Assets: true, Liabilities: true, Equity: true, Income: true, Expenses: true,
}

// Account is an ordered ':'-separated path beginning with a root type.
// Equality is by full path (plain string comparison).
type Account string

var segmentRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Validate checks that a matches `root(':'segment)+`.
func (a Account) Validate() error {
	parts := strings.Split(string(a), ":")
	if len(parts) < 2 {
		return fmt.Errorf("account must have at least two segments: %s", a)
	}
	if !rootTypes[RootType(parts[0])] {
		return fmt.Errorf("unexpected account root type %q in %s", parts[0], a)
	}
	for _, seg := range parts[1:] {
		if !segmentRegex.MatchString(seg) {
			return fmt.Errorf("invalid account segment %q in %s", seg, a)
		}
	}
	return nil
}

// Root returns the account's root type.
func (a Account) Root() RootType {
	parts := strings.SplitN(string(a), ":", 2)
	return RootType(parts[0])
}

// Parent returns the account path without its last segment (the parent of
// Assets:Cash is Assets), or "" if a has no ':' at all.
func (a Account) Parent() Account {
	parts := strings.Split(string(a), ":")
	if len(parts) < 2 {
		return ""
	}
	return Account(strings.Join(parts[:len(parts)-1], ":"))
}
