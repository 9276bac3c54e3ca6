package store

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateUser rejects names that cannot double as a single path element.
func ValidateUser(name string) error {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid user name %q", name)
	}
	if strings.ContainsAny(name, `/\`+"\x00") {
		return fmt.Errorf("invalid user name %q: contains a path separator", name)
	}
	return nil
}

// MergeUsers validates configured and discovered users and returns the
// sorted, de-duplicated union.
func MergeUsers(configured, discovered []string) ([]string, error) {
	all := make([]string, 0, len(configured)+len(discovered))
	for _, name := range append(slices.Clone(configured), discovered...) {
		if err := ValidateUser(name); err != nil {
			return nil, err
		}
		all = append(all, name)
	}
	slices.Sort(all)
	return slices.Compact(all), nil
}
