// Package ident generates locally unique identifiers for new entities.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// suffixLen is the number of hex characters kept from a random UUID.
// 48 bits of entropy is plenty for a single device's roster.
const suffixLen = 12

// Generator produces identifiers with a given prefix.
type Generator interface {
	Generate(prefix string) string
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(prefix string) string

// Generate calls f(prefix).
func (f GeneratorFunc) Generate(prefix string) string { return f(prefix) }

// Random is the default Generator, backed by GenerateID.
var Random Generator = GeneratorFunc(GenerateID)

// GenerateID returns prefix + "_" + a random lowercase hex suffix, e.g.
// "child_3f9c2a71be04". Uniqueness is probabilistic, not enforced.
func GenerateID(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	u := uuid.New()
	suffix := strings.ReplaceAll(u.String(), "-", "")[:suffixLen]
	return prefix + "_" + suffix
}
