// Package shared groups helpers used across the converter's packages.
//
// The testutil subpackage provides a buffered slog handler for log assertions
// and small file fixtures (WriteLines, ReadLines, Date) for package tests.
// Nothing here carries domain logic.
package shared
