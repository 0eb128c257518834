// Package exporter writes factor-adjusted price series.
//
// CSVWriter is the semicolon CSV writer used for every exported file. Adjuster
// multiplies raw fixed-point prices by the combined factor in force on their
// date and rounds to two places; Locale picks the decimal separator. Exporter
// ties them together per symbol and can also emit an .xlsx workbook through
// ExcelWriter.
//
// Example usage:
//
//	exp, err := exporter.New(paths, exporter.MustParseLocale("pt-BR"), exporter.FormatCSV, logger)
//	path, err := exp.ExportDaily("PETR4", records, factorPoints)
package exporter
