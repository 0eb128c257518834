// Package mapfile tracks instrument identity across ticker renames.
//
// A map file is a list of "YYYYMMDD,symbol" rows in ascending date order. Each
// row says the instrument traded under that symbol up to and including the
// date; the last row names the file's own symbol and carries either the
// far-future sentinel (still active) or the delisting date.
package mapfile
