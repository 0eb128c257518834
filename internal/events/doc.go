// Package events supplies the raw corporate-action rows that drive factor files.
//
// Rows come from a Source: a directory of per-issuer text files, a single
// workbook, or an HTTP endpoint. Sources return text columns only; parsing and
// validation happen in the factors package. The issuer table maps exchange
// issuer codes to the tickers they list.
package events
