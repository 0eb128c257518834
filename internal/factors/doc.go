// Package factors computes cumulative price-adjustment factors from corporate actions.
//
// A factor file holds "YYYYMMDD,price,split" rows in ascending date order,
// ending with the 2049-12-31 sentinel at (1, 1). The factors on a row apply to
// every price dated on or before it, up to the previous row.
package factors
