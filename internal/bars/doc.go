// Package bars aggregates a day's ticks into fixed-width OHLCV bars aligned to
// the 09:30 session open and persists them as CSV or Parquet.
package bars
