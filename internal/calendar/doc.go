// Package calendar derives the exchange's trading days from its holiday list.
//
// A trading day is any weekday inside the calendar bounds that is not a listed
// holiday. The calendar is built once per run and is read-only afterwards.
package calendar
