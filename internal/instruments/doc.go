// Package instruments is the static symbol registry consulted by every
// pipeline step to decide which records are in scope.
package instruments
