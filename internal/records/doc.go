// Package records decodes raw exchange files and reads/writes the daily and tick stores.
//
// Raw layouts are described by schemas (FixedWidthSchema, DelimitedSchema) that are
// validated once; decoders return typed Fields. Undecodable lines become
// MalformedRecord errors and are skipped, never aborting a file.
package records
