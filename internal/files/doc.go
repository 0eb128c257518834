// Package files lists raw inputs and writes whole output files.
//
// Discovery finds per-symbol histories and per-day tick files. Output files
// are always rewritten in full through WriteLinesAtomic; a crashed run leaves
// each file either at its previous content or at its new content.
package files
