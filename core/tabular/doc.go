// Package tabular turns uploaded spreadsheet exports into typed rows and provides the
// value-cleaning primitives shared by every file-driven engine.
//
// # Parsing
//
// ParseTable splits raw text on newlines, drops whitespace-only lines, treats the first
// remaining line as the header and parses each following line with double-quote
// semantics: a quoted field may contain commas, and a doubled quote ("") inside a quoted
// field yields a literal quote. Short lines are padded with empty strings.
//
// # Cleaning
//
//   - IsBlank: nil, "", whitespace, "-" and the spreadsheet artifact "'-" are blank.
//   - ToNumeric: trims, strips every "%" and parses a float. Failures are returned, never
//     coerced to zero.
//   - ToIsoDate: normalizes common date layouts to YYYY-MM-DD and passes anything it cannot
//     parse through unchanged so the remote API can reject it.
//
// # Escaping
//
// EscapeCSV quotes a value only when it contains a comma, a quote or a newline. Together
// with SplitLine it round-trips any single-line value.
package tabular
