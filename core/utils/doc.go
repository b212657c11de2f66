// Package utils provides small conversion helpers shared by the engines and HTTP handlers:
// rendering remote scalars as text and reading loosely typed query or config values.
package utils
