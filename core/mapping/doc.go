// Package mapping describes how upload columns and remote fields relate for one run.
//
// A mapping is loaded once from YAML (or decoded from a JSON request body) and passed by
// value into the classifiers; nothing mutates it during a run.
//
//	entity_type: companies
//	key_columns: [name, domain]
//	columns:
//	  - csv_column: Company
//	    mapped_to: name
//	  - csv_column: ARR
//	    mapped_to: 3f1c0c5e-arr
//	    field_type: number
//	  - csv_column: Internal notes
//	    mapped_to: null
//
// A column whose mapped_to is null or missing is ignored. Reserved targets such as name
// or domain may be claimed by at most one column; description and tags collect several
// columns in header order.
package mapping
