// Package dataset holds the tabular input of a validation run: typed cells,
// columns with inferred types, and per-asset partitions.
//
// Datasets are read-only once built. Partitions are views over the parent
// dataset that remember each row's original index, so diagnostics can point
// back at the input file.
//
// CSV and XLSX loaders live in loader.go; both infer column types from the
// non-missing cells of each column.
package dataset
