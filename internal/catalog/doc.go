// Package catalog loads the metric catalog, the newline-delimited list of
// metric names a dataset is expected to contain, and combines it with the
// identifying columns into a Schema of column descriptors.
package catalog
