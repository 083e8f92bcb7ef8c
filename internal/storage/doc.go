// Package storage writes the award-shares report to an output directory.
//
// Reports are CSV with a fixed column order and fixed number formatting, so two runs
// over the same pages produce identical files. Files are written to a temporary
// name and renamed into place.
package storage
