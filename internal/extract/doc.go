// Package extract pulls labeled field values out of document tables.
//
// A label is located by case-insensitive substring match against each cell;
// the value is read either from the next cell in the same row (adjacent) or
// from the same column in the next row (below). For every field the first
// non-null value in document order wins.
package extract
