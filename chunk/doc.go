// Package chunk splits document text into overlapping, size-bounded segments
// while preferring sentence boundaries, preserving source metadata per
// segment.
package chunk
