// Package chunker splits one audio file into contiguous fixed-duration parts.
//
// Plan computes the partition; Chunker probes the source, creates the output
// directory, and writes every part through a Slicer. A failed write is
// recorded and the remaining parts are still attempted, so the caller gets an
// exact succeeded/total count.
package chunker
