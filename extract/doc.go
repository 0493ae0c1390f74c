// Package extract recovers logical document objects from the geometric
// records of a decoded PDF page: words are grouped into text lines,
// fragmented raster tiles are spliced back into whole figures, figures are
// numbered in reading order, and nearby caption lines are matched to each
// figure as label candidates.
//
// All coordinates use a single top-left-origin frame: x grows rightward,
// y grows downward, and a bounding box's Top is always less than or equal
// to its Bottom. Decode backends working in PDF's bottom-up user space
// (see package pdfdoc) must normalize before handing records to this
// package.
//
// Each stage consumes its input and produces new records; nothing is
// mutated in place and no tile is shared between logical images. The
// pipeline is synchronous for one document; callers wanting throughput
// should run whole documents on separate goroutines.
package extract
