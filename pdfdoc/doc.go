// Package pdfdoc decodes PDF files into the typed page records consumed
// by package extract. Text comes from the PDF's positioned character data,
// raster images from its XObject streams, and image placements from a scan
// of each page's content stream that tracks the current transformation
// matrix.
//
// PDF user space puts the origin at the bottom-left with y growing upward;
// everything leaving this package is converted to the top-left-origin
// frame expected downstream.
package pdfdoc
