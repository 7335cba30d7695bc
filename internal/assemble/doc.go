// Package assemble turns search matches into the ordered clip list a
// renderer consumes: pad each match, merge padded spans that overlap
// or touch, optionally shuffle, then cap the count. The output order
// is the render order.
package assemble
