// Package transform substitutes [%key] metadata variables in document text.
//
// With transforms enabled a variable may carry a chain of named transforms:
//
//	[%title:lower:slug]
//	[%date:strftime(%B %Y)]
//	[%tags:split(,):first:upper]
//
// Each step receives a Value (a scalar string or an array of strings) and
// produces the next one. Scalar transforms applied to an array run on every
// element. Unknown transform names pass their input through unchanged. A
// step that cannot be evaluated makes the whole variable fall back to the
// untransformed metadata value, and a variable whose key has no metadata is
// left in the text verbatim.
package transform
