// Package cad composes P&ID drawings into DXF documents.
//
// An export is driven by a Composer, which walks a fixed sequence of states:
// the document is initialized for a paper size, the layer table is written,
// symbols, lines and annotations are placed, the title block and border are
// added, and the result is saved. Symbols are drawn once per document as block
// definitions by a Library and then inserted by reference.
//
// Symbol generators draw on a Canvas, so they can be tested against the
// primitives they emit instead of serialized output.
package cad
