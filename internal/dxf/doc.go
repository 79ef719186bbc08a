// Package dxf builds and serializes AutoCAD R2000 (AC1015) DXF documents.
//
// A Document holds the symbol tables (linetypes, layers, text styles), block
// definitions and model space entities of one drawing. Nothing is written
// until Save or WriteTo is called; handles are assigned during serialization
// so a document can be built in any order.
//
// The package covers the subset of the format needed for P&ID exports: LINE,
// CIRCLE, ARC, LWPOLYLINE, TEXT and INSERT entities. It does not read DXF.
package dxf
