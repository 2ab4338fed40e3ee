// Package render provides implementations of the ExportRenderer interface
// for the supported artifact formats. Each renderer turns one graph version
// and its projected rows into a single container format.
//
// Renderers are registered with the export service at startup.
package render
