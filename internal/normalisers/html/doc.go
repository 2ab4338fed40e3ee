// Package html provides a Normaliser implementation for HTML files.
// It extracts the readable text, stripping tags, scripts and styles
// and decoding entities, so the chunker sees prose only.
package html
