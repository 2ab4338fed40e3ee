// Package normalisers provides Normaliser implementations for the file
// formats a project document may arrive in. Each normaliser extracts
// plain text from one format; the Registry dispatches by file extension
// with plaintext as the fallback.
package normalisers
