// Package httpapi serves the record and index administration API over HTTP.
//
// Paths live under /document-stores. Successful record responses carry a
// {data, meta} envelope, index administration answers {success, message,
// data}, and every failure is written as {error, code}.
package httpapi
