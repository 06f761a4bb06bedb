// Package sdjwt holds issuer metadata for SD-JWT credentials and renders it
// into the JOSE header and payload claims of the issued JWT.
package sdjwt
