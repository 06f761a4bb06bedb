// Package settings provides the application settings model.
//
// Every setting is a typed Value bound to a key in a storage table. Values
// are CBOR encoded; a key that was never written reads as its default. Unless
// the model is opened read-only, Set writes through to storage immediately.
// Settings can also be overridden from YAML, which the command line tools
// use for their -config files.
package settings
