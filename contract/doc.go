// Package contract implements the input/response contract for questions.
//
// An ask message carries an ordered list of input descriptors (text,
// confirm, select). The answer's shape is derived from that list at
// runtime as a Schema, and the wire payload is decoded against it:
//   - confirm          -> bool
//   - select, multiple -> []string
//   - select, single   -> string
//   - text             -> string
//
// Decoding is best-effort: a payload that does not conform structurally
// comes back as raw text rather than an error.
package contract
