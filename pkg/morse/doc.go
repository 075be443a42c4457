// Package morse maps text to International Morse Code symbols.
//
// Only the 36-character set (A-Z, 0-9) is supported. Letters are
// case-insensitive; a space marks a word boundary and is carried through
// the encoding as a unit without a symbol. Any other character is
// dropped by the encoder rather than failing the whole message.
package morse
