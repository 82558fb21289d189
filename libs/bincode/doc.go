/*
Package bincode implements the positional binary codec used to carry state
between proving steps.

Values are laid out back-to-back without field tags, using the fixed-int
little-endian layout:

	bool      1 byte, 0x00 or 0x01
	uint32    4 bytes, little-endian
	uint64    8 bytes, little-endian
	[]byte    uint64 length prefix followed by the bytes

A Buffer reads values left to right. Each Read first decodes a value from the
unread suffix and then advances the cursor by the encoded size of the decoded
value, so a decoder that misreports its size desynchronizes every later read.
*/
package bincode
