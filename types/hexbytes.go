package types

import (
	"encoding/hex"
	"fmt"
)

// HexBytes is a []byte which encodes as lowercase hexadecimal in json, as
// opposed to the base64 default. This is the interchange encoding used for
// signatures and public keys.
type HexBytes []byte

// Bytes returns the underlying byte slice of the HexBytes.
func (b *HexBytes) Bytes() []byte {
	return *b
}

// Hex returns the hexadecimal string representation of the HexBytes.
func (b HexBytes) Hex() string {
	return hex.EncodeToString(b)
}

// String returns the hexadecimal string representation of the HexBytes.
func (b HexBytes) String() string {
	return b.Hex()
}

// LeftPad returns a new HexBytes padded with leading zeros to the specified
// length n. If the length of b is already n or greater, it returns a copy of b.
func (b HexBytes) LeftPad(n int) HexBytes {
	if len(b) >= n {
		out := make(HexBytes, len(b))
		copy(out, b)
		return out
	}
	out := make(HexBytes, n)
	copy(out[n-len(b):], b)
	return out
}

// Equal compares the current HexBytes with the provided one, byte per byte.
func (b HexBytes) Equal(other HexBytes) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON implements the json.Marshaler interface for HexBytes. It encodes
// the byte slice as a bare lowercase hexadecimal string.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b))+2)
	enc[0] = '"'
	hex.Encode(enc[1:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for HexBytes. It
// expects a JSON string containing a hexadecimal representation, optionally
// prefixed with "0x".
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string: %q", data)
	}
	data = data[1 : len(data)-1]

	// Strip a leading "0x" prefix, for convenience.
	if len(data) >= 2 && data[0] == '0' && (data[1] == 'x' || data[1] == 'X') {
		data = data[2:]
	}

	decLen := hex.DecodedLen(len(data))
	if cap(*b) < decLen {
		*b = make([]byte, decLen)
	} else {
		*b = (*b)[:decLen]
	}
	if _, err := hex.Decode(*b, data); err != nil {
		return err
	}
	return nil
}

// HexStringToHexBytes converts a hex string to a HexBytes. It strips a leading
// '0x' or '0X' prefix if found.
func HexStringToHexBytes(hexString string) (HexBytes, error) {
	if len(hexString) >= 2 && hexString[0] == '0' && (hexString[1] == 'x' || hexString[1] == 'X') {
		hexString = hexString[2:]
	}
	b, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", hexString, err)
	}
	return b, nil
}
