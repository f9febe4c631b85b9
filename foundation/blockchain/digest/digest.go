// Package digest produces the canonical byte form of blockchain values and the
// sha256 digest of that form. Two values with the same fields produce the same
// digest no matter the order the fields were declared or inserted in.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrEncoding is returned when a value can't be put into canonical form.
var ErrEncoding = errors.New("canonical encoding failed")

// ErrInvalidDigest is returned when a string is not a hex encoded digest.
var ErrInvalidDigest = errors.New("invalid digest")

// ExcludedKey is the top level field that is never part of the digest input.
// A block does not hash its own hash.
const ExcludedKey = "hash"

// Size is the number of hex characters in a digest.
const Size = 2 * sha256.Size

// =============================================================================

// Canonical returns the bytes that represent the value for hashing. The value
// must encode as a JSON object. The top level keys are sorted, the hash key is
// dropped and no insignificant whitespace or HTML escaping is produced.
func Canonical(value any) ([]byte, error) {
	data, err := marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: value is not an object: %w", ErrEncoding, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: value is null", ErrEncoding)
	}

	delete(fields, ExcludedKey)

	// The encoder writes map keys in sorted order.
	data, err = marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return data, nil
}

// Hash returns the hex encoded sha256 digest of the canonical form of
// the value.
func Hash(value any) (string, error) {
	data, err := Canonical(value)
	if err != nil {
		return "", err
	}

	return Sum(data), nil
}

// Sum returns the hex encoded sha256 digest of the raw bytes.
func Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return common.Bytes2Hex(hash[:])
}

// Decode converts a hex encoded digest back into its 32 bytes.
func Decode(digest string) ([]byte, error) {
	if len(digest) != Size {
		return nil, fmt.Errorf("%w: length %d, exp %d", ErrInvalidDigest, len(digest), Size)
	}

	b, err := hexutil.Decode("0x" + digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDigest, err)
	}

	return b, nil
}

// =============================================================================

// marshal encodes the value without HTML escaping and without the trailing
// newline the encoder adds.
func marshal(value any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
