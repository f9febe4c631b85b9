// Package pow implements the proof of work search used to admit blocks into
// the chain. A block is solved when its digest, read as an unsigned 256 bit
// integer, is strictly less than the bound derived from the difficulty.
package pow

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/holiman/uint256"
)

// Width is the number of bits in a block digest.
const Width = 256

// Set of errors returned by the mining operation.
var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrCancelled         = errors.New("mining cancelled")
	ErrTimeout           = errors.New("mining timed out")
)

// Candidate represents a block that can be mined. SetNonce is called with
// each candidate nonce before Digest is asked for the resulting hash.
type Candidate interface {
	SetNonce(nonce string)
	Digest() (string, error)
}

// Attempt describes a single nonce that was tried.
type Attempt struct {
	Number uint64
	Nonce  string
	Hash   string
	Solved bool
}

// Result describes the solution that was found.
type Result struct {
	Nonce    string
	Hash     string
	Attempts uint64
	Duration time.Duration
}

// =============================================================================

// Bound returns the admission bound for the difficulty: an integer with the
// (Width - difficulty) low bits set. Every difficulty step halves the range
// of acceptable digests so the expected number of attempts is 2^difficulty.
func Bound(difficulty uint) (*uint256.Int, error) {
	if difficulty > Width {
		return nil, fmt.Errorf("%w: %d exceeds the %d bit digest", ErrInvalidDifficulty, difficulty, Width)
	}

	bound := new(uint256.Int)
	if difficulty == 0 {
		return bound.SetAllOne(), nil
	}

	bound.Lsh(uint256.NewInt(1), Width-difficulty)
	return bound.SubUint64(bound, 1), nil
}

// IsAcceptable reports whether the hex encoded digest is strictly less than
// the bound for the difficulty. This is a magnitude comparison.
func IsAcceptable(hash string, difficulty uint) (bool, error) {
	bound, err := Bound(difficulty)
	if err != nil {
		return false, err
	}

	return isBelow(hash, bound)
}

// RandomNonce returns a candidate nonce: the hex encoded sha256 of 32 bytes
// of cryptographic randomness. It is not derived from the block.
func RandomNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading entropy: %w", err)
	}

	return digest.Sum(b), nil
}

// Nonces returns an infinite sequence of random candidate nonces. Each call
// returns a new sequence. The sequence ends after the first error or when the
// consumer stops ranging over it.
func Nonces() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			nonce, err := RandomNonce()
			if !yield(nonce, err) || err != nil {
				return
			}
		}
	}
}

// Mine assigns random nonces to the candidate until its digest clears the
// bound for the difficulty. The search only ends with a solution, an error
// computing the digest, or the context being cancelled or timing out. The
// onAttempt function is optional and is called for every nonce tried.
func Mine(ctx context.Context, c Candidate, difficulty uint, onAttempt func(Attempt)) (Result, error) {
	bound, err := Bound(difficulty)
	if err != nil {
		return Result{}, err
	}

	next, stop := iter.Pull2(Nonces())
	defer stop()

	start := time.Now()
	var attempts uint64

	for {
		if err := contextErr(ctx); err != nil {
			return Result{Attempts: attempts, Duration: time.Since(start)}, err
		}

		nonce, err, _ := next()
		if err != nil {
			return Result{}, err
		}
		attempts++

		c.SetNonce(nonce)
		hash, err := c.Digest()
		if err != nil {
			return Result{}, err
		}

		solved, err := isBelow(hash, bound)
		if err != nil {
			return Result{}, err
		}

		if onAttempt != nil {
			onAttempt(Attempt{Number: attempts, Nonce: nonce, Hash: hash, Solved: solved})
		}

		if solved {
			return Result{Nonce: nonce, Hash: hash, Attempts: attempts, Duration: time.Since(start)}, nil
		}
	}
}

// =============================================================================

func isBelow(hash string, bound *uint256.Int) (bool, error) {
	b, err := digest.Decode(hash)
	if err != nil {
		return false, err
	}

	return new(uint256.Int).SetBytes(b).Lt(bound), nil
}

func contextErr(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
}
