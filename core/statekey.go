package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWrongLength = errors.New("wrong state length")
	ErrInvalidCell = errors.New("cell value is not a single digit")
)

// StateKey is the canonical encoding of a position: one digit per cell, in cell
// index order. Keys are only produced by Encoder so that two encodings of the same
// position are always equal.
type StateKey string

// Encoder turns fixed-size cell sequences into StateKeys.
type Encoder struct {
	Size int
}

func NewEncoder(size int) Encoder {
	return Encoder{Size: size}
}

func (e Encoder) Encode(cells []int) (StateKey, error) {
	if len(cells) != e.Size {
		return "", fmt.Errorf("%w: got %d cells, want %d", ErrWrongLength, len(cells), e.Size)
	}
	var b strings.Builder
	b.Grow(len(cells))
	for i, c := range cells {
		if c < 0 || c > 9 {
			return "", fmt.Errorf("%w: cell %d = %d", ErrInvalidCell, i, c)
		}
		b.WriteByte(byte('0' + c))
	}
	return StateKey(b.String()), nil
}

// MustEncode is Encode for inputs that are known to be well formed.
func (e Encoder) MustEncode(cells []int) StateKey {
	key, err := e.Encode(cells)
	if err != nil {
		panic(err)
	}
	return key
}

// Validate checks a key that did not come from Encode, e.g. one read back from a
// persisted model.
func (e Encoder) Validate(key StateKey) error {
	if len(key) != e.Size {
		return fmt.Errorf("%w: key %q has %d cells, want %d", ErrWrongLength, string(key), len(key), e.Size)
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return fmt.Errorf("%w: key %q at %d", ErrInvalidCell, string(key), i)
		}
	}
	return nil
}

// Decode returns the cell values of a valid key.
func (e Encoder) Decode(key StateKey) ([]int, error) {
	if err := e.Validate(key); err != nil {
		return nil, err
	}
	cells := make([]int, len(key))
	for i := 0; i < len(key); i++ {
		cells[i] = int(key[i] - '0')
	}
	return cells, nil
}
