package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderEncode(t *testing.T) {
	e := NewEncoder(9)

	key, err := e.Encode([]int{1, 0, 2, 0, 1, 0, 0, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, StateKey("102010002"), key)

	empty, err := e.Encode(make([]int, 9))
	require.NoError(t, err)
	assert.Equal(t, StateKey("000000000"), empty)
}

func TestEncoderIsDeterministic(t *testing.T) {
	e := NewEncoder(4)
	a := e.MustEncode([]int{3, 1, 4, 1})
	b := e.MustEncode([]int{3, 1, 4, 1})
	c := e.MustEncode([]int{1, 4, 1, 3})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestEncoderErrors(t *testing.T) {
	e := NewEncoder(3)

	tests := []struct {
		name  string
		cells []int
		want  error
	}{
		{"short", []int{0, 1}, ErrWrongLength},
		{"long", []int{0, 1, 2, 0}, ErrWrongLength},
		{"empty", []int{}, ErrWrongLength},
		{"negative", []int{0, -1, 0}, ErrInvalidCell},
		{"two digits", []int{0, 10, 0}, ErrInvalidCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Encode(tt.cells)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Panics(t, func() { e.MustEncode([]int{1}) })
}

func TestEncoderValidateAndDecode(t *testing.T) {
	e := NewEncoder(3)

	cells, err := e.Decode("120")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, cells)

	assert.ErrorIs(t, e.Validate("12"), ErrWrongLength)
	assert.ErrorIs(t, e.Validate("1x0"), ErrInvalidCell)
	_, err = e.Decode("1234")
	assert.ErrorIs(t, err, ErrWrongLength)
}
