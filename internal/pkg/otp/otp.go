package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strconv"
)

const (
	// MinSixDigit is the smallest six digit code.
	MinSixDigit int64 = 100000
	// MaxSixDigit is the largest six digit code.
	MaxSixDigit int64 = 999999
)

// ErrInvalidRange is returned when min is negative or greater than max.
var ErrInvalidRange = errors.New("otp: invalid code range")

// OTP defines the contract for one-time code generation.
type OTP interface {
	// Generate returns a new random code as a decimal string.
	Generate() (string, error)
}

// Numeric draws integers uniformly from [min, max].
type Numeric struct {
	min    int64
	span   *big.Int
	reader io.Reader
}

// NewNumeric constructs a Numeric generator for the closed range [min, max].
func NewNumeric(min, max int64) (*Numeric, error) {
	if min < 0 || min > max {
		return nil, ErrInvalidRange
	}

	return &Numeric{
		min:    min,
		span:   big.NewInt(max - min + 1),
		reader: rand.Reader,
	}, nil
}

// NewSixDigit returns a generator for codes in [100000, 999999].
func NewSixDigit() *Numeric {
	n, _ := NewNumeric(MinSixDigit, MaxSixDigit) //nolint:errcheck // constant range is valid
	return n
}

// Generate returns a code in the configured range.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.reader, n.span)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.min+v.Int64(), 10), nil
}
