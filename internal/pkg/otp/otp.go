package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	Min = 100000
	Max = 999999
)

type Generator interface {
	Generate() (int, error)
}

type randomGenerator struct{}

func NewGenerator() Generator {
	return randomGenerator{}
}

// Generate returns a code uniformly drawn from [Min, Max].
func (randomGenerator) Generate() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(Max-Min+1))
	if err != nil {
		return 0, err
	}
	return Min + int(n.Int64()), nil
}

// Parse converts a submitted code into its numeric form.
func Parse(raw string) (int, bool) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
