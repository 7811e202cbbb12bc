package utils

import (
	"crypto/rand"
	"math"
	"math/big"
	"strconv"
)

const (
	codeMin = 10000
	codeMax = 99999
)

// FiveDigitCode returns a random code in [10000, 99999].
func FiveDigitCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		// crypto/rand only fails when the OS source is unavailable.
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10)
}

// Round2 rounds an amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
