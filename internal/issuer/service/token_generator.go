// Package service generates payment tokens and verifies the issuer API credentials.
package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/cardtoken/internal/cardvalidation"
	issuerDomain "github.com/allisson/cardtoken/internal/issuer/domain"
)

const (
	digitTokenLength = 16

	// luhnTokenPrefix is the major industry identifier 9, which no card network issues
	// under, so Luhn-shaped tokens never collide with real card numbers.
	luhnTokenPrefix = '9'

	alphanumericPrefix = "tok_"
	alphanumericLength = 24
	alphanumericChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// TokenGenerator issues and recognises tokens of one format.
type TokenGenerator interface {
	Generate() (string, error)
	Validate(token string) error
}

// NewTokenGenerator creates a generator for formatType drawing from crypto/rand.
func NewTokenGenerator(formatType issuerDomain.FormatType) (TokenGenerator, error) {
	return NewTokenGeneratorWithReader(formatType, rand.Reader)
}

// NewTokenGeneratorWithReader creates a generator for formatType drawing from random.
func NewTokenGeneratorWithReader(formatType issuerDomain.FormatType, random io.Reader) (TokenGenerator, error) {
	switch formatType {
	case issuerDomain.FormatUUID:
		return &uuidGenerator{random: random}, nil
	case issuerDomain.FormatNumeric:
		return &numericGenerator{random: random}, nil
	case issuerDomain.FormatLuhnPreserving:
		return &luhnGenerator{random: random}, nil
	case issuerDomain.FormatAlphanumeric:
		return &alphanumericGenerator{random: random}, nil
	default:
		return nil, issuerDomain.ErrInvalidFormatType
	}
}

type uuidGenerator struct {
	random io.Reader
}

func (g *uuidGenerator) Generate() (string, error) {
	id, err := uuid.NewRandomFromReader(g.random)
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid token: %w", err)
	}
	return id.String(), nil
}

func (g *uuidGenerator) Validate(token string) error {
	if err := uuid.Validate(token); err != nil {
		return errors.New("invalid UUID format")
	}
	return nil
}

type numericGenerator struct {
	random io.Reader
}

func (g *numericGenerator) Generate() (string, error) {
	digits, err := randomFrom(g.random, "0123456789", digitTokenLength)
	if err != nil {
		return "", err
	}
	return digits, nil
}

func (g *numericGenerator) Validate(token string) error {
	if len(token) != digitTokenLength || !allDigits(token) {
		return fmt.Errorf("token must be %d digits", digitTokenLength)
	}
	return nil
}

type luhnGenerator struct {
	random io.Reader
}

// Generate returns the prefix, 14 random digits and a Luhn check digit.
func (g *luhnGenerator) Generate() (string, error) {
	body, err := randomFrom(g.random, "0123456789", digitTokenLength-2)
	if err != nil {
		return "", err
	}
	partial := string(luhnTokenPrefix) + body
	return partial + string(rune('0'+luhnCheckDigit(partial))), nil
}

func (g *luhnGenerator) Validate(token string) error {
	if len(token) != digitTokenLength || !allDigits(token) {
		return fmt.Errorf("token must be %d digits", digitTokenLength)
	}
	if token[0] != luhnTokenPrefix {
		return errors.New("token has an unexpected prefix")
	}
	if !cardvalidation.LuhnValid(token) {
		return errors.New("token failed Luhn validation")
	}
	return nil
}

// luhnCheckDigit returns the digit that makes partial+digit pass the Luhn check.
func luhnCheckDigit(partial string) int {
	sum := 0
	double := true
	for i := len(partial) - 1; i >= 0; i-- {
		d := int(partial[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

type alphanumericGenerator struct {
	random io.Reader
}

func (g *alphanumericGenerator) Generate() (string, error) {
	body, err := randomFrom(g.random, alphanumericChars, alphanumericLength)
	if err != nil {
		return "", err
	}
	return alphanumericPrefix + body, nil
}

func (g *alphanumericGenerator) Validate(token string) error {
	body, ok := strings.CutPrefix(token, alphanumericPrefix)
	if !ok || len(body) != alphanumericLength {
		return fmt.Errorf("token must be %q followed by %d characters", alphanumericPrefix, alphanumericLength)
	}
	for _, c := range body {
		if !strings.ContainsRune(alphanumericChars, c) {
			return errors.New("token must contain only alphanumeric characters [A-Za-z0-9]")
		}
	}
	return nil
}

// randomFrom draws length characters uniformly from alphabet.
func randomFrom(random io.Reader, alphabet string, length int) (string, error) {
	out := make([]byte, length)
	n := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(random, n)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
