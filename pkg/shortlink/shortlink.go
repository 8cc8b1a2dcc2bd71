package shortlink

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/Notemat/foodgram/internal/metrics"
)

const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var ErrInvalidLength = errors.New("short link length must be positive")

// ExistsFunc reports whether a code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type (
	Generator interface {
		Generate(ctx context.Context, exists ExistsFunc) (string, error)
	}

	generator struct {
		length int
	}
)

func NewGenerator(length int) Generator {
	return &generator{length: length}
}

func (g *generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	return GenerateUniqueCode(ctx, g.length, exists)
}

// GenerateUniqueCode draws random codes until exists reports one as free.
// The loop is bounded only by ctx.
func GenerateUniqueCode(ctx context.Context, length int, exists ExistsFunc) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := randomCode(length)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		metrics.ShortLinkCollisions.Inc()
	}
}

func randomCode(length int) (string, error) {
	base := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}
