package crypto

import (
	"crypto/rand"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/alexedwards/argon2id"

	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

const (
	tokenLength     = 28
	longTokenLength = 52
	codeWords       = 4

	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

//go:embed words.txt
var wordsFile string

var ErrMalformedHash = errors.New("malformed password hash")

// Params are the argon2id cost settings written into every new hash.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// InteractiveParams follow the argon2 draft recommendation for interactive logins.
var InteractiveParams = Params{
	Time:    2,
	Memory:  64 * 1024,
	Threads: 1,
	SaltLen: 16,
	KeyLen:  32,
}

type Service struct {
	params Params
	words  []string
}

func NewService(params Params) *Service {
	return &Service{
		params: params,
		words:  strings.Fields(wordsFile),
	}
}

var _ ports.Crypto = (*Service)(nil)

func (p Params) argon2id() *argon2id.Params {
	return &argon2id.Params{
		Memory:      p.Memory,
		Iterations:  p.Time,
		Parallelism: p.Threads,
		SaltLength:  p.SaltLen,
		KeyLength:   p.KeyLen,
	}
}

// HashPassword returns the PHC string form of an argon2id hash along with
// the raw key.
func (s *Service) HashPassword(password string) (ports.PasswordHash, error) {
	encoded, err := argon2id.CreateHash(password, s.params.argon2id())
	if err != nil {
		return ports.PasswordHash{}, fmt.Errorf("failed to hash password: %w", err)
	}
	_, _, key, err := argon2id.DecodeHash(encoded)
	if err != nil {
		return ports.PasswordHash{}, fmt.Errorf("failed to decode fresh hash: %w", err)
	}
	return ports.PasswordHash{Encoded: encoded, Raw: key}, nil
}

// VerifyPassword recomputes the key with the parameters stored in encoded,
// so hashes written under older settings keep verifying.
func (s *Service) VerifyPassword(encoded, password string) (bool, error) {
	ok, err := argon2id.ComparePasswordAndHash(password, encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return ok, nil
}

func (s *Service) Token() string {
	return randomString(tokenLength)
}

func (s *Service) LongToken() string {
	return randomString(longTokenLength)
}

func (s *Service) ConfirmationCode() string {
	picked := make([]string, codeWords)
	total := big.NewInt(int64(len(s.words)))
	for i := range picked {
		n, err := rand.Int(rand.Reader, total)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		picked[i] = s.words[n.Int64()]
	}
	return strings.Join(picked, "-")
}

// randomString draws uniformly from alphanumeric by rejecting bytes past the
// largest multiple of its length.
func randomString(n int) string {
	const limit = 256 - 256%len(alphanumeric)

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
