package trace

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"math/rand"
)

// Group is a prime-order subgroup of Z_p^*: p = q*r + 1 with q prime, and g = h^r
// generates the subgroup of order q. It is small enough that all arithmetic
// fits in uint64.
type Group struct {
	P uint64 `json:"p"`
	Q uint64 `json:"q"`
	R uint64 `json:"r"`
	H uint64 `json:"h"`
	G uint64 `json:"g"`
}

var smallPrimes = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29,
	31, 37, 41, 43, 47, 53, 59, 61, 67,
	71, 73, 79, 83, 89, 97, 101, 103,
	107, 109, 113, 127, 131, 137, 139,
	149, 151, 157, 163, 167, 173, 179,
	181, 191, 193, 197, 199, 211, 223,
	227, 229, 233, 239, 241, 251, 257,
	263, 269, 271, 277, 281, 283, 293,
	307, 311, 313, 317, 331, 337, 347, 349}

// number of r candidates tried for one q before drawing a new q
const maxCofactorTries = 1000

func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

func powMod(a, b, m uint64) uint64 {
	x := uint64(1) % m
	a %= m
	for b > 0 {
		if b&1 == 1 {
			x = mulMod(x, a, m)
		}
		a = mulMod(a, a, m)
		b >>= 1
	}
	return x
}

// uniform returns a uniform integer in [lo, hi].
func uniform(rng *rand.Rand, lo, hi uint64) uint64 {
	return lo + uint64(rng.Int63n(int64(hi-lo+1)))
}

func isPrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(20)
}

// randomOfSize returns a random number with exactly nbits bits.
func randomOfSize(rng *rand.Rand, nbits int) uint64 {
	top := uint64(1) << (nbits - 1)
	return uniform(rng, 0, top-1) | top
}

// lowLevelPrime draws numbers of nbits bits until one survives trial division.
func lowLevelPrime(rng *rand.Rand, nbits int) uint64 {
	for {
		c := randomOfSize(rng, nbits)
		composite := false
		for _, p := range smallPrimes {
			if c == p {
				return c
			}
			if c%p == 0 {
				composite = true
				break
			}
		}
		if !composite {
			return c
		}
	}
}

func bigPrime(rng *rand.Rand, nbits int) uint64 {
	for {
		c := lowLevelPrime(rng, nbits)
		if isPrime(c) {
			return c
		}
	}
}

// NewGroup picks group parameters: q is a qBits-bit prime and the cofactor r is
// drawn from [2, 2^rBits mod 65535].
func NewGroup(rng *rand.Rand, qBits, rBits int) (Group, error) {
	if qBits < 2 || qBits > 31 {
		return Group{}, fmt.Errorf("q must have between 2 and 31 bits, got %d", qBits)
	}
	if rBits < 1 {
		return Group{}, fmt.Errorf("r must have at least 1 bit, got %d", rBits)
	}
	rMax := powMod(2, uint64(rBits), 65535)
	if rMax < 2 {
		return Group{}, errors.New("cofactor range is empty; pick another r size")
	}
	for {
		q := bigPrime(rng, qBits)
		for i := 0; i < maxCofactorTries; i++ {
			r := uniform(rng, 2, rMax)
			p := q*r + 1
			if !isPrime(p) {
				continue
			}
			h := uniform(rng, 2, p-1)
			g := powMod(h, r, p)
			if g != 1 {
				return Group{P: p, Q: q, R: r, H: h, G: g}, nil
			}
		}
	}
}

// Random returns g^k mod p for a uniform exponent k in [0, q-1].
func (g Group) Random(rng *rand.Rand) uint64 {
	return powMod(g.G, uniform(rng, 0, g.Q-1), g.P)
}

// Exp returns x^k mod p.
func (g Group) Exp(x, k uint64) uint64 {
	return powMod(x, k, g.P)
}

func (g Group) String() string {
	return fmt.Sprintf("p=%d,q=%d,r=%d,h=%d,g=%d", g.P, g.Q, g.R, g.H, g.G)
}
