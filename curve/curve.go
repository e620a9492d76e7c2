// Package curve provides the secp256k1 scalar and point arithmetic the rest
// of this module treats as coming from an external collaborator. It wraps
// btcec.S256()'s elliptic.Curve implementation the same way bitcoin.Key and
// bitcoin.PublicKey do in the pack this module is grounded on: a Point is an
// (X, Y) pair of big.Int and a Scalar is a big.Int reduced mod the group
// order q.
package curve

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

var (
	curveS256 = btcec.S256()

	// Q is the order of the secp256k1 group.
	Q = curveS256.N

	// ErrNotOnCurve is returned when a point fails the curve membership check.
	ErrNotOnCurve = errors.New("point not on curve")

	// ErrZeroScalar is returned when a sampled or decoded scalar is zero.
	ErrZeroScalar = errors.New("scalar is zero")
)

// Scalar is an integer modulo the secp256k1 group order q.
type Scalar struct {
	v big.Int
}

// NewScalar reduces v modulo q and returns the result.
func NewScalar(v *big.Int) Scalar {
	var s Scalar
	s.v.Mod(v, Q)
	return s
}

// ScalarFromBytes interprets b as a big-endian integer and reduces it mod q.
func ScalarFromBytes(b []byte) Scalar {
	return NewScalar(new(big.Int).SetBytes(b))
}

// RandomScalar samples a scalar uniformly from [1, q) using r as the source
// of randomness (typically a transcript-seeded RNG, per the Σ-proof engine,
// or crypto/rand.Reader for long-lived keys).
func RandomScalar(r io.Reader) (Scalar, error) {
	for {
		v, err := rand.Int(r, Q)
		if err != nil {
			return Scalar{}, errors.Wrap(err, "random int")
		}
		if v.Sign() != 0 {
			return NewScalar(v), nil
		}
	}
}

// Big returns a copy of the underlying value.
func (s Scalar) Big() *big.Int {
	return new(big.Int).Set(&s.v)
}

// Bytes returns the 32-byte big-endian encoding of s.
func (s Scalar) Bytes() [32]byte {
	var out [32]byte
	b := s.v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// IsZero reports whether s is the zero scalar.
func (s Scalar) IsZero() bool {
	return s.v.Sign() == 0
}

// Equal reports whether s and o represent the same residue mod q.
func (s Scalar) Equal(o Scalar) bool {
	return s.v.Cmp(&o.v) == 0
}

// Add returns s + o mod q.
func (s Scalar) Add(o Scalar) Scalar {
	var out big.Int
	out.Add(&s.v, &o.v)
	out.Mod(&out, Q)
	return Scalar{v: out}
}

// Sub returns s - o mod q.
func (s Scalar) Sub(o Scalar) Scalar {
	var out big.Int
	out.Sub(&s.v, &o.v)
	out.Mod(&out, Q)
	return Scalar{v: out}
}

// Mul returns s * o mod q.
func (s Scalar) Mul(o Scalar) Scalar {
	var out big.Int
	out.Mul(&s.v, &o.v)
	out.Mod(&out, Q)
	return Scalar{v: out}
}

// Negate returns -s mod q.
func (s Scalar) Negate() Scalar {
	var out big.Int
	out.Neg(&s.v)
	out.Mod(&out, Q)
	return Scalar{v: out}
}

// Invert returns the multiplicative inverse of s mod q. Panics if s is zero;
// callers must check IsZero first, mirroring the invariant that a witness
// scalar is never zero.
func (s Scalar) Invert() Scalar {
	if s.IsZero() {
		panic("curve: invert of zero scalar")
	}
	var out big.Int
	out.ModInverse(&s.v, Q)
	return Scalar{v: out}
}

// IsOverHalfOrder reports whether s > q/2, the condition used for low-s
// signature normalisation.
func (s Scalar) IsOverHalfOrder() bool {
	half := new(big.Int).Rsh(Q, 1)
	return s.v.Cmp(half) > 0
}

// Point is a secp256k1 curve point in affine coordinates.
type Point struct {
	X, Y big.Int
}

// G is the standard secp256k1 generator.
var G = Point{X: *curveS256.Gx, Y: *curveS256.Gy}

// H is a second, nothing-up-my-sleeve generator used only by the Σ-proof
// engine's own DDH statement tests (spec.md §6, "secondary generator H").
// It is derived by hashing a fixed label to a scalar s and setting H = s·G,
// so its discrete log relative to G is the public value s.
var H = deriveH()

func deriveH() Point {
	seed := sha256Sum([]byte("ssecdsa/curve/second-generator/1.0"))
	s := ScalarFromBytes(seed)
	return G.Mul(s)
}

// PointFromCoords builds a point directly from coordinates, validating curve
// membership.
func PointFromCoords(x, y *big.Int) (Point, error) {
	if !curveS256.IsOnCurve(x, y) {
		return Point{}, ErrNotOnCurve
	}
	return Point{X: *x, Y: *y}, nil
}

// BaseMul returns s*G.
func BaseMul(s Scalar) Point {
	x, y := curveS256.ScalarBaseMult(s.v.Bytes())
	return Point{X: *x, Y: *y}
}

// Mul returns s*p.
func (p Point) Mul(s Scalar) Point {
	x, y := curveS256.ScalarMult(&p.X, &p.Y, s.v.Bytes())
	return Point{X: *x, Y: *y}
}

// Add returns p+o.
func (p Point) Add(o Point) Point {
	x, y := curveS256.Add(&p.X, &p.Y, &o.X, &o.Y)
	return Point{X: *x, Y: *y}
}

// Equal reports whether p and o are the same point.
func (p Point) Equal(o Point) bool {
	return p.X.Cmp(&o.X) == 0 && p.Y.Cmp(&o.Y) == 0
}

// IsIdentity reports whether p is the point at infinity (represented here,
// as in crypto/elliptic, by the coordinate pair (0, 0)).
func (p Point) IsIdentity() bool {
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

// XCoord returns a copy of the x-coordinate.
func (p Point) XCoord() *big.Int {
	return new(big.Int).Set(&p.X)
}

// YCoord returns a copy of the y-coordinate.
func (p Point) YCoord() *big.Int {
	return new(big.Int).Set(&p.Y)
}

// Bytes returns the 33-byte compressed encoding (0x02/0x03 prefix per
// standard secp256k1 point compression).
func (p Point) Bytes() [33]byte {
	var out [33]byte
	if p.Y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	b := p.X.Bytes()
	copy(out[33-len(b):], b)
	return out
}

// PointFromBytes decodes a 33-byte compressed point.
func PointFromBytes(b []byte) (Point, error) {
	if len(b) != 33 {
		return Point{}, errors.Errorf("point: want 33 bytes, got %d", len(b))
	}
	if b[0] != 0x02 && b[0] != 0x03 {
		return Point{}, errors.New("point: bad compression prefix")
	}

	x := new(big.Int).SetBytes(b[1:])
	y := decompressY(x, b[0] == 0x03)
	if y == nil {
		return Point{}, ErrNotOnCurve
	}

	return PointFromCoords(x, y)
}

func decompressY(x *big.Int, odd bool) *big.Int {
	params := curveS256.Params()

	// y^2 = x^3 + 7 mod p
	y2 := new(big.Int).Exp(x, big.NewInt(3), params.P)
	y2.Add(y2, big.NewInt(7))
	y2.Mod(y2, params.P)

	y := new(big.Int).ModSqrt(y2, params.P)
	if y == nil {
		return nil
	}

	if y.Bit(0) != boolToUint(odd) {
		y.Sub(params.P, y)
	}
	return y
}

func boolToUint(b bool) uint {
	if b {
		return 1
	}
	return 0
}
