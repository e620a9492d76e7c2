package curve

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func TestScalarInverse(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar: %s", err)
	}

	inv := s.Invert()
	product := s.Mul(inv)

	one := NewScalar(big.NewInt(1))
	if !product.Equal(one) {
		t.Fatalf("s * s^-1 != 1")
	}
}

func TestPointRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar: %s", err)
	}

	p := BaseMul(s)
	b := p.Bytes()

	decoded, err := PointFromBytes(b[:])
	if err != nil {
		t.Fatalf("decode point: %s", err)
	}

	if !decoded.Equal(p) {
		t.Fatalf("decoded point does not match original")
	}
}

func TestPointAddMatchesScalarAdd(t *testing.T) {
	a, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar a: %s", err)
	}
	b, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar b: %s", err)
	}

	lhs := BaseMul(a).Add(BaseMul(b))
	rhs := BaseMul(a.Add(b))

	if !lhs.Equal(rhs) {
		t.Fatalf("(aG + bG) != (a+b)G")
	}
}

func TestHIsNotG(t *testing.T) {
	if G.Equal(H) {
		t.Fatalf("H must not equal G")
	}
}

func TestNegateRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar: %s", err)
	}

	sum := s.Add(s.Negate())
	if !sum.IsZero() {
		t.Fatalf("s + (-s) != 0")
	}
}
