// Package sigma implements the Fiat-Shamir Σ-protocol engine of spec.md
// §4.1: an interactive-to-NIZK compiler for Schnorr ("I know x s.t.
// gx = x·g") and Chaum-Pedersen DDH ("I know x s.t. gx = x·g ∧ hx = x·h")
// statements, driven by a single evolving transcript.
package sigma

import (
	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/transcript"
)

// Kind distinguishes a Schnorr statement from a DDH statement.
type Kind int

const (
	// Schnorr is the single-generator "gx = x·g" statement kind.
	Schnorr Kind = iota
	// DDH is the two-generator "gx = x·g ∧ hx = x·h" statement kind.
	DDH
)

// StatementKind carries the generator(s) a witness of this kind is proven
// against, per spec.md §4.1's "statement kind".
type StatementKind struct {
	Kind Kind
	G    curve.Point
	H    curve.Point // only meaningful when Kind == DDH
}

// SchnorrKind builds a Schnorr statement kind over generator g.
func SchnorrKind(g curve.Point) StatementKind {
	return StatementKind{Kind: Schnorr, G: g}
}

// DDHKind builds a DDH statement kind over generators g and h.
func DDHKind(g, h curve.Point) StatementKind {
	return StatementKind{Kind: DDH, G: g, H: h}
}

// Statement is a statement kind paired with its public images, per spec.md
// §4.1's "statement".
type Statement struct {
	Kind StatementKind
	Gx   curve.Point
	Hx   curve.Point // only meaningful when Kind.Kind == DDH
}

// Witness carries a secret scalar, the statement kind it is proven against,
// and the byte label the proof binds it to (spec.md §4.1's "witness").
type Witness struct {
	X     curve.Scalar
	Kind  StatementKind
	Label []byte
}

// NewSchnorrWitness builds a witness for the Schnorr statement "gx = x·g",
// labelled label.
func NewSchnorrWitness(x curve.Scalar, g curve.Point, label []byte) Witness {
	return Witness{X: x, Kind: SchnorrKind(g), Label: label}
}

// NewDDHWitness builds a witness for the DDH statement "gx = x·g ∧ hx = x·h",
// labelled label.
func NewDDHWitness(x curve.Scalar, g, h curve.Point, label []byte) Witness {
	return Witness{X: x, Kind: DDHKind(g, h), Label: label}
}

// toStatement evaluates the witness's implicit statement: gx = x·g (and
// hx = x·h for DDH), per spec.md §4.1's witness-to-statement step.
func (w Witness) toStatement() LabelledStatement {
	gx := w.Kind.G.Mul(w.X)
	st := Statement{Kind: w.Kind, Gx: gx}
	if w.Kind.Kind == DDH {
		st.Hx = w.Kind.H.Mul(w.X)
	}
	return LabelledStatement{Label: w.Label, Statement: st}
}

// LabelledStatement attaches a byte label to a statement so transcripts
// unambiguously bind each response to a protocol role, per spec.md §4.1.
type LabelledStatement struct {
	Label     []byte
	Statement Statement
}

// commitment is the per-witness blinding-point data (R = r·g, and r·h for
// DDH) produced while proving, and recovered algebraically while verifying.
type commitment struct {
	Gr curve.Point
	Hr curve.Point // only meaningful for DDH
}

// recoverCommitment reconstructs R' = s·g + (-c)·gx (plus the H side for
// DDH) from a claimed response s and challenge c, per spec.md §4.1 Verify
// step 3.
func (st Statement) recoverCommitment(minusC, s curve.Scalar) commitment {
	gr := st.Kind.G.Mul(s).Add(st.Gx.Mul(minusC))
	if st.Kind.Kind != DDH {
		return commitment{Gr: gr}
	}
	hr := st.Kind.H.Mul(s).Add(st.Hx.Mul(minusC))
	return commitment{Gr: gr, Hr: hr}
}

func (k StatementKind) genCommitment(r curve.Scalar) commitment {
	gr := k.G.Mul(r)
	if k.Kind != DDH {
		return commitment{Gr: gr}
	}
	return commitment{Gr: gr, Hr: k.H.Mul(r)}
}

// appendStatement absorbs a labelled statement into t, implementing spec.md
// §4.3's add_statement encodings byte-exactly.
func appendStatement(t *transcript.Transcript, ls LabelledStatement) {
	switch ls.Statement.Kind.Kind {
	case Schnorr:
		t.AppendMessage([]byte("sch"), ls.Label)
		appendPoint(t, []byte("g"), ls.Statement.Kind.G)
		appendPoint(t, []byte("gx"), ls.Statement.Gx)
	case DDH:
		t.AppendMessage([]byte("ddh"), ls.Label)
		appendPoint(t, []byte("g"), ls.Statement.Kind.G)
		appendPoint(t, []byte("gx"), ls.Statement.Gx)
		appendPoint(t, []byte("h"), ls.Statement.Kind.H)
		appendPoint(t, []byte("hx"), ls.Statement.Hx)
	}
}

// appendCommitment absorbs a commitment into t under label, implementing
// spec.md §4.3's add_commitment encodings byte-exactly.
func appendCommitment(t *transcript.Transcript, label []byte, kind Kind, c commitment) {
	switch kind {
	case Schnorr:
		t.AppendMessage([]byte("comm-sch"), label)
		appendPoint(t, []byte("gr"), c.Gr)
	case DDH:
		t.AppendMessage([]byte("comm-ddh"), label)
		appendPoint(t, []byte("gr"), c.Gr)
		appendPoint(t, []byte("hr"), c.Hr)
	}
}

// appendPoint absorbs a compressed point under label, per spec.md §4.3's
// add_point row.
func appendPoint(t *transcript.Transcript, label []byte, p curve.Point) {
	b := p.Bytes()
	t.AppendMessage(label, b[:])
}

// startProof domain-separates the proof under proofLabel, per spec.md §4.3's
// start_proof row.
func startProof(t *transcript.Transcript, proofLabel []byte) {
	t.AppendMessage([]byte("commit-nizk-sigma-proof/1.0"), proofLabel)
}

// getChallenge extracts a 32-byte challenge under label and reduces it mod
// q, per spec.md §4.3's get_challenge row.
func getChallenge(t *transcript.Transcript, label string) curve.Scalar {
	var raw [32]byte
	t.ChallengeBytes(label, raw[:])
	return curve.ScalarFromBytes(raw[:])
}
