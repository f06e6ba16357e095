package libmc

import (
	"encoding/binary"
	"sort"
	"strconv"
	"strings"

	"github.com/2x3systems/multicurve/gomc"
	"github.com/pkg/errors"
)

// SignedPerm is a permutation of {0..L-1} together with a set of orientation-flipping indices.
//
// A SignedPerm is immutable once built and may be shared by any number of goroutines.
type SignedPerm struct {
	images  []int  // images[i] is where strand i is carried
	flipped []bool // flipped[i] is set if strand i reverses orientation
}

// NewSignedPerm builds a SignedPerm from seq, a permutation of {0..len(seq)-1}, and an optional set of flip indices.
//
// seq lists, for each position, the strand it receives: the stored map is the inverse of seq, so
// seq[i] == j means j is carried to i.  Duplicate flip indices are tolerated.
func NewSignedPerm(seq []int, flips ...int) (*SignedPerm, error) {
	L := len(seq)
	images := make([]int, L)
	for i := range images {
		images[i] = -1
	}

	for i, j := range seq {
		if j < 0 || j >= L {
			return nil, errors.Wrapf(gomc.ErrInvalidPermutation, "value %d at position %d is outside [0,%d)", j, i, L)
		}
		if images[j] >= 0 {
			return nil, errors.Wrapf(gomc.ErrInvalidPermutation, "value %d appears more than once", j)
		}
		images[j] = i
	}

	flipped, err := formFlips(L, flips)
	if err != nil {
		return nil, err
	}

	return &SignedPerm{
		images:  images,
		flipped: flipped,
	}, nil
}

// newSignedPermFromImages builds a SignedPerm directly from its stored map, where images[i] is the image of i.
func newSignedPermFromImages(images []int, flips []int) (*SignedPerm, error) {
	L := len(images)
	seen := make([]bool, L)
	for i, j := range images {
		if j < 0 || j >= L || seen[j] {
			return nil, errors.Wrapf(gomc.ErrInvalidPermutation, "bad image %d for index %d", j, i)
		}
		seen[j] = true
	}

	flipped, err := formFlips(L, flips)
	if err != nil {
		return nil, err
	}

	P := &SignedPerm{
		images:  make([]int, L),
		flipped: flipped,
	}
	copy(P.images, images)
	return P, nil
}

func formFlips(L int, flips []int) ([]bool, error) {
	flipped := make([]bool, L)
	for _, fi := range flips {
		if fi < 0 || fi >= L {
			return nil, errors.Wrapf(gomc.ErrInvalidFlipset, "flip index %d is outside [0,%d)", fi, L)
		}
		flipped[fi] = true
	}
	return flipped, nil
}

// Len returns L, the number of strands the permutation acts on.
func (P *SignedPerm) Len() int {
	return len(P.images)
}

// Eval returns the image of i and whether i is a flip index.
func (P *SignedPerm) Eval(i int) (int, gomc.Flip, error) {
	if i < 0 || i >= len(P.images) {
		return 0, 0, errors.Wrapf(gomc.ErrInvalidPermutation, "index %d is outside [0,%d)", i, len(P.images))
	}
	return P.images[i], P.flip(i), nil
}

// IsFlipped returns true if i is in the flip set.  Out of range indices are never flipped.
func (P *SignedPerm) IsFlipped(i int) bool {
	return i >= 0 && i < len(P.flipped) && P.flipped[i]
}

func (P *SignedPerm) flip(i int) gomc.Flip {
	if P.IsFlipped(i) {
		return 1
	}
	return 0
}

// Flips returns the flip set in ascending order.
func (P *SignedPerm) Flips() []int {
	var flips []int
	for i, f := range P.flipped {
		if f {
			flips = append(flips, i)
		}
	}
	return flips
}

// Images returns a copy of the stored map, where Images()[i] is the image of i.
func (P *SignedPerm) Images() []int {
	return append([]int(nil), P.images...)
}

// String renders the permutation as "[0 -> 2, 1 -> -0, 2 -> 1]", negating the image of each flip index.
func (P *SignedPerm) String() string {
	var b strings.Builder
	b.Grow(8 * len(P.images))
	b.WriteByte('[')
	for i, j := range P.images {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(i))
		b.WriteString(" -> ")
		if P.flipped[i] {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(j))
	}
	b.WriteByte(']')
	return b.String()
}

// AppendEncodingTo appends a canonical binary encoding of P, suitable for use as a db key prefix.
func (P *SignedPerm) AppendEncodingTo(out []byte) []byte {
	out = binary.AppendUvarint(out, uint64(len(P.images)))
	for _, j := range P.images {
		out = binary.AppendUvarint(out, uint64(j))
	}
	flips := P.Flips()
	out = binary.AppendUvarint(out, uint64(len(flips)))
	for _, fi := range flips {
		out = binary.AppendUvarint(out, uint64(fi))
	}
	return out
}

// DecodeSignedPerm is the inverse of AppendEncodingTo.
func DecodeSignedPerm(in []byte) (*SignedPerm, error) {
	pos := 0
	next := func() (int, error) {
		v, n := binary.Uvarint(in[pos:])
		if n <= 0 {
			return 0, gomc.ErrUnmarshal
		}
		pos += n
		return int(v), nil
	}

	L, err := next()
	if err != nil {
		return nil, err
	}
	if L > len(in) {
		return nil, gomc.ErrUnmarshal
	}
	images := make([]int, L)
	for i := range images {
		if images[i], err = next(); err != nil {
			return nil, err
		}
	}
	numFlips, err := next()
	if err != nil {
		return nil, err
	}
	if numFlips > L {
		return nil, gomc.ErrUnmarshal
	}
	flips := make([]int, numFlips)
	for i := range flips {
		if flips[i], err = next(); err != nil {
			return nil, err
		}
	}
	if pos != len(in) {
		return nil, gomc.ErrUnmarshal
	}
	if !sort.IntsAreSorted(flips) {
		return nil, gomc.ErrUnmarshal
	}
	return newSignedPermFromImages(images, flips)
}
