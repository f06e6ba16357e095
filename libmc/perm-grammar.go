package libmc

import (
	"github.com/2x3systems/multicurve/gomc"
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"
)

// PermExpr is the parsed form of SignedPerm.String(), e.g. "[0 -> 2, 1 -> -0, 2 -> 1]"
type PermExpr struct {
	Maps []*PermMap `"[" (@@ ("," @@)*)? "]"`
}

// PermMap is one "i -> j" or "i -> -j" entry of a PermExpr.
type PermMap struct {
	From int  `@Int "-" ">"`
	Flip bool `@"-"?`
	To   int  `@Int`
}

var parsePermExpr = participle.MustBuild[PermExpr]()

// ParseSignedPerm reads a signed permutation in the form written by SignedPerm.String().
// Entries may be listed in any order but each index 0..L-1 must appear exactly once on the left.
func ParseSignedPerm(permExpr string) (*SignedPerm, error) {
	expr, err := parsePermExpr.ParseString("", permExpr)
	if err != nil {
		return nil, errors.Wrap(gomc.ErrInvalidPermutation, err.Error())
	}

	L := len(expr.Maps)
	images := make([]int, L)
	assigned := make([]bool, L)
	var flips []int

	for _, pm := range expr.Maps {
		if pm.From < 0 || pm.From >= L || assigned[pm.From] {
			return nil, errors.Wrapf(gomc.ErrInvalidPermutation, "index %d is repeated or outside [0,%d)", pm.From, L)
		}
		assigned[pm.From] = true
		images[pm.From] = pm.To
		if pm.Flip {
			flips = append(flips, pm.From)
		}
	}

	return newSignedPermFromImages(images, flips)
}
