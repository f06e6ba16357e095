package libmc

import (
	"math/rand"
	"testing"

	"github.com/2x3systems/multicurve/gomc"
	"github.com/stretchr/testify/require"
)

// randomPerms returns a fixed pseudo-random sample of signed permutations of lengths 0..maxLen.
func randomPerms(t *testing.T, maxLen, perLen int) []*SignedPerm {
	rng := rand.New(rand.NewSource(2357))
	var perms []*SignedPerm
	for L := 0; L <= maxLen; L++ {
		for i := 0; i < perLen; i++ {
			var flips []int
			for fi := 0; fi < L; fi++ {
				if rng.Intn(3) == 0 {
					flips = append(flips, fi)
				}
			}
			P, err := NewSignedPerm(rng.Perm(L), flips...)
			require.NoError(t, err)
			perms = append(perms, P)
		}
	}
	return perms
}

func mustPerm(t *testing.T, seq []int, flips ...int) *SignedPerm {
	P, err := NewSignedPerm(seq, flips...)
	require.NoError(t, err)
	return P
}

func TestNextIdentity(t *testing.T) {
	P := mustPerm(t, []int{0, 1})

	sur, err := NewSurgery(P, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 3, sur.Size())

	path := []gomc.Strand{
		gomc.TransverseStrand(0),
		gomc.PermStrand(0, 0),
		gomc.PermStrand(1, 0),
		gomc.TransverseStrand(0),
	}
	for i := 0; i+1 < len(path); i++ {
		next, flip := sur.Next(path[i])
		require.Equal(t, path[i+1], next)
		require.Equal(t, gomc.Flip(0), flip)
	}

	// Flipping index 0 reverses orientation on the step leaving PermutationDirection(0, 0) only
	sur, err = NewSurgery(mustPerm(t, []int{0, 1}, 0), 1, 1)
	require.NoError(t, err)
	next, flip := sur.Next(gomc.PermStrand(0, 0))
	require.Equal(t, gomc.PermStrand(1, 0), next)
	require.Equal(t, gomc.Flip(1), flip)
	_, flip = sur.Next(gomc.PermStrand(1, 0))
	require.Equal(t, gomc.Flip(0), flip)
}

func TestNextCopies(t *testing.T) {
	// L=2, m=3, n=2: flipped index 1 mirrors the copy index
	P := mustPerm(t, []int{1, 0}, 1)
	sur, err := NewSurgery(P, 3, 2)
	require.NoError(t, err)

	// PermDir(1,0): k' = 2, j' = 0, abs = 2, 2+2 < 6 -> abs 4 -> (1,1)
	next, flip := sur.Next(gomc.PermStrand(1, 0))
	require.Equal(t, gomc.PermStrand(1, 1), next)
	require.Equal(t, gomc.Flip(1), flip)

	// PermDir(0,2): j' = 1, abs = 5, 5+2 >= 6 -> Transverse(6-5-1)
	next, flip = sur.Next(gomc.PermStrand(0, 2))
	require.Equal(t, gomc.TransverseStrand(0), next)
	require.Equal(t, gomc.Flip(0), flip)

	// Transverse(1): 1+6 >= 2 -> abs = 0 -> (0,0)
	next, _ = sur.Next(gomc.TransverseStrand(1))
	require.Equal(t, gomc.PermStrand(0, 0), next)

	// With more transverse strands than permutation strands, transverse strands cycle among themselves first
	sur, err = NewSurgery(mustPerm(t, []int{0}), 1, 3)
	require.NoError(t, err)
	next, _ = sur.Next(gomc.TransverseStrand(1))
	require.Equal(t, gomc.TransverseStrand(2), next)
	next, _ = sur.Next(gomc.TransverseStrand(2))
	require.Equal(t, gomc.PermStrand(0, 0), next)
}

func TestSurgeryParams(t *testing.T) {
	P := mustPerm(t, []int{0, 1})

	_, err := NewSurgery(P, 0, 1)
	require.ErrorIs(t, err, gomc.ErrNoCopies)

	_, err = NewSurgery(P, -1, 1)
	require.ErrorIs(t, err, gomc.ErrBadParam)

	_, err = NewSurgery(nil, 1, 1)
	require.ErrorIs(t, err, gomc.ErrBadParam)

	sur, err := NewSurgery(P, 3, 2)
	require.NoError(t, err)
	require.Same(t, P, sur.Perm())
	require.Equal(t, gomc.Pair{M: 3, N: 2}, sur.Pair())
	require.Equal(t, 8, sur.Size())

	_, _, err = GetNextMajorStrand(P, 1, 1, gomc.TransverseStrand(1))
	require.ErrorIs(t, err, gomc.ErrStrandOutOfRange)

	_, _, err = GetNextMajorStrand(P, 1, 1, gomc.PermStrand(0, 1))
	require.ErrorIs(t, err, gomc.ErrStrandOutOfRange)

	next, flip, err := GetNextMajorStrand(P, 1, 1, gomc.TransverseStrand(0))
	require.NoError(t, err)
	require.Equal(t, gomc.PermStrand(0, 0), next)
	require.Equal(t, gomc.Flip(0), flip)
}

func TestStrandIndexing(t *testing.T) {
	sur, err := NewSurgery(mustPerm(t, []int{2, 0, 1}), 4, 5)
	require.NoError(t, err)

	prev := gomc.Strand{}
	for idx := 0; idx < sur.Size(); idx++ {
		s := sur.StrandAt(idx)
		require.True(t, sur.Contains(s))
		require.Equal(t, idx, sur.IndexOf(s))
		if idx > 0 {
			require.Negative(t, gomc.CompareStrands(prev, s))
		}
		prev = s
	}
	require.False(t, sur.Contains(gomc.PermStrand(3, 0)))
	require.False(t, sur.Contains(gomc.TransverseStrand(5)))
	require.False(t, sur.Contains(gomc.Strand{Kind: 'x'}))
}

func TestBijection(t *testing.T) {
	for _, P := range randomPerms(t, 6, 4) {
		for m := 1; m <= 5; m++ {
			for n := 0; n <= 5; n++ {
				sur, err := NewSurgery(P, m, n)
				require.NoError(t, err)
				require.NoError(t, sur.VerifyBijection(), "%v m=%d n=%d", P, m, n)
			}
		}
	}
}
