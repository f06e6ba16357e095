package libmc

import (
	"context"
	"runtime"
	"time"

	"github.com/2x3systems/multicurve/gomc"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// EnumOpts specifies params for enumerating (m,n) pairs up to a complexity bound.
type EnumOpts struct {
	Complexity   int             // only pairs with m+n < Complexity are enumerated
	Workers      int             // worker pool size; <= 0 denotes runtime.NumCPU()
	TwoSidedOnly bool            // drop tallies having any one-sided component
	Cache        gomc.TallyCache // if set, consulted before computing each pair
}

// DefaultEnumOpts enumerates every coprime pair below complexity 12 using all CPUs.
var DefaultEnumOpts = EnumOpts{
	Complexity: 12,
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// CoprimePairs lists every (m,n) with k = m+n in [2, complexity), n in [1,k) and gcd(k,n) == 1, ordered by k then n.
func CoprimePairs(complexity int) []gomc.Pair {
	var pairs []gomc.Pair
	for k := 2; k < complexity; k++ {
		for n := 1; n < k; n++ {
			if gcd(k, n) == 1 {
				pairs = append(pairs, gomc.Pair{M: k - n, N: n})
			}
		}
	}
	return pairs
}

// Enumerate computes the tally of every pair from CoprimePairs(opts.Complexity) on a fixed-size worker pool.
//
// Each pair is an independent task reading only perm.  The first task to fail aborts the rest and its
// error is returned.  Results are returned in CoprimePairs order regardless of completion order.
func Enumerate(perm *SignedPerm, opts EnumOpts) ([]gomc.PairTally, error) {
	if perm == nil {
		return nil, errors.Wrap(gomc.ErrBadParam, "nil permutation")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pairs := CoprimePairs(opts.Complexity)
	tallies := make([]gomc.PairTally, len(pairs))

	klog.V(2).Infof("enumerating %d pairs below complexity %d for %v (%d workers)", len(pairs), opts.Complexity, perm, workers)
	startTime := time.Now()

	grp, ctx := errgroup.WithContext(context.Background())
	grp.SetLimit(workers)

	for i, pair := range pairs {
		i, pair := i, pair
		grp.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			tally, err := tallyPair(perm, pair, opts.Cache)
			if err != nil {
				klog.Errorf("aborting enumeration at %v: %v", pair, err)
				return errors.Wrapf(err, "pair %v", pair)
			}
			tallies[i] = gomc.PairTally{Pair: pair, Tally: tally}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	klog.V(2).Infof("enumerated %d pairs in %v", len(pairs), time.Since(startTime))

	if opts.TwoSidedOnly {
		kept := tallies[:0]
		for _, PT := range tallies {
			if PT.Orientable() {
				kept = append(kept, PT)
			}
		}
		tallies = kept
	}
	return tallies, nil
}

func tallyPair(perm *SignedPerm, pair gomc.Pair, cache gomc.TallyCache) (gomc.Tally, error) {
	if cache != nil {
		if tally, found := cache.LookupTally(pair); found {
			klog.V(3).Infof("%v: cached %v", pair, tally)
			return tally, nil
		}
	}

	tally, err := CountComponentsWithOrientability(perm, pair.M, pair.N)
	if err != nil {
		return tally, err
	}
	klog.V(3).Infof("%v: %v", pair, tally)
	return tally, nil
}

// CountComponentsUptoComplexity returns the tally of every coprime (m,n) pair with m+n < opts.Complexity.
func CountComponentsUptoComplexity(perm *SignedPerm, opts EnumOpts) ([]gomc.PairTally, error) {
	opts.TwoSidedOnly = false
	return Enumerate(perm, opts)
}

// TwoSidedMulticurvesUptoComplexity returns the coprime (m,n) pairs with m+n < opts.Complexity whose multicurve has no one-sided component.
func TwoSidedMulticurvesUptoComplexity(perm *SignedPerm, opts EnumOpts) ([]gomc.Pair, error) {
	opts.TwoSidedOnly = true
	tallies, err := Enumerate(perm, opts)
	if err != nil {
		return nil, err
	}
	pairs := make([]gomc.Pair, len(tallies))
	for i, PT := range tallies {
		pairs[i] = PT.Pair
	}
	return pairs, nil
}
