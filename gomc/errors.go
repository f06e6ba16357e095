package gomc

import "errors"

// Errors
var (
	ErrInvalidPermutation = errors.New("invalid permutation")
	ErrInvalidFlipset     = errors.New("invalid flip set")
	ErrInvalidStrandType  = errors.New("invalid strand type: only 't' and 'p' allowed")
	ErrStrandOutOfRange   = errors.New("strand is outside the strand space")
	ErrNoCopies           = errors.New("copy count m must be at least 1")
	ErrNoTransverse       = errors.New("transverse count n must be at least 1")
	ErrBadParam           = errors.New("bad surgery param")
	ErrBrokenOrbit        = errors.New("orbit walk failed to close")
	ErrNotBijective       = errors.New("transition rule is not a bijection")
	ErrBadCatalogParam    = errors.New("bad catalog param")
	ErrUnmarshal          = errors.New("unmarshal failed")
)
