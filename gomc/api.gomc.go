package gomc

import "fmt"

// Flip is a single orientation bit: 0 if a step preserves orientation, 1 if it reverses it.
// Summed over an orbit (mod 2) it becomes the orbit's parity.
type Flip uint8

// Add returns the parity of f and g combined.
func (f Flip) Add(g Flip) Flip {
	return (f + g) & 1
}

// Pair identifies one multicurve construction: M parallel copies of the permutation surgered with N transverse strands.
type Pair struct {
	M int `yaml:"m"`
	N int `yaml:"n"`
}

// Complexity is M+N, the bound used when enumerating pairs.
func (p Pair) Complexity() int {
	return p.M + p.N
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.M, p.N)
}

// Tally counts the components of a multicurve by sidedness.
type Tally struct {
	TwoSided int `yaml:"two_sided"`
	OneSided int `yaml:"one_sided"`
}

// Components returns the total number of connected components.
func (t Tally) Components() int {
	return t.TwoSided + t.OneSided
}

// Orientable reports if every component is two-sided.
func (t Tally) Orientable() bool {
	return t.OneSided == 0
}

// AddOrbit tallies one closed orbit of the given parity.
func (t *Tally) AddOrbit(parity Flip) {
	if parity == 0 {
		t.TwoSided++
	} else {
		t.OneSided++
	}
}

func (t Tally) String() string {
	return fmt.Sprintf("(%d,%d)", t.TwoSided, t.OneSided)
}

// PairTally is one entry of an enumeration report.
type PairTally struct {
	Pair  `yaml:",inline"`
	Tally `yaml:",inline"`
}

// TallyAdder accepts computed tallies.
type TallyAdder interface {

	// Tries to add the given tally.
	// If true is returned, the pair was not yet present and was added.
	TryAddTally(PT PairTally) bool
}

// TallyCache returns previously computed tallies.
type TallyCache interface {
	// LookupTally returns the stored tally for the given pair, if any.
	LookupTally(pair Pair) (Tally, bool)
}

// OnTallyHit is a channel used to return PairTally's meeting a set of selection criteria.
type OnTallyHit chan<- PairTally

// Catalog wraps a database of computed tallies, keyed by signed permutation and Pair.
type Catalog interface {
	TallyAdder
	TallyCache

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumTallies returns the number of tallies stored for this catalog's permutation.
	NumTallies() int64

	// Select sends each stored tally to onHit, in ascending (M+N, N) order.
	// If orientableOnly is set, tallies with one-sided components are skipped.
	Select(orientableOnly bool, onHit OnTallyHit)

	Close() error
}

// CatalogOpts specifies params for opening a Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
	PermKey    []byte // canonical encoding of the signed permutation the tallies belong to
}

// OutputFormat selects how a TallyStream prints.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatYAML OutputFormat = "yaml"
)

// PrintOpts specifies what is printed when printing tallies
type PrintOpts struct {
	Label  string       // Prefix label
	Format OutputFormat // text or yaml
	Pairs  bool         // If set, only the (m,n) pair is printed
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Format: FormatText,
}

func (pt PairTally) String() string {
	return fmt.Sprintf("(%d,%d) -> (%d,%d)", pt.M, pt.N, pt.TwoSided, pt.OneSided)
}
