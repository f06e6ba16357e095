package pymc

import (
	"errors"

	"github.com/2x3systems/multicurve/gomc"
	"github.com/2x3systems/multicurve/libmc"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pySignedPermType = py.NewType("SignedPermutation", "permutation and flip data")
	pyStrandType     = py.NewType("Strand", "a transverse ('t') or permutation direction ('p') strand")

	// PermutationException is raised for a malformed permutation, flip set, or strand type.
	// It derives from ValueError so callers catching ValueError still see it.
	PermutationException = py.ValueError.NewType("PermutationException", "invalid signed permutation or strand", nil, nil)
)

// pyErr converts a libmc error into a Python exception.
func pyErr(err error) error {
	switch {
	case errors.Is(err, gomc.ErrInvalidPermutation):
		return py.ExceptionNewf(PermutationException, "Invalid permutation")
	case errors.Is(err, gomc.ErrInvalidFlipset):
		return py.ExceptionNewf(PermutationException, "Invalid flip set")
	case errors.Is(err, gomc.ErrInvalidStrandType):
		return py.ExceptionNewf(PermutationException, "Invalid strand type: only 't' and 'p' allowed")
	}
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

func loadInts(obj py.Object) ([]int, error) {
	if obj == nil || obj == py.None {
		return nil, nil
	}
	items, err := py.SequenceTuple(obj)
	if err != nil {
		return nil, err
	}
	ints := make([]int, len(items))
	for i, item := range items {
		v, err := py.GetInt(item)
		if err != nil {
			return nil, err
		}
		ints[i] = int(v)
	}
	return ints, nil
}

func loadInt(obj py.Object) (int, error) {
	v, err := py.GetInt(obj)
	return int(v), err
}

/////////////////////////////////
// SignedPermutation

type pySignedPerm struct {
	*libmc.SignedPerm
}

func (P pySignedPerm) Type() *py.Type {
	return pySignedPermType
}

func (P pySignedPerm) M__str__() (py.Object, error) {
	return py.String(P.String()), nil
}

func (P pySignedPerm) M__repr__() (py.Object, error) {
	return P.M__str__()
}

// M__call__ evaluates the permutation at an index, returning (image, flip)
func (P pySignedPerm) M__call__(args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	var idxObj py.Object
	if err := py.ParseTuple(args, "i", &idxObj); err != nil {
		return nil, err
	}
	idx, err := loadInt(idxObj)
	if err != nil {
		return nil, err
	}
	image, flip, err := P.Eval(idx)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Tuple{py.Int(image), py.Int(flip)}, nil
}

func getSignedPerm(obj py.Object) (*libmc.SignedPerm, error) {
	P, ok := obj.(pySignedPerm)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected SignedPermutation object (got %v)", obj.Type().Name)
	}
	return P.SignedPerm, nil
}

// Arg 1 (sequence of int): permutation of 0..L-1
// Arg 2 (sequence of int, optional): flip indices
func py_SignedPermutation(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	var permObj, flipsObj py.Object
	err := py.ParseTupleAndKeywords(args, kwargs, "O|O:SignedPermutation", []string{"permutation", "flips"}, &permObj, &flipsObj)
	if err != nil {
		return nil, err
	}
	seq, err := loadInts(permObj)
	if err != nil {
		return nil, err
	}
	flips, err := loadInts(flipsObj)
	if err != nil {
		return nil, err
	}

	P, err := libmc.NewSignedPerm(seq, flips...)
	if err != nil {
		return nil, pyErr(err)
	}
	return pySignedPerm{P}, nil
}

func py_ParsePermutation(module py.Object, args py.Tuple) (py.Object, error) {
	var expr string
	if err := py.LoadTuple(args, []interface{}{&expr}); err != nil {
		return nil, err
	}
	P, err := libmc.ParseSignedPerm(expr)
	if err != nil {
		return nil, pyErr(err)
	}
	return pySignedPerm{P}, nil
}

/////////////////////////////////
// Strand

type pyStrand struct {
	gomc.Strand
}

func (s pyStrand) Type() *py.Type {
	return pyStrandType
}

func (s pyStrand) M__str__() (py.Object, error) {
	return py.String(s.String()), nil
}

func (s pyStrand) M__repr__() (py.Object, error) {
	return s.M__str__()
}

func (s pyStrand) M__eq__(other py.Object) (py.Object, error) {
	if o, ok := other.(pyStrand); ok {
		return py.NewBool(s.Strand == o.Strand), nil
	}
	return py.NotImplemented, nil
}

func (s pyStrand) M__ne__(other py.Object) (py.Object, error) {
	if o, ok := other.(pyStrand); ok {
		return py.NewBool(s.Strand != o.Strand), nil
	}
	return py.NotImplemented, nil
}

// Arg 1 (str): 't' or 'p'
// Arg 2 (int): transverse index or permutation index
// Arg 3 (int, optional): copy index
func py_Strand(module py.Object, args py.Tuple) (py.Object, error) {
	var kind string
	var a, b int
	if len(args) < 2 || len(args) > 3 {
		return nil, py.ExceptionNewf(py.TypeError, "Strand() takes 2 or 3 arguments (%d given)", len(args))
	}
	if err := py.LoadTuple(args[:1], []interface{}{&kind}); err != nil {
		return nil, err
	}
	var err error
	if a, err = loadInt(args[1]); err != nil {
		return nil, err
	}
	if len(args) > 2 {
		if b, err = loadInt(args[2]); err != nil {
			return nil, err
		}
	}
	if len(kind) != 1 {
		return nil, pyErr(gomc.ErrInvalidStrandType)
	}

	s, err := gomc.NewStrand(rune(kind[0]), a, b)
	if err != nil {
		return nil, pyErr(err)
	}
	return pyStrand{s}, nil
}

/////////////////////////////////
// Operations

// loadPermMN reads the leading (perm, m, n) args common to the per-pair operations.
func loadPermMN(args py.Tuple, extra int) (*libmc.SignedPerm, int, int, error) {
	if len(args) != 3+extra {
		return nil, 0, 0, py.ExceptionNewf(py.TypeError, "expected %d arguments (%d given)", 3+extra, len(args))
	}
	P, err := getSignedPerm(args[0])
	if err != nil {
		return nil, 0, 0, err
	}
	m, err := loadInt(args[1])
	if err != nil {
		return nil, 0, 0, err
	}
	n, err := loadInt(args[2])
	if err != nil {
		return nil, 0, 0, err
	}
	return P, m, n, nil
}

func py_GetNextMajorStrand(module py.Object, args py.Tuple) (py.Object, error) {
	P, m, n, err := loadPermMN(args, 1)
	if err != nil {
		return nil, err
	}
	s, ok := args[3].(pyStrand)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Strand object (got %v)", args[3].Type().Name)
	}
	next, flip, err := libmc.GetNextMajorStrand(P, m, n, s.Strand)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Tuple{pyStrand{next}, py.Int(flip)}, nil
}

func py_HasOneComponent(module py.Object, args py.Tuple) (py.Object, error) {
	P, m, n, err := loadPermMN(args, 0)
	if err != nil {
		return nil, err
	}
	one, parity, err := libmc.HasOneComponent(P, m, n)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Tuple{py.NewBool(one), py.Int(parity)}, nil
}

func py_CountComponentsWithOrientability(module py.Object, args py.Tuple) (py.Object, error) {
	P, m, n, err := loadPermMN(args, 0)
	if err != nil {
		return nil, err
	}
	tally, err := libmc.CountComponentsWithOrientability(P, m, n)
	if err != nil {
		return nil, pyErr(err)
	}
	return tallyTuple(tally), nil
}

func tallyTuple(tally gomc.Tally) py.Tuple {
	return py.Tuple{py.Int(tally.TwoSided), py.Int(tally.OneSided)}
}

func pairTuple(pair gomc.Pair) py.Tuple {
	return py.Tuple{py.Int(pair.M), py.Int(pair.N)}
}

func loadPermComplexity(args py.Tuple) (*libmc.SignedPerm, libmc.EnumOpts, error) {
	opts := libmc.DefaultEnumOpts
	if len(args) != 2 {
		return nil, opts, py.ExceptionNewf(py.TypeError, "expected 2 arguments (%d given)", len(args))
	}
	P, err := getSignedPerm(args[0])
	if err != nil {
		return nil, opts, err
	}
	opts.Complexity, err = loadInt(args[1])
	return P, opts, err
}

func py_CountComponentsUptoComplexity(module py.Object, args py.Tuple) (py.Object, error) {
	P, opts, err := loadPermComplexity(args)
	if err != nil {
		return nil, err
	}
	tallies, err := libmc.CountComponentsUptoComplexity(P, opts)
	if err != nil {
		return nil, pyErr(err)
	}
	items := make([]py.Object, len(tallies))
	for i, PT := range tallies {
		items[i] = py.Tuple{pairTuple(PT.Pair), tallyTuple(PT.Tally)}
	}
	return py.NewListFromItems(items), nil
}

func py_TwoSidedMulticurvesUptoComplexity(module py.Object, args py.Tuple) (py.Object, error) {
	P, opts, err := loadPermComplexity(args)
	if err != nil {
		return nil, err
	}
	pairs, err := libmc.TwoSidedMulticurvesUptoComplexity(P, opts)
	if err != nil {
		return nil, pyErr(err)
	}
	items := make([]py.Object, len(pairs))
	for i, pair := range pairs {
		items[i] = pairTuple(pair)
	}
	return py.NewListFromItems(items), nil
}

func init() {

	/////////////////////////////////
	// SignedPermutation
	{
		pySignedPermType.Dict["flips"] = py.MustNewMethod("flips", func(self py.Object, args py.Tuple) (py.Object, error) {
			P := self.(pySignedPerm)
			items := []py.Object{}
			for _, fi := range P.Flips() {
				items = append(items, py.Int(fi))
			}
			return py.NewListFromItems(items), nil
		}, 0, "returns the flip indices in ascending order")
		pySignedPermType.Dict["length"] = py.MustNewMethod("length", func(self py.Object, args py.Tuple) (py.Object, error) {
			return py.Int(self.(pySignedPerm).Len()), nil
		}, 0, "returns the number of strands the permutation acts on")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("SignedPermutation", py_SignedPermutation, 0, "SignedPermutation(permutation, flips=[]) -> SignedPermutation"),
			py.MustNewMethod("Strand", py_Strand, 0, "Strand(kind, a, b=0) -> Strand"),
			py.MustNewMethod("parse_permutation", py_ParsePermutation, 0, "reads a SignedPermutation from its repr"),
			py.MustNewMethod("get_next_major_strand", py_GetNextMajorStrand, 0, "get_next_major_strand(perm, m, n, strand) -> (strand, flip)"),
			py.MustNewMethod("has_one_component", py_HasOneComponent, 0, "has_one_component(perm, m, n) -> (bool, parity)"),
			py.MustNewMethod("count_components_with_orientability", py_CountComponentsWithOrientability, 0, "count_components_with_orientability(perm, m, n) -> (two_sided, one_sided)"),
			py.MustNewMethod("count_components_upto_complexity", py_CountComponentsUptoComplexity, 0, "count_components_upto_complexity(perm, complexity) -> [((m, n), (two_sided, one_sided))]"),
			py.MustNewMethod("two_sided_multicurves_upto_complexity", py_TwoSidedMulticurvesUptoComplexity, 0, "two_sided_multicurves_upto_complexity(perm, complexity) -> [(m, n)]"),
		}

		globals := py.StringDict{
			"LIB_VERSION":          py.String(LIB_VERSION),
			"PermutationException": PermutationException,
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "multicurve",
				Doc:  "resolves via surgery an intersection of a signed permutation with transverse strands",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
