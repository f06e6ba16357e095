package pymc

import (
	"testing"

	"github.com/go-python/gpython/py"
	_ "github.com/go-python/gpython/stdlib"
	"github.com/stretchr/testify/require"
)

const smokeScript = `
import multicurve as mc

P = mc.SignedPermutation([0, 1])
assert repr(P) == "[0 -> 0, 1 -> 1]"
assert P(1) == (1, 0)

t0 = mc.Strand('t', 0)
assert repr(t0) == "Transverse(0)"
assert mc.get_next_major_strand(P, 1, 1, t0) == (mc.Strand('p', 0, 0), 0)
assert mc.has_one_component(P, 1, 1) == (True, 0)
assert mc.count_components_with_orientability(P, 1, 1) == (1, 0)

F = mc.SignedPermutation([0, 1], [0])
assert repr(F) == "[0 -> -0, 1 -> 1]"
assert F(0) == (0, 1)
assert F.flips() == [0]
assert mc.has_one_component(F, 1, 1) == (True, 1)
assert mc.count_components_with_orientability(F, 1, 1) == (0, 1)

Q = mc.parse_permutation(repr(F))
assert repr(Q) == repr(F)

S = mc.SignedPermutation([1, 0], flips=[0, 1])
assert mc.two_sided_multicurves_upto_complexity(S, 6) == [(1, 2), (3, 2), (1, 4)]
report = mc.count_components_upto_complexity(S, 4)
assert report == [((1, 1), (0, 2)), ((2, 1), (1, 2)), ((1, 2), (1, 0))]

def raises(fn, *args):
    try:
        fn(*args)
    except ValueError as e:
        return str(e)
    return None

assert raises(mc.SignedPermutation, [0, 0]) == "Invalid permutation"
assert raises(mc.SignedPermutation, [0, 1], [5]) == "Invalid flip set"
assert raises(mc.Strand, 'x', 0) == "Invalid strand type: only 't' and 'p' allowed"
assert raises(P, 2) == "Invalid permutation"
assert raises(mc.parse_permutation, "[0 -> 1]") == "Invalid permutation"
assert raises(mc.has_one_component, P, 1, 0) is not None

caught = None
try:
    mc.SignedPermutation([0, 1], [2])
except mc.PermutationException as e:
    caught = str(e)
assert caught == "Invalid flip set"
assert issubclass(mc.PermutationException, ValueError)

# Non-permutation errors are plain ValueErrors
caught = None
try:
    mc.has_one_component(P, 0, 1)
except mc.PermutationException:
    caught = "PermutationException"
except ValueError:
    caught = "ValueError"
assert caught == "ValueError"

smoke_done = True
`

func TestModule(t *testing.T) {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	code, err := py.Compile(smokeScript, "<smoke>", py.ExecMode, 0, true)
	require.NoError(t, err)

	module, err := py.RunCode(ctx, code, "<smoke>", nil)
	if err != nil {
		py.TracebackDump(err)
	}
	require.NoError(t, err)

	// Every statement ran, not just the first
	require.Equal(t, py.True, module.Globals["smoke_done"])
}

func TestFailedAssertFails(t *testing.T) {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	code, err := py.Compile("import multicurve as mc\nassert mc.SignedPermutation([1, 0])(0) == (0, 0)\n", "<fail>", py.ExecMode, 0, true)
	require.NoError(t, err)

	_, err = py.RunCode(ctx, code, "<fail>", nil)
	require.Error(t, err)
}
