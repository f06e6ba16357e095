package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/2x3systems/multicurve/gomc"
	"github.com/2x3systems/multicurve/libmc"
	"github.com/2x3systems/multicurve/libmc/catalog"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

// permFlags selects the signed permutation every command works on.
type permFlags struct {
	seq   []int
	flips []int
	expr  string
}

func (pf *permFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.IntSliceVarP(&pf.seq, "perm", "p", nil, "permutation of 0..L-1, e.g. 1,2,0")
	flags.IntSliceVarP(&pf.flips, "flips", "f", nil, "flip indices, e.g. 0,2")
	flags.StringVar(&pf.expr, "perm-expr", "", `signed permutation in printed form, e.g. "[0 -> 2, 1 -> -0, 2 -> 1]"`)
}

func (pf *permFlags) load() (*libmc.SignedPerm, error) {
	if len(pf.expr) > 0 {
		if len(pf.seq) > 0 || len(pf.flips) > 0 {
			return nil, errors.New("--perm-expr can't be used with --perm or --flips")
		}
		return libmc.ParseSignedPerm(pf.expr)
	}
	return libmc.NewSignedPerm(pf.seq, pf.flips...)
}

// pairFlags are the m and n of a single surgery.
type pairFlags struct {
	m, n int
}

func (pf *pairFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&pf.m, "copies", "m", 1, "number of parallel copies of the permutation")
	cmd.Flags().IntVarP(&pf.n, "transverse", "n", 1, "number of transverse strands")
}

// parseStrand reads "t:i" or "p:j:k".
func parseStrand(str string) (gomc.Strand, error) {
	parts := strings.Split(str, ":")
	if len(parts) < 2 || len(parts) > 3 || len(parts[0]) != 1 {
		return gomc.Strand{}, errors.Errorf("bad strand %q (expected t:i or p:j:k)", str)
	}
	var idx [2]int
	for i, part := range parts[1:] {
		v, err := strconv.Atoi(part)
		if err != nil {
			return gomc.Strand{}, errors.Wrapf(err, "bad strand %q", str)
		}
		idx[i] = v
	}
	return gomc.NewStrand(rune(parts[0][0]), idx[0], idx[1])
}

func newNextCmd(permFlags *permFlags) *cobra.Command {
	var pair pairFlags
	var strandStr string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Prints the successor of a strand and whether the step flips orientation",
		RunE: func(cmd *cobra.Command, args []string) error {
			P, err := permFlags.load()
			if err != nil {
				return err
			}
			s, err := parseStrand(strandStr)
			if err != nil {
				return err
			}
			next, flip, err := libmc.GetNextMajorStrand(P, pair.m, pair.n, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v -> %v, flip %d\n", s, next, flip)
			return nil
		},
	}
	pair.register(cmd)
	cmd.Flags().StringVarP(&strandStr, "strand", "s", "t:0", "strand as t:i or p:j:k")
	return cmd
}

func newOneCmd(permFlags *permFlags) *cobra.Command {
	var pair pairFlags

	cmd := &cobra.Command{
		Use:   "one",
		Short: "Reports if the surgery yields a single curve and that curve's orientability parity",
		RunE: func(cmd *cobra.Command, args []string) error {
			P, err := permFlags.load()
			if err != nil {
				return err
			}
			one, parity, err := libmc.HasOneComponent(P, pair.m, pair.n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v (m,n)=(%d,%d): one component %v, parity %d\n", P, pair.m, pair.n, one, parity)
			return nil
		},
	}
	pair.register(cmd)
	return cmd
}

func newCountCmd(permFlags *permFlags) *cobra.Command {
	var pair pairFlags

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Counts two-sided and one-sided components of a single surgery",
		RunE: func(cmd *cobra.Command, args []string) error {
			P, err := permFlags.load()
			if err != nil {
				return err
			}
			tally, err := libmc.CountComponentsWithOrientability(P, pair.m, pair.n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v (m,n)=(%d,%d): %d two-sided, %d one-sided\n", P, pair.m, pair.n, tally.TwoSided, tally.OneSided)
			return nil
		},
	}
	pair.register(cmd)
	return cmd
}

func newVerifyCmd(permFlags *permFlags) *cobra.Command {
	var pair pairFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Checks that the transition rule is a bijection and the orbits partition the strand space",
		RunE: func(cmd *cobra.Command, args []string) error {
			P, err := permFlags.load()
			if err != nil {
				return err
			}
			sur, err := libmc.NewSurgery(P, pair.m, pair.n)
			if err != nil {
				return err
			}
			if err = sur.VerifyBijection(); err != nil {
				return err
			}
			orbits, err := sur.Orbits(nil)
			if err != nil {
				return err
			}
			for _, orbit := range orbits {
				klog.V(2).Infof("orbit from %v: length %d, parity %d", orbit.Origin, orbit.Length, orbit.Parity)
			}
			klog.V(1).Infof("%v %v: transition rule is a bijection", sur.Perm(), sur.Pair())
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d strands, %d orbits\n", sur.Size(), len(orbits))
			return nil
		},
	}
	pair.register(cmd)
	return cmd
}

// outputFlags select where and how a tally report is printed.
type outputFlags struct {
	format   string
	label    string
	pathname string
}

func (of *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&of.format, "format", string(gomc.FormatText), "output format: text or yaml")
	cmd.Flags().StringVar(&of.label, "label", "", "label prefixed to each text row")
	cmd.Flags().StringVarP(&of.pathname, "out", "o", "", "write the report to this file instead of stdout")
}

func (of *outputFlags) open(stdout io.Writer, pairsOnly bool) (io.WriteCloser, gomc.PrintOpts, error) {
	opts := gomc.DefaultPrintOpts
	opts.Label = of.label
	opts.Pairs = pairsOnly

	switch gomc.OutputFormat(of.format) {
	case gomc.FormatText, gomc.FormatYAML:
		opts.Format = gomc.OutputFormat(of.format)
	default:
		return nil, opts, errors.Errorf("unknown format %q", of.format)
	}

	writer := &echoToWriter{
		stdout: stdout,
	}
	if len(of.pathname) > 0 {
		if err := os.MkdirAll(filepath.Dir(of.pathname), 0700); err != nil {
			return nil, opts, errors.Wrap(err, "--out")
		}

		file, err := os.OpenFile(of.pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, opts, err
		}
		writer.to = file
	}
	return writer, opts, nil
}

// echoToWriter writes to a file when one is set and otherwise to stdout, which it never closes.
type echoToWriter struct {
	stdout io.Writer
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	if echo.to == nil {
		return echo.stdout.Write(buf)
	}
	return echo.to.Write(buf)
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

func openPermCatalog(P *libmc.SignedPerm, pathname string, readOnly bool) (gomc.Catalog, error) {
	return catalog.OpenCatalog(gomc.CatalogOpts{
		DbPathName: pathname,
		ReadOnly:   readOnly,
		PermKey:    P.AppendEncodingTo(nil),
	})
}

func newEnumerateCmd(permFlags *permFlags) *cobra.Command {
	var (
		out         outputFlags
		opts        = libmc.DefaultEnumOpts
		twoSided    bool
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Tallies every coprime (m,n) with m+n below the complexity bound",
		RunE: func(cmd *cobra.Command, args []string) error {
			P, err := permFlags.load()
			if err != nil {
				return err
			}

			var cat gomc.Catalog
			if len(catalogPath) > 0 {
				cat, err = openPermCatalog(P, catalogPath, false)
				if err != nil {
					return err
				}
				defer cat.Close()
				opts.Cache = cat
			}

			tallies, err := libmc.Enumerate(P, opts)
			if err != nil {
				return err
			}

			if cat != nil {
				added := gomc.StreamTallies(tallies).AddTo(cat).PullAll()
				klog.V(1).Infof("%v: %d new tallies added to %v", P, added, catalogPath)
			}

			writer, printOpts, err := out.open(cmd.OutOrStdout(), twoSided)
			if err != nil {
				return err
			}
			stream := gomc.StreamTallies(tallies)
			if twoSided {
				stream = stream.SelectOrientable()
			}
			count := stream.Print(writer, printOpts).PullAll()
			klog.V(1).Infof("%v: %d pairs reported below complexity %d", P, count, opts.Complexity)
			return nil
		},
	}
	out.register(cmd)
	cmd.Flags().IntVarP(&opts.Complexity, "complexity", "c", opts.Complexity, "enumerate pairs with m+n below this bound")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "worker pool size (0 uses all CPUs)")
	cmd.Flags().BoolVar(&twoSided, "two-sided", false, "only report pairs whose multicurve is entirely two-sided")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog db used to reuse and store tallies")
	return cmd
}

func newCatalogCmd(permFlags *permFlags) *cobra.Command {
	var (
		out            outputFlags
		orientableOnly bool
	)

	cmd := &cobra.Command{
		Use:   "catalog <db-path>",
		Short: "Prints the tallies stored in a catalog for the given permutation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			P, err := permFlags.load()
			if err != nil {
				return err
			}
			cat, err := openPermCatalog(P, args[0], true)
			if err != nil {
				return err
			}
			defer cat.Close()

			writer, printOpts, err := out.open(cmd.OutOrStdout(), orientableOnly)
			if err != nil {
				return err
			}
			gomc.SelectFromCatalog(cat, orientableOnly).Print(writer, printOpts).PullAll()
			return nil
		},
	}
	out.register(cmd)
	cmd.Flags().BoolVar(&orientableOnly, "two-sided", false, "only print entirely two-sided multicurves")
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [script.py]",
		Short: "Runs a python script with the multicurve module available, or starts a REPL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname := ""
			if len(args) > 0 {
				pathname = args[0]
			}
			return go_gpython(pathname)
		},
	}
}
