package main

import (
	"flag"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	root := newRootCmd()
	root.PersistentFlags().AddGoFlagSet(fset)

	err := root.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gomc",
		Short:         "Counts and classifies the components of surgered multicurves",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var permFlags permFlags
	permFlags.register(root)

	root.AddCommand(
		newNextCmd(&permFlags),
		newOneCmd(&permFlags),
		newCountCmd(&permFlags),
		newVerifyCmd(&permFlags),
		newEnumerateCmd(&permFlags),
		newCatalogCmd(&permFlags),
		newRunCmd(),
	)
	return root
}
