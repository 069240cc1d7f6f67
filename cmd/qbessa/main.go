package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/raymyers/qbessa/pkg/irgen"
	"github.com/raymyers/qbessa/pkg/qbeemit"
	"github.com/raymyers/qbessa/pkg/ssa"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qbessa",
		Short:         "qbessa lowers a built-in demo program to textual SSA IR",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.AddCommand(newBuildCmd(out, errOut))
	rootCmd.AddCommand(newListCmd(out))
	return rootCmd
}

func newBuildCmd(out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "build <demo>",
		Short: "lower one of the built-in demo programs and print its IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			d, ok := demos[name]
			if !ok {
				fmt.Fprintf(errOut, "qbessa: no such demo %q (try `qbessa list`)\n", name)
				return fmt.Errorf("unknown demo %q", name)
			}
			m := ssa.NewModule()
			p := qbeemit.NewPrinter(out)
			g := irgen.NewGen(m, p)
			d.build(g, p)
			return nil
		},
	}
}

func newListCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the built-in demo programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(demos))
			for name := range demos {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%-10s %s\n", name, demos[name].desc)
			}
			return nil
		},
	}
}
