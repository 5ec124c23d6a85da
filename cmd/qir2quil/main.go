package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"tlog.app/go/tlog"

	"github.com/qir2quil/qir2quil"
	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/irtext"
	"github.com/qir2quil/qir2quil/pkg/rewrite"
)

var version = "0.1.0"

var (
	addMainEntrypoint  bool
	targetFlag         string
	cacheExecutables   bool
	quilRewiringPragma string
	verbose            bool
	jsonOutput         bool
)

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
		Use:           "qir2quil",
		Short:         "qir2quil rewrites QIR shot loops into Quil-executing preambles",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every diagnostic warning")

	rootCmd.AddCommand(newTransformCmd(out, errOut))
	rootCmd.AddCommand(newTranspileCmd(out, errOut))
	return rootCmd
}

func newTransformCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform <input> <output>",
		Short: "rewrite every shot loop reachable from the entry function",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doTransform(args[0], args[1], out, errOut)
		},
	}
	cmd.Flags().BoolVar(&addMainEntrypoint, "add-main-entrypoint", false, "synthesize a main() calling the entry function")
	cmd.Flags().StringVar(&targetFlag, "target", "qvm", `execution target: "qvm" or a QPU id`)
	cmd.Flags().BoolVar(&cacheExecutables, "cache-executables", false, "bracket each rewrite's executable build with the cache ABI")
	cmd.Flags().StringVar(&quilRewiringPragma, "quil-rewiring-pragma", "", "emit PRAGMA INITIAL_REWIRING <value> in every generated program")
	return cmd
}

func newTranspileCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transpile-to-quil <input>",
		Short: "translate the entry function's body block to a Quil program, without rewriting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doTranspile(args[0], out, errOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the result as JSON")
	return cmd
}

func newSink(ctx context.Context) diag.Sink {
	if !verbose {
		return diag.NopSink{}
	}
	return diag.NewTlogSink(ctx)
}

func parseTarget(s string) rewrite.Target {
	if s == "" || s == "qvm" {
		return rewrite.QVM()
	}
	return rewrite.QPU(s)
}

func doTransform(input, output string, out, errOut io.Writer) error {
	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(errOut, "qir2quil: error reading %s: %v\n", input, err)
		return err
	}

	p := irtext.NewParser(irtext.New(string(src)))
	m, err := p.ParseModule(input)
	if err != nil {
		fmt.Fprintf(errOut, "qir2quil: %v\n", err)
		return err
	}

	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())
	opts := qir2quil.PatchOptions{
		AddMainEntrypoint:  addMainEntrypoint,
		Target:             parseTarget(targetFlag),
		CacheExecutables:   cacheExecutables,
		QuilRewiringPragma: quilRewiringPragma,
		Sink:               newSink(ctx),
	}

	if err := qir2quil.Transform(m, opts); err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			for _, line := range d.Chain() {
				fmt.Fprintf(errOut, "qir2quil: %s\n", line)
			}
		} else {
			fmt.Fprintf(errOut, "qir2quil: %v\n", err)
		}
		return err
	}

	outFile, err := os.Create(output)
	if err != nil {
		fmt.Fprintf(errOut, "qir2quil: error creating %s: %v\n", output, err)
		return err
	}
	defer outFile.Close()

	if _, err := io.WriteString(outFile, irtext.Print(m)); err != nil {
		fmt.Fprintf(errOut, "qir2quil: error writing %s: %v\n", output, err)
		return err
	}

	fmt.Fprintf(out, "qir2quil: wrote %s\n", output)
	return nil
}

func doTranspile(input string, out, errOut io.Writer) error {
	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(errOut, "qir2quil: error reading %s: %v\n", input, err)
		return err
	}

	p := irtext.NewParser(irtext.New(string(src)))
	m, err := p.ParseModule(input)
	if err != nil {
		fmt.Fprintf(errOut, "qir2quil: %v\n", err)
		return err
	}

	result, err := qir2quil.TranspileToQuil(m)
	if err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			for _, line := range d.Chain() {
				fmt.Fprintf(errOut, "qir2quil: %s\n", line)
			}
		} else {
			fmt.Fprintf(errOut, "qir2quil: %v\n", err)
		}
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"shot_count":      result.ShotCount,
			"program":         result.Program,
			"recorded_output": result.RecordedOutput,
		})
	}

	fmt.Fprintf(out, "shot count: %d\n", result.ShotCount)
	fmt.Fprintf(out, "program:\n%s\n", result.Program)
	return nil
}
