package cmd

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/cwbudde/go-exprjit/internal/bytecode"
	"github.com/cwbudde/go-exprjit/internal/compiler"
	"github.com/spf13/cobra"
)

var demoDisasm bool

var demoCmd = &cobra.Command{
	Use:   "demo [scenario]",
	Short: "Compile and run a demo scenario, reporting the fast-path verdict",
	Long: `demo builds one of the canonical scenario trees (see "exprjitc list"),
compiles it with the fast two-pass compiler, reports whether the fast
path succeeded and how long the compile took, and optionally disassembles
the resulting chunk. The compiled callable is not invoked.

With no argument, every scenario is run.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&demoDisasm, "disasm", false, "print bytecode disassembly")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(_ *cobra.Command, args []string) error {
	scenarios := demoScenarios
	if len(args) == 1 {
		found := false
		for _, s := range demoScenarios {
			if s.Name == args[0] {
				scenarios = []Scenario{s}
				found = true
				break
			}
		}
		if !found {
			exitWithError("unknown scenario %q", args[0])
			return nil
		}
	}

	for _, s := range scenarios {
		runScenario(s)
	}
	return nil
}

func runScenario(s Scenario) {
	tree := s.Build()
	paramTypes := make([]reflect.Type, len(tree.Params))
	for i, p := range tree.Params {
		paramTypes[i] = p.Typ
	}

	start := time.Now()
	result, err := compiler.Compile(tree.Body, tree.Params, paramTypes, tree.ReturnType)
	elapsed := time.Since(start)

	fmt.Printf("== %s ==\n%s\n", s.Name, s.Description)
	if err != nil {
		fmt.Printf("  verdict: UNSUPPORTED (%v) — falls back to general evaluation\n\n", err)
		return
	}
	fmt.Printf("  verdict: FAST PATH (compiled in %s)\n", elapsed)

	if demoDisasm {
		d := bytecode.NewDisassembler(result.Chunk, os.Stdout)
		d.Disassemble()
	}
	fmt.Println()
}
