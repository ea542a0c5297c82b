package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/cwbudde/go-exprjit/internal/compiler"
	"github.com/spf13/cobra"
)

var benchIterations int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure compile latency across the demo scenarios",
	Run:   runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 1000, "compiles per scenario")
	rootCmd.AddCommand(benchCmd)
}

func runBench(_ *cobra.Command, _ []string) {
	for _, s := range demoScenarios {
		tree := s.Build()
		paramTypes := make([]reflect.Type, len(tree.Params))
		for i, p := range tree.Params {
			paramTypes[i] = p.Typ
		}

		start := time.Now()
		ok := 0
		for i := 0; i < benchIterations; i++ {
			if _, err := compiler.Compile(tree.Body, tree.Params, paramTypes, tree.ReturnType); err == nil {
				ok++
			}
		}
		elapsed := time.Since(start)
		per := elapsed / time.Duration(benchIterations)
		fmt.Printf("%-22s %6d/%-6d compiled  %12s/compile\n", s.Name, ok, benchIterations, per)
	}
}
