// Command polec compiles a Pole IR source file to a native object file.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/errors"
	"github.com/pole-lang/polec/internal/pipeline"
)

var (
	// Version info, set by ldflags during build.
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		outFlag     = flag.String("o", "", "Output object file path (defaults to <input>.o)")
		checkFlag   = flag.Bool("check", false, "Lower to SSA without emitting an object file")
		arenaBudget = flag.Int("arena-budget", 0, "Total byte budget for the compile-time arena pool (0 = default)")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	compile(flag.Arg(0), *outFlag, *checkFlag, *arenaBudget)
}

func compile(filename, outPath string, checkOnly bool, arenaBudget int) {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file %q: %v\n", red("Error"), filename, err)
		os.Exit(1)
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(filename, ".pole") + ".o"
	}

	cfg := pipeline.Config{
		EmitObject:  !checkOnly,
		ObjectPath:  outPath,
		ArenaBudget: arenaBudget,
	}
	result, err := pipeline.Run(cfg, pipeline.Source{Code: string(content), Filename: filename})
	if err != nil {
		printCompileError(err)
		os.Exit(1)
	}

	if checkOnly {
		fmt.Printf("%s %s type-checks and lowers cleanly\n", green("✓"), filename)
		printSignatures(result.Artifacts.Signatures)
		return
	}
	fmt.Printf("%s wrote %s\n", green("✓"), bold(result.ObjectPath))
}

// printSignatures lists each declared function/extern signature, effect
// suffix included when present — the -check flag's one piece of output
// beyond pass/fail.
func printSignatures(sigs map[string]*ast.FunctionType) {
	if len(sigs) == 0 {
		return
	}
	names := make([]string, 0, len(sigs))
	for name := range sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s : %s\n", name, sigs[name])
	}
}

func printCompileError(err error) {
	if rep, ok := errors.AsReport(err); ok {
		fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", red("Error"), rep.Phase, rep.Code, rep.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
}

func printVersion() {
	fmt.Printf("polec %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
	fmt.Println("\nPole IR compiler core")
}

func printHelp() {
	fmt.Println(bold("polec - Pole IR compiler core"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  polec [flags] <file.pole>")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -o <path>           Output object file path (defaults to <input>.o)")
	fmt.Println("  -check              Lower to SSA without emitting an object file")
	fmt.Println("  -arena-budget <n>   Total byte budget for the compile-time arena pool")
	fmt.Println("  -version            Print version information")
	fmt.Println("  -help               Show this help message")
}
