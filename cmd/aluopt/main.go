package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tetratelabs/aluopt"
	"github.com/tetratelabs/aluopt/internal/logging"
	"github.com/tetratelabs/aluopt/internal/version"
)

func main() {
	doMain(os.Stdout, stdErrWriter{os.Stderr}, os.Exit)
}

// stdErrWriter adds io.ByteWriter to *os.File so that it satisfies logging.Writer.
type stdErrWriter struct{ *os.File }

func (w stdErrWriter) WriteByte(c byte) error {
	_, err := w.File.Write([]byte{c})
	return err
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut io.Writer, stdErr logging.Writer, exit func(code int)) {
	flag.CommandLine.SetOutput(stdErr)

	var help bool
	flag.BoolVar(&help, "h", false, "print usage")

	flag.Parse()

	if help || flag.NArg() == 0 {
		printUsage(stdErr)
		exit(0)
	}

	subCmd := flag.Arg(0)
	switch subCmd {
	case "optimize":
		doOptimize(flag.Args()[1:], stdOut, stdErr, exit)
	case "fmt":
		doFmt(flag.Args()[1:], stdOut, stdErr, exit)
	case "version":
		fmt.Fprintln(stdOut, version.GetAluoptVersion())
		exit(0)
	default:
		fmt.Fprintln(stdErr, "invalid command")
		printUsage(stdErr)
		exit(1)
	}
}

func doOptimize(args []string, stdOut io.Writer, stdErr logging.Writer, exit func(code int)) {
	flags := flag.NewFlagSet("optimize", flag.ExitOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "print usage")

	var gen string
	flags.StringVar(&gen, "gen", "", "generation to optimize for, such as gfx10.3. Defaults to the target of the program.")

	var waveSize int
	flags.IntVar(&waveSize, "wave-size", 64, "number of lanes of a wave: 32 or 64. Only used with -gen.")

	var validate bool
	flags.BoolVar(&validate, "validate", false, "check the state left by every pass")

	var passLogging logScopesFlag
	flags.Var(&passLogging, "log",
		"A comma-separated list of passes to log to stderr. "+
			"This may be specified multiple times. Supported values: label,remat,combine,select,literals,all")

	_ = flags.Parse(args)

	if help {
		printOptimizeUsage(stdErr, flags)
		exit(0)
	}

	p := loadProgram(flags, stdErr, exit, printOptimizeUsage)

	cfg := aluopt.NewOptimizeConfig().WithValidation(validate)
	if gen != "" {
		cfg = cfg.WithTarget(aluopt.NewTargetConfig(gen).WithWaveSize(waveSize))
	}
	if passLogging != 0 {
		cfg = cfg.WithLogScopes(logging.PassScopes(passLogging)).WithLogWriter(stdErr)
	}

	if err := aluopt.Optimize(context.Background(), p, cfg); err != nil {
		fmt.Fprintf(stdErr, "error optimizing program: %v\n", err)
		exit(1)
	}
	fmt.Fprint(stdOut, p.String())
	exit(0)
}

func doFmt(args []string, stdOut io.Writer, stdErr logging.Writer, exit func(code int)) {
	flags := flag.NewFlagSet("fmt", flag.ExitOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "print usage")

	_ = flags.Parse(args)

	if help {
		printFmtUsage(stdErr, flags)
		exit(0)
	}

	p := loadProgram(flags, stdErr, exit, printFmtUsage)
	fmt.Fprint(stdOut, p.String())
	exit(0)
}

func loadProgram(flags *flag.FlagSet, stdErr io.Writer, exit func(code int), usage func(io.Writer, *flag.FlagSet)) *aluopt.Program {
	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to program file")
		usage(stdErr, flags)
		exit(1)
	}
	path := flags.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdErr, "error reading program: %v\n", err)
		exit(1)
	}

	p, err := aluopt.LoadProgram(data)
	if err != nil {
		fmt.Fprintf(stdErr, "error loading program: %v\n", err)
		exit(1)
	}
	return p
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "aluopt CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  aluopt <command>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Commands:")
	fmt.Fprintln(stdErr, "  optimize\tOptimizes an ALU program")
	fmt.Fprintln(stdErr, "  fmt\t\tPrints an ALU program in canonical form")
	fmt.Fprintln(stdErr, "  version\tDisplays the version of aluopt CLI")
}

func printOptimizeUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "aluopt CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  aluopt optimize <options> <path to program file>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Options:")
	flags.PrintDefaults()
}

func printFmtUsage(stdErr io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "aluopt CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  aluopt fmt <options> <path to program file>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Options:")
	flags.PrintDefaults()
}

type logScopesFlag logging.PassScopes

func (f *logScopesFlag) String() string {
	return logging.PassScopes(*f).String()
}

func (f *logScopesFlag) Set(input string) error {
	scopes, err := logging.ParsePassScopes(input)
	if err != nil {
		return err
	}
	*f |= logScopesFlag(scopes)
	return nil
}
