// Program rda is a command-line utility for inspecting and editing
// RDA encoded values.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/taskgroup"
	"github.com/danderson/rda"
	"github.com/kr/pretty"
)

var outputArgs struct {
	Formatted bool `flag:"formatted,Write the multi-line formatted encoding"`
	Compact   bool `flag:"compact,Write the compact encoding, even to a terminal"`
	Minimal   bool `flag:"minimal,Collapse single-child branches before writing"`
}

func main() {
	root := &command.C{
		Name:  "rda",
		Usage: "command args...",
		Help: `Inspect and edit RDA encoded values.

Commands that read a value take it from the named file, or from stdin
if no file is given. Paths are dot-separated lists of child indices,
for example "0.2.1".

When writing to a terminal, values are written in the formatted
encoding unless --compact is given.`,
		SetFlags: command.Flags(flax.MustBind, &outputArgs),
		Commands: []*command.C{
			{
				Name:  "fmt",
				Usage: "fmt [file]",
				Help:  "Reencode a value.",
				Run:   runFmt,
			},
			{
				Name:  "get",
				Usage: "get path [file]",
				Help:  "Print the string value at path.",
				Run:   runGet,
			},
			{
				Name:  "set",
				Usage: "set path value [file]",
				Help: `Set the string value at path, and print the result.

The tree grows as needed to make path exist.`,
				Run: runSet,
			},
			{
				Name:  "encode",
				Usage: "encode value...",
				Help:  "Encode the arguments as the children of a new value.",
				Run:   runEncode,
			},
			{
				Name:  "tree",
				Usage: "tree [file]",
				Help:  "Print the structure of a value, one node per line.",
				Run:   runTree,
			},
			{
				Name:  "dump",
				Usage: "dump [file]",
				Help:  "Print the decoded tree in Go syntax, for debugging.",
				Run:   runDump,
			},
			{
				Name:  "check",
				Usage: "check file...",
				Help: `Check that files survive a round trip.

Each file is decoded, then reencoded in the compact and formatted
encodings, and the results are decoded again and compared to the
original. Files are checked concurrently.`,
				Run: runCheck,
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx).MergeFlags(true)
	command.RunOrFail(env, os.Args[1:])
}

func runFmt(env *command.Env) error {
	if len(env.Args) > 1 {
		return env.Usagef("fmt takes at most one file")
	}
	v, err := readValue(argAt(env.Args, 0))
	if err != nil {
		return err
	}
	return writeValue(v)
}

func runGet(env *command.Env) error {
	if len(env.Args) < 1 || len(env.Args) > 2 {
		return env.Usagef("get requires a path and an optional file")
	}
	path, err := parsePath(env.Args[0])
	if err != nil {
		return err
	}
	v, err := readValue(argAt(env.Args, 1))
	if err != nil {
		return err
	}
	fmt.Println(v.ValueAt(path...))
	return nil
}

func runSet(env *command.Env) error {
	if len(env.Args) < 2 || len(env.Args) > 3 {
		return env.Usagef("set requires a path, a value and an optional file")
	}
	path, err := parsePath(env.Args[0])
	if err != nil {
		return err
	}
	v, err := readValue(argAt(env.Args, 2))
	if err != nil {
		return err
	}
	if err := v.SetPath(path, env.Args[1]); err != nil {
		return fmt.Errorf("setting %s: %w", env.Args[0], err)
	}
	return writeValue(v)
}

func runEncode(env *command.Env) error {
	if len(env.Args) == 0 {
		return env.Usagef("encode requires at least one value")
	}
	v := rda.New(nil)
	if err := v.SetValues(env.Args); err != nil {
		return err
	}
	return writeValue(v)
}

func runTree(env *command.Env) error {
	if len(env.Args) > 1 {
		return env.Usagef("tree takes at most one file")
	}
	v, err := readValue(argAt(env.Args, 0))
	if err != nil {
		return err
	}
	var out indenter
	out.f("delimiters %q, escape %q", v.Delimiters(), v.Encoding().Escape())
	printTree(&out, v, 0)
	return nil
}

func runDump(env *command.Env) error {
	if len(env.Args) > 1 {
		return env.Usagef("dump takes at most one file")
	}
	v, err := readValue(argAt(env.Args, 0))
	if err != nil {
		return err
	}
	fmt.Printf("%# v\n", pretty.Formatter(dumpTree(v)))
	return nil
}

func runCheck(env *command.Env) error {
	if len(env.Args) == 0 {
		return env.Usagef("check requires at least one file")
	}
	failed := checkFiles(env.Context(), env.Args, func(path string, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		} else {
			fmt.Printf("%s: ok\n", path)
		}
	})
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(env.Args))
	}
	return nil
}

// checkFiles runs checkFile on paths concurrently, and calls report
// with each result. Calls to report are serialized. checkFiles
// returns the number of files that failed.
func checkFiles(ctx context.Context, paths []string, report func(path string, err error)) int {
	var (
		mu     sync.Mutex
		failed int
	)
	g := taskgroup.New(nil)
	for _, path := range paths {
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = checkFile(path)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			}
			report(path, err)
			return nil
		})
	}
	g.Wait()
	return failed
}

var errMismatch = errors.New("reencoded value does not match")

// checkFile decodes the value in path, and verifies that its compact
// and formatted encodings decode to the same content.
func checkFile(path string) error {
	v, err := readValue(path)
	if err != nil {
		return err
	}
	return checkValue(v)
}

func checkValue(v *rda.Value) error {
	if got := rda.Parse(v.String()); !got.ContentEqual(v) {
		return fmt.Errorf("compact encoding: %w", errMismatch)
	}
	if got := rda.Parse(v.Formatted()); !got.ContentEqual(v) {
		return fmt.Errorf("formatted encoding: %w", errMismatch)
	}
	return nil
}

// writeValue prints v to stdout, in the encoding selected by the
// output flags.
func writeValue(v *rda.Value) error {
	if outputArgs.Minimal {
		v.TrimSoloBranch()
	}
	var s string
	if outputArgs.Formatted || (!outputArgs.Compact && isTerminal(os.Stdout)) {
		s = v.Formatted()
	} else {
		s = v.String()
	}
	_, err := fmt.Println(s)
	return err
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// parsePath parses a dot-separated list of child indices.
func parsePath(s string) ([]int, error) {
	if s == "" || s == "." {
		return nil, nil
	}
	var ret []int
	for _, f := range strings.Split(s, ".") {
		i, err := strconv.Atoi(f)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid path element %q in %q", f, s)
		}
		ret = append(ret, i)
	}
	return ret, nil
}
