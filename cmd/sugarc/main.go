// cmd/sugarc is the CLI entry point: a hand-rolled os.Args dispatch in
// the style of _examples/sentra-language-sentra/cmd/sentra/main.go,
// trimmed to the three subcommands this toy compiler actually has use
// for (build, run, watch).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	perrors "github.com/pkg/errors"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/jeremyylimmm/sugar/internal/cache"
	"github.com/jeremyylimmm/sugar/internal/compiler"
	sugarerrors "github.com/jeremyylimmm/sugar/internal/errors"
	"github.com/jeremyylimmm/sugar/internal/watch"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "build":
		err = buildCommand(args[1:])
	case "run":
		err = runCommand(args[1:])
	case "watch":
		err = watchCommand(args[1:])
	case "--version", "-v", "version":
		fmt.Printf("sugarc %s\n", version)
		return
	case "--help", "-h", "help":
		showUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "sugarc: unknown command %q\n", args[0])
		showUsage()
		os.Exit(1)
	}

	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("sugarc - a toy ahead-of-time compiler middle-end")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sugarc build [--stats] [--cache <dsn>] <file...>   Compile files, print diagnostics")
	fmt.Println("  sugarc run <file>                                  Parse, lower, idealize, schedule, print")
	fmt.Println("  sugarc watch <file> [--addr host:port]             Serve live graph updates over a websocket")
	fmt.Println("  sugarc version                                     Show version")
}

// reportError prints a sugarerrors.Error with its caret diagnostic if
// that's what failed (unwrapping any pkg/errors.Wrap the CLI boundary
// added along the way via Cause), or a plain message otherwise.
func reportError(err error) {
	cause := perrors.Cause(err)
	var se *sugarerrors.Error
	if errors.As(cause, &se) {
		fmt.Fprint(os.Stderr, se.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "sugarc: %v\n", err)
}

// versionPragma matches an optional leading "//sugar:lang >=X.Y.Z"
// pragma (SPEC_FULL.md §3's golang.org/x/mod/semver use case).
var versionPragma = regexp.MustCompile(`^//sugar:lang\s+>=\s*(v?\d+\.\d+\.\d+)`)

// checkVersionPragma returns an error if source declares a minimum
// sugarc version newer than this binary.
func checkVersionPragma(file, source string) error {
	firstLine, _, _ := strings.Cut(source, "\n")
	m := versionPragma.FindStringSubmatch(strings.TrimSpace(firstLine))
	if m == nil {
		return nil
	}

	required := m[1]
	if !strings.HasPrefix(required, "v") {
		required = "v" + required
	}
	current := "v" + version

	if !semver.IsValid(required) {
		return fmt.Errorf("%s: malformed version pragma %q", file, m[0])
	}
	if semver.Compare(current, required) < 0 {
		return fmt.Errorf("%s: requires sugarc >=%s, this binary is %s", file, m[1], version)
	}
	return nil
}

func buildCommand(args []string) error {
	var stats bool
	var dsn string
	var files []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--stats":
			stats = true
		case "--cache":
			i++
			if i >= len(args) {
				return errors.New("--cache requires a DSN argument")
			}
			dsn = args[i]
		default:
			files = append(files, args[i])
		}
	}
	if len(files) == 0 {
		return errors.New("build requires at least one source file")
	}

	var store *cache.Cache
	if dsn != "" {
		c, err := cache.Open(dsn)
		if err != nil {
			return perrors.Wrap(err, "opening cache")
		}
		defer c.Close()
		store = c
	}

	var g errgroup.Group
	results := make([]string, len(files))

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			out, err := buildOne(file, store, stats)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		fmt.Print(r)
	}
	return nil
}

func buildOne(file string, store *cache.Cache, stats bool) (string, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return "", perrors.Wrap(err, "reading source")
	}
	if err := checkVersionPragma(file, string(source)); err != nil {
		return "", err
	}

	var b strings.Builder

	if store != nil {
		key := cache.Key(string(source), version)
		ctx := context.Background()
		if entry, hit, err := store.Lookup(ctx, key); err == nil && hit {
			fmt.Fprintf(&b, "%s: cache hit\n", file)
			b.WriteString(entry.Graphviz)
			b.WriteString(entry.BlockList)
			return b.String(), nil
		}

		r, err := compiler.Compile(file, string(source))
		if err != nil {
			return "", err
		}
		gv, bl := r.Graphviz(), r.BlockList()
		if err := store.Store(ctx, key, cache.Entry{SugarcVers: version, Graphviz: gv, BlockList: bl}); err != nil {
			return "", err
		}
		b.WriteString(gv)
		b.WriteString(bl)
		if stats {
			writeStats(&b, r)
		}
		return b.String(), nil
	}

	r, err := compiler.Compile(file, string(source))
	if err != nil {
		return "", err
	}
	b.WriteString(r.Graphviz())
	b.WriteString(r.BlockList())
	if stats {
		writeStats(&b, r)
	}
	return b.String(), nil
}

func writeStats(b *strings.Builder, r *compiler.Result) {
	colorize := isatty.IsTerminal(os.Stdout.Fd())
	label := "stats:"
	if colorize {
		label = "\x1b[2mstats:\x1b[0m"
	}
	fmt.Fprintf(b, "%s %d nodes (%s), %d blocks\n",
		label, r.NodeCount(), humanize.Comma(int64(r.NodeCount())), r.BlockCount())
}

func runCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("run requires a source file")
	}
	file := args[0]

	source, err := os.ReadFile(file)
	if err != nil {
		return perrors.Wrap(err, "reading source")
	}
	if err := checkVersionPragma(file, string(source)); err != nil {
		return err
	}

	r, err := compiler.Compile(file, string(source))
	if err != nil {
		return err
	}

	fmt.Print(r.Graphviz())
	fmt.Print(r.BlockList())
	return nil
}

func watchCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("watch requires a source file")
	}
	addr := "localhost:8787"
	file := args[0]
	for i := 1; i < len(args); i++ {
		if args[i] == "--addr" && i+1 < len(args) {
			addr = args[i+1]
			i++
		}
	}

	server := watch.NewServer(file, func(source string) watch.Update {
		r, err := compiler.Compile(file, source)
		if err != nil {
			return watch.Update{Err: err.Error()}
		}
		return watch.Update{Graphviz: r.Graphviz(), BlockList: r.BlockList()}
	})

	stop := make(chan struct{})
	go server.Run(stop, 500*time.Millisecond)

	mux := http.NewServeMux()
	mux.Handle("/ws", server)

	fmt.Printf("sugarc watch: serving %s on ws://%s/ws\n", file, addr)
	return perrors.Wrap(http.ListenAndServe(addr, mux), "watch server")
}
