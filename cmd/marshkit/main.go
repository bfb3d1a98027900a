package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/codec"
	"github.com/marshkit/marshkit/fields"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "convert":
		convertCmd(os.Args[2:])
	case "lint":
		lintCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "marshkit CLI\n\nUsage:\n  marshkit convert -from yaml|json -to yaml|json [-i in] [-o out]\n  marshkit lint -required a,b,c [-unknown raise|exclude|include] [-i in]\n\nNotes:\n  - convert normalizes YAML documents to JSON-compatible values.\n  - lint builds an ad-hoc schema from the flags and reports load errors.")
}

// convertCmd re-encodes a single document between YAML and JSON.
func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var from, to, in, out string
	fs.StringVar(&from, "from", "yaml", "input format (yaml|json)")
	fs.StringVar(&to, "to", "json", "output format (yaml|json)")
	fs.StringVar(&in, "i", "-", "input file, - for stdin")
	fs.StringVar(&out, "o", "-", "output file, - for stdout")
	_ = fs.Parse(args)

	data, err := readInput(in, os.Stdin)
	if err != nil {
		fatalf("read input: %v", err)
	}

	var v any
	switch from {
	case "yaml":
		v, err = codec.DecodeYAML(data)
	case "json":
		v, err = codec.DecodeJSON(data)
	default:
		fatalf("unknown input format %q", from)
	}
	if err != nil {
		fatalf("decode: %v", err)
	}

	var rendered []byte
	switch to {
	case "yaml":
		rendered, err = codec.EncodeYAML(v)
	case "json":
		rendered, err = codec.EncodeJSON(v)
		rendered = append(rendered, '\n')
	default:
		fatalf("unknown output format %q", to)
	}
	if err != nil {
		fatalf("encode: %v", err)
	}

	if err := writeOutput(out, rendered); err != nil {
		fatalf("write output: %v", err)
	}
}

// lintCmd loads a document through an ad-hoc schema and prints every error
// path. Exit status 1 means the document failed validation.
func lintCmd(args []string) {
	os.Exit(runLint(args, os.Stdin, os.Stdout, os.Stderr))
}

func runLint(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	fs.SetOutput(stderr)
	var required, optional, unknown, format, in string
	fs.StringVar(&required, "required", "", "comma-separated required field names")
	fs.StringVar(&optional, "optional", "", "comma-separated optional field names")
	fs.StringVar(&unknown, "unknown", "raise", "unknown-field policy (raise|exclude|include)")
	fs.StringVar(&format, "format", "json", "input format (yaml|json)")
	fs.StringVar(&in, "i", "-", "input file, - for stdin")
	_ = fs.Parse(args)
	if required == "" && optional == "" {
		fs.Usage()
		return 2
	}

	policy, ok := parsePolicy(unknown)
	if !ok {
		fmt.Fprintf(stderr, "marshkit: unknown policy %q\n", unknown)
		return 2
	}
	b := marshkit.NewBuilder().Unknown(policy)
	for _, name := range splitCSV(required) {
		b.Field(name, fields.Raw(), marshkit.Required())
	}
	for _, name := range splitCSV(optional) {
		b.Field(name, fields.Raw())
	}
	s, err := b.Build()
	if err != nil {
		fmt.Fprintf(stderr, "marshkit: build schema: %v\n", err)
		return 2
	}

	data, err := readInput(in, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "marshkit: read input: %v\n", err)
		return 2
	}
	var v any
	switch format {
	case "yaml":
		v, err = codec.DecodeYAML(data)
	case "json":
		v, err = codec.DecodeJSON(data)
	default:
		fmt.Fprintf(stderr, "marshkit: unknown input format %q\n", format)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "marshkit: decode: %v\n", err)
		return 2
	}

	if tree := s.Validate(context.Background(), v); !tree.Empty() {
		printTree(stderr, tree, "")
		return 1
	}
	fmt.Fprintln(stdout, "ok")
	return 0
}

func parsePolicy(s string) (marshkit.UnknownPolicy, bool) {
	switch s {
	case "raise":
		return marshkit.UnknownRaise, true
	case "exclude":
		return marshkit.UnknownExclude, true
	case "include":
		return marshkit.UnknownInclude, true
	default:
		return marshkit.UnknownRaise, false
	}
}

func printTree(w io.Writer, t *marshkit.ErrorTree, path string) {
	for _, msg := range t.Messages {
		at := path
		if at == "" {
			at = "/"
		}
		fmt.Fprintf(w, "%s: %s\n", at, msg)
	}
	for _, k := range t.Keys() {
		printTree(w, t.Get(k), path+"/"+k)
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "marshkit: "+format+"\n", a...)
	os.Exit(1)
}
