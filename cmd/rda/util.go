package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danderson/rda"
)

type indenter struct {
	w          io.Writer // defaults to os.Stdout
	prefix     string
	indentNext bool
}

func (i *indenter) s(msg string) {
	io.WriteString(i, msg+"\n")
}

func (i *indenter) f(msg string, args ...any) {
	fmt.Fprintf(i, msg+"\n", args...)
}

func (i *indenter) out() io.Writer {
	if i.w == nil {
		return os.Stdout
	}
	return i.w
}

func (i *indenter) Write(bs []byte) (int, error) {
	ret := 0
	for len(bs) > 0 {
		if i.indentNext {
			i.indentNext = false
			_, err := io.WriteString(i.out(), i.prefix)
			if err != nil {
				return ret, err
			}
		}

		var wr []byte
		idx := bytes.IndexByte(bs, '\n')
		if idx >= 0 {
			i.indentNext = true
			wr, bs = bs[:idx+1], bs[idx+1:]
		} else {
			wr, bs = bs, nil
		}

		n, err := i.out().Write(wr)
		ret += n
		if err != nil {
			return ret, err
		}
	}
	return ret, nil
}

func (i *indenter) indent(n int) {
	i.prefix = strings.Repeat("  ", n)
}

// printTree writes the children of v to out, one per line, indented
// by depth. Dummies print as "-".
func printTree(out *indenter, v *rda.Value, depth int) {
	if v.Len() == 0 {
		out.indent(depth)
		out.s(leafString(v))
		return
	}
	for idx, c := range v.All() {
		out.indent(depth)
		if c.Len() == 0 {
			out.f("[%d] %s", idx, leafString(c))
			continue
		}
		out.f("[%d]", idx)
		printTree(out, c, depth+1)
	}
}

func leafString(v *rda.Value) string {
	if v.IsDummy() {
		return "-"
	}
	return fmt.Sprintf("%q", v.Scalar())
}

// dumpNode is an exported mirror of a tree, for printing with
// kr/pretty.
type dumpNode struct {
	Level    int
	Value    string
	Dummy    bool
	Children []dumpNode
}

func dumpTree(v *rda.Value) dumpNode {
	ret := dumpNode{
		Level: v.Level(),
		Value: v.Scalar(),
		Dummy: v.IsDummy(),
	}
	for _, c := range v.All() {
		ret.Children = append(ret.Children, dumpTree(c))
	}
	return ret
}

// readValue decodes the contents of the named file, or of stdin if
// path is empty or "-". A single trailing newline is ignored.
func readValue(path string) (*rda.Value, error) {
	var (
		bs  []byte
		err error
	)
	if path == "" || path == "-" {
		bs, err = io.ReadAll(os.Stdin)
	} else {
		bs, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	s := string(bs)
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return rda.Parse(s), nil
}
