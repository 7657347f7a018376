// Package script parses and runs line-oriented pool scripts:
//
//	# comment
//	open   <pool> <size> <first-fit|best-fit>
//	alloc  <pool> <label> <size>
//	free   <pool> <label>
//	inspect  <pool>
//	validate <pool>
//	close  <pool>
//
// Scripts are read as UTF-8; a UTF-8 or UTF-16 byte order mark switches
// the decoder accordingly.
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pavanmanishd/mempool"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("script: syntax error")

// Op identifies a script command.
type Op uint8

const (
	OpOpen Op = iota + 1
	OpAlloc
	OpFree
	OpInspect
	OpValidate
	OpClose
)

var opNames = map[Op]string{
	OpOpen:     KeywordOpen,
	OpAlloc:    KeywordAlloc,
	OpFree:     KeywordFree,
	OpInspect:  KeywordInspect,
	OpValidate: KeywordValidate,
	OpClose:    KeywordClose,
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// arity is the number of arguments after the keyword.
var arity = map[string]struct {
	op   Op
	args int
}{
	KeywordOpen:     {OpOpen, 3},
	KeywordAlloc:    {OpAlloc, 3},
	KeywordFree:     {OpFree, 2},
	KeywordInspect:  {OpInspect, 1},
	KeywordValidate: {OpValidate, 1},
	KeywordClose:    {OpClose, 1},
}

// Command is one parsed script line.
type Command struct {
	Line   int
	Op     Op
	Pool   string
	Label  string         // alloc, free
	Size   int            // open, alloc
	Policy mempool.Policy // open
}

func (c Command) String() string {
	switch c.Op {
	case OpOpen:
		return fmt.Sprintf("%s %s %d %s", c.Op, c.Pool, c.Size, c.Policy)
	case OpAlloc:
		return fmt.Sprintf("%s %s %s %d", c.Op, c.Pool, c.Label, c.Size)
	case OpFree:
		return fmt.Sprintf("%s %s %s", c.Op, c.Pool, c.Label)
	default:
		return fmt.Sprintf("%s %s", c.Op, c.Pool)
	}
}

// Parse reads a whole script. The first malformed line aborts parsing with
// an error wrapping ErrSyntax that names the line number.
func Parse(r io.Reader) ([]Command, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	scanner.Buffer(make([]byte, 0, 4096), ScannerMaxLineSize)

	var cmds []Command
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, CommentPrefix); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		cmd, err := parseLine(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		cmd.Line = line
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "script: reading line %d", line+1)
	}
	return cmds, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]Command, error) {
	return Parse(strings.NewReader(s))
}

func parseLine(fields []string) (Command, error) {
	keyword := strings.ToLower(fields[0])
	form, ok := arity[keyword]
	if !ok {
		return Command{}, errors.Wrapf(ErrSyntax, "unknown command %q", fields[0])
	}
	args := fields[1:]
	if len(args) != form.args {
		return Command{}, errors.Wrapf(ErrSyntax, "%s takes %d argument(s), got %d", keyword, form.args, len(args))
	}

	cmd := Command{Op: form.op, Pool: args[0]}
	switch form.op {
	case OpOpen:
		size, err := parseSize(args[1])
		if err != nil {
			return Command{}, err
		}
		policy, err := mempool.ParsePolicy(args[2])
		if err != nil {
			return Command{}, errors.WithSecondaryError(
				errors.Wrapf(ErrSyntax, "unknown policy %q", args[2]), err)
		}
		cmd.Size, cmd.Policy = size, policy
	case OpAlloc:
		size, err := parseSize(args[2])
		if err != nil {
			return Command{}, err
		}
		cmd.Label, cmd.Size = args[1], size
	case OpFree:
		cmd.Label = args[1]
	}
	return cmd, nil
}

// parseSize accepts decimal, 0x hex and _ separators. Sign checks are left
// to the pool so that scripts can exercise rejected sizes.
func parseSize(s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 0)
	if err != nil {
		return 0, errors.Wrapf(ErrSyntax, "invalid size %q", s)
	}
	return int(n), nil
}
