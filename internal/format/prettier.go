package format

import (
	"context"
	"strconv"
	"strings"

	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/runner"
)

// Prettier pipes the source through an external prettier executable.
type Prettier struct {
	opts    Options
	workDir string
}

// NewPrettier returns a formatter running opts.Command in workDir. Command
// may carry leading arguments, as in "npx prettier".
func NewPrettier(opts Options, workDir string) *Prettier {
	return &Prettier{opts: opts, workDir: workDir}
}

// Args returns the prettier command line flags for the options.
func (f *Prettier) Args() []string {
	o := f.opts
	def := DefaultOptions()
	if o.Parser == "" {
		o.Parser = def.Parser
	}
	if o.TabWidth <= 0 {
		o.TabWidth = def.TabWidth
	}
	if o.PrintWidth <= 0 {
		o.PrintWidth = def.PrintWidth
	}
	if o.TrailingComma == "" {
		o.TrailingComma = def.TrailingComma
	}
	if o.EndOfLine == "" {
		o.EndOfLine = def.EndOfLine
	}
	return []string{
		"--parser", o.Parser,
		"--tab-width", strconv.Itoa(o.TabWidth),
		"--single-quote=" + strconv.FormatBool(o.SingleQuote),
		"--print-width", strconv.Itoa(o.PrintWidth),
		"--bracket-spacing=" + strconv.FormatBool(o.BracketSpacing),
		"--trailing-comma", o.TrailingComma,
		"--end-of-line", o.EndOfLine,
		"--stdin-filepath", "router.d.ts",
	}
}

func (f *Prettier) runner() (*runner.Runner, error) {
	command := f.opts.Command
	if command == "" {
		command = DefaultOptions().Command
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("empty prettier command")
	}
	args := append(fields[1:len(fields):len(fields)], f.Args()...)
	return runner.New(fields[0], args, f.workDir), nil
}

func (f *Prettier) Format(ctx context.Context, src string) (string, error) {
	r, err := f.runner()
	if err != nil {
		return "", err
	}
	res, err := r.Run(ctx, src)
	if err != nil {
		return "", errors.WithHint(
			errors.Wrap(err, "prettier"),
			"install prettier or set format.engine to builtin")
	}
	return res.Stdout, nil
}
