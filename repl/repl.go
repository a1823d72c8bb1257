package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/log"
	"fortio.org/terminal"
	"grol.io/jsi/ast"
	"grol.io/jsi/eval"
	"grol.io/jsi/object"
	"grol.io/jsi/parser"
)

const (
	PROMPT       = "jsi> "
	CONTINUATION = "...  "
)

type Options struct {
	ShowParse   bool // print the normalized source before evaluating.
	ShowEval    bool // print the completion value.
	ASTOnly     bool // print the YAML syntax tree instead of evaluating.
	MaxDepth    int
	HistoryFile string
}

// FormatError renders an evaluation error with the call stack it carries, if any.
func FormatError(err error) string {
	stack := eval.StackOf(err)
	var thrown *eval.ThrowError
	msg := err.Error()
	if errors.As(err, &thrown) {
		msg = "uncaught " + thrown.Value.Inspect()
	}
	if len(stack) == 0 {
		return msg
	}
	return msg + " (in " + strings.Join(stack, " < ") + ")"
}

// EvalAll reads everything from in and runs it as one program.
func EvalAll(s *eval.State, in io.Reader, out io.Writer, options Options) []string {
	b, err := io.ReadAll(in)
	if err != nil {
		log.Errf("%v", err)
		return []string{err.Error()}
	}
	_, errs := EvalOne(s, string(b), out, options)
	return errs
}

// EvalString runs code in a new state and returns its output (including the
// completion value) and errors, if any.
func EvalString(what string) (res string, errs []string) {
	return EvalStringWithOption(Options{ShowEval: true}, what)
}

func EvalStringWithOption(o Options, what string) (res string, errs []string) {
	s := eval.NewState()
	if o.MaxDepth > 0 {
		s.MaxDepth = o.MaxDepth
	}
	out := &strings.Builder{}
	s.Out = out
	_, errs = EvalOne(s, what, out, o)
	return out.String(), errs
}

// EvalOne parses then evaluates what, writing the requested extra output
// to out. Returns the completion value, or the error messages.
func EvalOne(s *eval.State, what string, out io.Writer, options Options) (object.Object, []string) {
	program, err := parser.Parse(what)
	if err != nil {
		log.Errf("parse error: %v", err)
		return nil, []string{err.Error()}
	}
	if options.ASTOnly {
		b, err := ast.ToYAML(program)
		if err != nil {
			return nil, []string{err.Error()}
		}
		_, _ = out.Write(b)
		return object.UNDEFINED, nil
	}
	if options.ShowParse {
		fmt.Fprint(out, "== Parse ==> ")
		fmt.Fprintln(out, program.String())
	}
	res, err := s.Eval(program)
	if err != nil {
		msg := FormatError(err)
		log.LogVf("eval error: %s", msg)
		return nil, []string{msg}
	}
	if options.ShowEval {
		fmt.Fprintln(out, res.Inspect())
	}
	return res, nil
}

// ClearCommand, alone on a line, makes Interactive forget the session's
// top level bindings.
const ClearCommand = ".clear"

// Clear drops the top level bindings and loaded modules of s and describes what went.
func Clear(s *eval.State) string {
	names := s.Globals()
	s.Reset()
	return fmt.Sprintf("cleared %d top level binding(s): %s", len(names), strings.Join(names, ", "))
}

// incomplete is true for input that failed to parse only because it ended
// too early (e.g. an open function body), so more lines are read.
func incomplete(err error) bool {
	var syntaxErr *parser.SyntaxError
	return errors.As(err, &syntaxErr) && strings.Contains(syntaxErr.Msg, "end of input")
}

// Interactive is the read eval print loop on the terminal, with one state
// for the whole session. Returns the exit code.
func Interactive(options Options) int {
	term, err := terminal.Open(context.Background())
	if err != nil {
		return log.FErrf("Error creating terminal: %v", err)
	}
	defer term.Close()
	term.SetPrompt(PROMPT)
	if options.HistoryFile != "" {
		if err = term.SetHistoryFile(options.HistoryFile); err != nil {
			return 1 // error already logged
		}
	}
	s := eval.NewState()
	s.Out = term.Out
	if options.MaxDepth > 0 {
		s.MaxDepth = options.MaxDepth
	}
	options.ShowEval = true
	var pending strings.Builder
	for {
		line, err := term.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			log.Infof("Exit requested")
			return 0
		case errors.Is(err, terminal.ErrUserInterrupt):
			pending.Reset()
			term.SetPrompt(PROMPT)
			continue
		case err != nil:
			return log.FErrf("Error reading line: %v", err)
		}
		if pending.Len() == 0 && strings.TrimSpace(line) == ClearCommand {
			fmt.Fprintln(term.Out, Clear(s))
			continue
		}
		pending.WriteString(line)
		pending.WriteString("\n")
		if _, perr := parser.Parse(pending.String()); incomplete(perr) {
			term.SetPrompt(CONTINUATION)
			continue
		}
		what := pending.String()
		pending.Reset()
		term.SetPrompt(PROMPT)
		if _, errs := EvalOne(s, what, term.Out, options); len(errs) > 0 {
			fmt.Fprint(term.Out, log.Colors.Red)
			fmt.Fprintln(term.Out, strings.Join(errs, "\n"))
			fmt.Fprint(term.Out, log.Colors.Reset)
		}
	}
}
