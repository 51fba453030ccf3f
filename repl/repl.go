package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/lexer"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/rdparser"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// Config configures a repl session.
type Config struct {
	Prompt string
	// Continuation is shown while an expression is incomplete.  It
	// defaults to blanks as wide as Prompt.
	Continuation string
	HistoryFile  string
	Stdout       io.Writer
	Stderr       io.Writer
}

// RunRepl runs a simple repl in a new root environment of rt.  Values are
// printed on stdout, errors with their stack trace on stderr.
func RunRepl(rt *lisp.Runtime, config *Config) error {
	if config == nil {
		config = &Config{}
	}
	prompt := config.Prompt
	if prompt == "" {
		prompt = "> "
	}
	stdout := config.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := config.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: config.HistoryFile,
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	contPrompt := config.Continuation
	if contPrompt == "" {
		contPrompt = strings.Repeat(" ", len(prompt)) // prompt had better be ascii...
	}

	s := &session{rt: rt, env: rt.NewEnv(), stdout: stdout, stderr: stderr}
	var p *rdparser.Interactive
	p = rdparser.NewInteractive(func() []*token.Token {
		if p.IsParsing() {
			rl.SetPrompt(contPrompt)
		} else {
			rl.SetPrompt(prompt)
		}
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			s.interrupted = true
			return []*token.Token{{Type: token.EOF}}
		case err != nil:
			s.done = true
			if err != io.EOF {
				s.err = err
			}
			return []*token.Token{{Type: token.EOF}}
		}
		return lexLine(line)
	})
	for !s.done {
		expr, err := p.ParseExpression()
		if err != nil {
			if s.interrupted {
				s.interrupted = false
				continue
			}
			if !s.done {
				fmt.Fprintln(stderr, err)
			}
			continue
		}
		s.eval(expr)
	}
	rt.Logger.Debug("repl finished")
	return s.err
}

type session struct {
	rt     *lisp.Runtime
	env    *lisp.LEnv
	stdout io.Writer
	stderr io.Writer

	interrupted bool
	done        bool
	err         error
}

func (s *session) eval(expr ast.Node) {
	stack := s.rt.NewCallStack()
	v, err := s.rt.EvalSyntax(expr, stack, s.env)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		if trace := lisp.ErrorStack(err); trace != nil {
			trace.DebugPrint(s.stderr)
		}
		return
	}
	fmt.Fprintln(s.stdout, v)
}

// lexLine returns the tokens of a line of input, without its EOF token.
func lexLine(line string) []*token.Token {
	lex := lexer.New(token.NewScanner("stdin", strings.NewReader(line+"\n")))
	var toks []*token.Token
	for tok := lex.NextToken(); tok.Type != token.EOF; tok = lex.NextToken() {
		toks = append(toks, tok)
	}
	return toks
}
