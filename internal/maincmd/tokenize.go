package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/scanner"
	"github.com/nanolang/nano/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, path := range args {
		if err := tokenizeFile(stdio, path); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("tokenize: one or more files failed")
	}
	return nil
}

func tokenizeFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var s scanner.Scanner
	s.Init(path, src)
	for {
		tv := s.Scan()
		fmt.Fprintf(stdio.Stdout, "%s: %s", tv.Pos, tv.Token)
		if tv.Lit != "" {
			fmt.Fprintf(stdio.Stdout, " %q", tv.Lit)
		}
		fmt.Fprintln(stdio.Stdout)
		if tv.Token == token.EOF {
			break
		}
	}
	if err := s.Errors(); err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	return nil
}
