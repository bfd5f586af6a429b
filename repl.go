package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/sealor/stock-chat/pkg/conversation"
)

const prompt = "> "

type lineReader interface {
	ReadLine() (string, error)
}

// rawReader switches the terminal to raw mode only while a line is edited.
type rawReader struct {
	fd int
	t  *term.Terminal
}

func (r *rawReader) ReadLine() (string, error) {
	oldState, err := term.MakeRaw(r.fd)
	if err != nil {
		return "", err
	}

	if width, height, err := term.GetSize(r.fd); err == nil {
		r.t.SetSize(width, height)
	}

	line, err := r.t.ReadLine()
	if restoreErr := term.Restore(r.fd, oldState); restoreErr != nil && err == nil {
		err = restoreErr
	}
	return line, err
}

type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) ReadLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func newLineReader() lineReader {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return &rawReader{fd: fd, t: term.NewTerminal(os.Stdin, prompt)}
	}
	return &scanReader{scanner: bufio.NewScanner(os.Stdin)}
}

func (a *app) repl(ctx context.Context, reader lineReader) error {
	conv := conversation.Conversation{}

	a.console.Notice("Stock Analysis Chatbot Assistant. Type /history, /reset or /quit.")

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				a.logger.Debug("session ended", "messages", conv.Len())
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "/quit", "/exit":
			a.logger.Debug("session ended", "messages", conv.Len())
			return nil
		case "/reset":
			conv = conversation.Conversation{}
			a.console.Notice("Conversation cleared.")
			continue
		case "/history":
			if err := a.console.History(conv); err != nil {
				a.console.Error(err)
			}
			continue
		}

		conv = a.runTurn(ctx, conv, input)
	}
}

// runTurn reports any failure and keeps the conversation from before the turn.
func (a *app) runTurn(ctx context.Context, conv conversation.Conversation, input string) conversation.Conversation {
	turnCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	next, reply, err := a.assistant.Turn(turnCtx, conv, input)
	if err != nil {
		a.console.Error(err)
		return conv
	}

	if err := a.console.Reply(reply); err != nil {
		a.console.Error(err)
	}
	return next
}
