package main

import (
	"io"
	"strings"

	"github.com/peterh/liner"
)

// linerInput adapts a github.com/peterh/liner line editor into a streaming
// io.Reader: WORD/KEY pull runes continuously, but liner hands back whole
// lines, so each Prompt result is queued with its trailing newline restored
// and drained a line at a time. History is appended for every non-empty
// line, grounded on rcornwell-S370/command/reader/reader.go's
// ConsoleReader loop.
type linerInput struct {
	line   *liner.State
	prompt string
	pend   strings.Reader
}

func newLinerInput(prompt string) *linerInput {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	return &linerInput{line: st, prompt: prompt}
}

func (li *linerInput) SetCompleter(words func(string) []string) {
	li.line.SetCompleter(func(s string) []string { return words(s) })
}

func (li *linerInput) Close() error {
	return li.line.Close()
}

func (li *linerInput) Read(p []byte) (int, error) {
	for li.pend.Len() == 0 {
		cmd, err := li.line.Prompt(li.prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
		if strings.TrimSpace(cmd) != "" {
			li.line.AppendHistory(cmd)
		}
		li.pend = *strings.NewReader(cmd + "\n")
	}
	return li.pend.Read(p)
}
