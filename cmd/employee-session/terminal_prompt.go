package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/nommy-app/employee-session/biometric"
)

var _ biometric.Prompt = (*terminalPrompt)(nil)

// terminalPrompt stands in for the device biometric prompt: the challenge is
// a y/n confirmation on stdin.
type terminalPrompt struct {
	in *bufio.Reader
}

func (tp *terminalPrompt) Available(context.Context) (bool, error) {
	return true, nil
}

func (tp *terminalPrompt) Authenticate(_ context.Context, reason string) (bool, error) {
	fmt.Printf("[biometric] %s - confirm? [y/n] ", reason)
	answer, err := tp.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(answer) == "y", nil
}
