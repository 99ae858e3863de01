// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Credential prompts for "templeadmin login".

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/templeops/templeadmin/internal/session"
)

// ErrLoginCancelled is returned when the operator aborts a prompt.
var ErrLoginCancelled = errors.New("login cancelled")

// CredentialReader collects login credentials. email is pre-filled from the
// command line and is only prompted for when empty.
type CredentialReader interface {
	ReadCredentials(email string) (session.Credentials, error)
}

// NewCredentialReader picks the reader for args: stdin when
// --password-stdin is given, otherwise an interactive terminal prompt.
func NewCredentialReader(args Args, stdin io.Reader) CredentialReader {
	if args.PasswordStdin {
		return &StreamReader{In: stdin}
	}
	return TerminalPrompt{}
}

// =============================================================================
// TERMINAL PROMPT
// =============================================================================

// TerminalPrompt asks for the email with line editing and reads the
// password without echo.
type TerminalPrompt struct{}

// ReadCredentials implements CredentialReader.
func (TerminalPrompt) ReadCredentials(email string) (session.Credentials, error) {
	if err := RequiresTTY("read the password"); err != nil {
		return session.Credentials{}, err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	var err error
	if strings.TrimSpace(email) == "" {
		email, err = line.Prompt("Email: ")
		if err != nil {
			return session.Credentials{}, promptError(err)
		}
	}
	password, err := line.PasswordPrompt("Password: ")
	if err != nil {
		return session.Credentials{}, promptError(err)
	}
	return checkCredentials(email, password)
}

func promptError(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return ErrLoginCancelled
	}
	return fmt.Errorf("read input: %w", err)
}

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader reads the password from the first line of In, for scripts.
// The email must come from the command line.
type StreamReader struct {
	In io.Reader
}

// ReadCredentials implements CredentialReader.
func (s *StreamReader) ReadCredentials(email string) (session.Credentials, error) {
	if strings.TrimSpace(email) == "" {
		return session.Credentials{}, ErrMissingArgument("--email", "templeadmin login --email <address> --password-stdin")
	}
	password, err := bufio.NewReader(s.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return session.Credentials{}, fmt.Errorf("read password: %w", err)
	}
	return checkCredentials(email, strings.TrimRight(password, "\r\n"))
}

// checkCredentials applies the same required-field rule as the login form.
func checkCredentials(email, password string) (session.Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return session.Credentials{}, &UsageError{Reason: "Email and password are required."}
	}
	return session.Credentials{Email: email, Password: password}, nil
}
