package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/service"

	"golang.org/x/term"
)

// prompter reads a secret from the user when a terminal is attached.
type prompter interface {
	IsTerminal() bool
	ReadSecret(label string) (string, error)
}

type terminalPrompter struct {
	in  *os.File
	out io.Writer
}

func stdinPrompter() prompter {
	return &terminalPrompter{in: os.Stdin, out: os.Stderr}
}

func (p *terminalPrompter) IsTerminal() bool {
	return term.IsTerminal(int(p.in.Fd()))
}

func (p *terminalPrompter) ReadSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(int(p.in.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func ensureKey(ctx context.Context, p prompter) error {
	return ensureSessionKey(ctx, container.SessionService, p)
}

// ensureSessionKey asks once for a missing key. Without a terminal there is
// nobody to ask, so the run stops with the warning.
func ensureSessionKey(ctx context.Context, sessions service.ISessionService, p prompter) error {
	st, err := sessions.CredentialStatus(ctx, cliSession)
	if err != nil {
		return err
	}
	if !st.Required || st.Found {
		return nil
	}

	warning := "⚠️ Enter " + st.Name + " to start."
	if !p.IsTerminal() {
		return &exitError{code: 1, msg: warning}
	}

	key, err := p.ReadSecret(st.Name)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return &exitError{code: 1, msg: warning}
	}

	_, err = sessions.SetAPIKey(ctx, cliSession, &dto.SetAPIKeyRequest{APIKey: key})
	return err
}
