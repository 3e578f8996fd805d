package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/ui/theme"
)

// Option is a labelled choice.
type Option struct {
	Label string
	Value string
}

// InputOptions configures a text prompt.
type InputOptions struct {
	Message  string
	Hidden   bool
	Validate func(string) error
}

// Prompter is the interactive surface used by the login flows.
//
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=$GOFILE -destination=mock_$GOFILE -package=$GOPACKAGE
type Prompter interface {
	// IsInteractive reports whether prompts can be shown.
	IsInteractive() bool
	// Choose asks the user to pick one option and returns its value.
	Choose(ctx context.Context, message string, options []Option) (string, error)
	// Input asks for free text.
	Input(ctx context.Context, opts InputOptions) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string) (bool, error)
	// Notice prints a titled block.
	Notice(title, body string)
	// Success prints a success line.
	Success(message string)
	// Aside prints a muted secondary line.
	Aside(message string)
	// Warning prints a warning line.
	Warning(message string)
}

// HuhPrompter renders prompts with huh and messages with lipgloss.
type HuhPrompter struct {
	out         io.Writer
	interactive bool
}

// HuhOption configures a HuhPrompter.
type HuhOption func(*HuhPrompter)

// WithOutput sets the writer used for messages.
func WithOutput(w io.Writer) HuhOption {
	return func(p *HuhPrompter) {
		p.out = w
	}
}

// WithInteractive overrides terminal detection.
func WithInteractive(interactive bool) HuhOption {
	return func(p *HuhPrompter) {
		p.interactive = interactive
	}
}

// NewHuhPrompter creates a prompter writing to stderr.
func NewHuhPrompter(opts ...HuhOption) *HuhPrompter {
	p := &HuhPrompter{
		out:         os.Stderr,
		interactive: IsTTY(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsTTY reports whether stdin and stderr are both terminals.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// IsInteractive implements Prompter.
func (p *HuhPrompter) IsInteractive() bool {
	return p.interactive
}

// Choose implements Prompter.
func (p *HuhPrompter) Choose(ctx context.Context, message string, options []Option) (string, error) {
	if !p.interactive {
		return "", fmt.Errorf("%w: %s", errUtils.ErrNonInteractive, message)
	}

	huhOptions := make([]huh.Option[string], 0, len(options))
	for _, opt := range options {
		huhOptions = append(huhOptions, huh.NewOption(opt.Label, opt.Value))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(message).
				Options(huhOptions...).
				Value(&selected),
		),
	).WithTheme(theme.HuhTheme())

	if err := p.run(ctx, form); err != nil {
		return "", err
	}
	return selected, nil
}

// Input implements Prompter.
func (p *HuhPrompter) Input(ctx context.Context, opts InputOptions) (string, error) {
	if !p.interactive {
		return "", fmt.Errorf("%w: %s", errUtils.ErrNonInteractive, opts.Message)
	}

	var value string
	input := huh.NewInput().
		Title(opts.Message).
		Value(&value)
	if opts.Hidden {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if opts.Validate != nil {
		input = input.Validate(opts.Validate)
	}

	form := huh.NewForm(huh.NewGroup(input)).WithTheme(theme.HuhTheme())
	if err := p.run(ctx, form); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Confirm implements Prompter.
func (p *HuhPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	if !p.interactive {
		return false, fmt.Errorf("%w: %s", errUtils.ErrNonInteractive, message)
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithTheme(theme.HuhTheme())

	if err := p.run(ctx, form); err != nil {
		return false, err
	}
	return confirmed, nil
}

func (p *HuhPrompter) run(ctx context.Context, form *huh.Form) error {
	err := form.RunWithContext(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return errUtils.ErrPromptCanceled
	}
	return fmt.Errorf("prompt failed: %w", err)
}

// Notice implements Prompter.
func (p *HuhPrompter) Notice(title, body string) {
	text := theme.Styles.Title.Render(title)
	if body != "" {
		text += "\n" + theme.Styles.Body.Render(body)
	}
	fmt.Fprintln(p.out, theme.Styles.Box.Render(text))
}

// Success implements Prompter.
func (p *HuhPrompter) Success(message string) {
	fmt.Fprintln(p.out, theme.Styles.Success.Render(theme.IconSuccess+" "+message))
}

// Aside implements Prompter.
func (p *HuhPrompter) Aside(message string) {
	fmt.Fprintln(p.out, theme.Styles.Muted.Render(message))
}

// Warning implements Prompter.
func (p *HuhPrompter) Warning(message string) {
	fmt.Fprintln(p.out, theme.Styles.Warning.Render(theme.IconWarning+" "+message))
}
