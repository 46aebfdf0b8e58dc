package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a single-line text prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a single-choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
	PageSize     int
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so sessions can be tested without one
// and callers can swap implementations.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns the interactive driver backed by survey. Prompts
// and info messages go to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	d := &surveyDriver{out: out}
	if file, ok := out.(*os.File); ok {
		d.opts = append(d.opts, survey.WithStdio(os.Stdin, file, os.Stderr))
	}
	return d
}

// ask runs one survey prompt and decodes the answer into T.
func ask[T any](ctx context.Context, d *surveyDriver, prompt survey.Prompt) (T, error) {
	var answer T
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	if err := survey.AskOne(prompt, &answer, d.opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return answer, ErrAborted
		}
		return answer, fmt.Errorf("tui: prompt %q: %w", promptMessage(prompt), err)
	}
	return answer, nil
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	return ask[string](ctx, d, &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default})
}

func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	return ask[string](ctx, d, &survey.Password{Message: cfg.Message, Help: cfg.Help})
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	return ask[bool](ctx, d, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default})
}

// Select answers with the chosen index; survey writes the index when the
// target is an int.
func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if cfg.PageSize > 0 {
		prompt.PageSize = cfg.PageSize
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.DefaultIndex
	}
	return ask[int](ctx, d, prompt)
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return ask[string](ctx, d, &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default})
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func promptMessage(prompt survey.Prompt) string {
	switch p := prompt.(type) {
	case *survey.Input:
		return p.Message
	case *survey.Password:
		return p.Message
	case *survey.Confirm:
		return p.Message
	case *survey.Select:
		return p.Message
	case *survey.Multiline:
		return p.Message
	}
	return ""
}
