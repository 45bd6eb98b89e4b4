package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var ErrAborted = errors.New("prompt aborted")

// Prompter abstracts the terminal so Console can be tested without one.
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
	Select(message string, options []string) (int, error)
}

type surveyPrompter struct{}

func SurveyPrompter() Prompter {
	return surveyPrompter{}
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(message string, options []string) (int, error) {
	var out int
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return -1, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// Console implements Notifier and Navigator on a terminal.
type Console struct {
	out      io.Writer
	prompter Prompter
	// AssumeYes answers every confirmation without asking.
	AssumeYes bool
}

func NewConsole(out io.Writer, p Prompter) *Console {
	return &Console{out: out, prompter: p}
}

func (c *Console) Alert(msg string) {
	fmt.Fprintf(c.out, "! %s\n", msg)
}

func (c *Console) Message(msg string) {
	fmt.Fprintln(c.out, msg)
}

func (c *Console) Confirm(ctx context.Context, p Prompt) (bool, error) {
	if p.After > 0 {
		timer := time.NewTimer(p.After)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	if c.AssumeYes {
		fmt.Fprintln(c.out, p.Message)
		return true, nil
	}

	return c.prompter.Confirm(p.Message, true)
}

func (c *Console) Navigate(target string) {
	fmt.Fprintf(c.out, "-> %s\n", target)
}

// Choose asks the user to pick one of options and returns its index.
func (c *Console) Choose(message string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	return c.prompter.Select(message, options)
}
