package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// prompter asks the user for input. Commands go through prompts so they can
// be scripted.
type prompter interface {
	Ask(label, def string, mask rune, validate func(string) error) (string, error)
	Choose(label string, items []string, cursor int) (string, error)
	// Confirm reports false when the user declines; err is set only when
	// the prompt itself failed or was interrupted.
	Confirm(label string) (bool, error)
}

var prompts prompter = terminalPrompter{}

type terminalPrompter struct{}

func (terminalPrompter) Ask(label, def string, mask rune, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: def,
		Mask:    mask,
	}
	if validate != nil {
		prompt.Validate = validate
	}
	v, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return v, nil
}

func (terminalPrompter) Choose(label string, items []string, cursor int) (string, error) {
	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: cursor,
	}
	_, v, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return v, nil
}

func (terminalPrompter) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, err
	}
}
