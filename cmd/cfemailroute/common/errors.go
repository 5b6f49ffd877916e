/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitCodeError         = 1
	ExitCodeUnsuccessful  = 2
	ExitCodeStartupFailed = 64
)

var (
	ErrMissingAccountID = errors.New("account-id must not be empty")
	ErrMissingZoneID    = errors.New("zone-id must not be empty")
)

// ErrorWithExitCode is an error which ends the process with Code.
type ErrorWithExitCode struct {
	Err  error
	Code int
}

func (err *ErrorWithExitCode) Error() string {
	return err.Err.Error()
}

func (err *ErrorWithExitCode) Unwrap() error {
	return err.Err
}

// StartupError wraps err as failure to set up a command.
func StartupError(err error) error {
	return &ErrorWithExitCode{
		Err:  err,
		Code: ExitCodeStartupFailed,
	}
}

// UnsuccessfulError wraps err as an operation which completed without
// success.
func UnsuccessfulError(err error) error {
	return &ErrorWithExitCode{
		Err:  err,
		Code: ExitCodeUnsuccessful,
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitCodeErr *ErrorWithExitCode
	if errors.As(err, &exitCodeErr) {
		return exitCodeErr.Code
	}
	return ExitCodeError
}

// Run adapts fn to a cobra Run function which prints errors and exits.
func Run(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := fn(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitCode(err))
		}
	}
}
