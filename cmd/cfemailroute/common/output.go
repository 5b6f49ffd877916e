/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputPretty = "pretty"
	OutputJSON   = "json"
	OutputYAML   = "yaml"
)

// Write renders v in format. Pretty output is delegated to pretty.
func Write(w io.Writer, format string, v interface{}, pretty func(w io.Writer) error) error {
	switch format {
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)

	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()

	case OutputPretty, "":
		return pretty(w)

	default:
		return fmt.Errorf("unsupported output format: %v", format)
	}
}

// Bold renders s bold unless the terminal only supports ASCII.
func Bold(s string) string {
	if termenv.ColorProfile() == termenv.Ascii {
		return s
	}
	return termenv.String(s).Bold().String()
}

// Colored renders s in the ANSI color c unless the terminal only supports
// ASCII.
func Colored(s string, c string) string {
	p := termenv.ColorProfile()
	if p == termenv.Ascii {
		return s
	}
	return termenv.String(s).Foreground(p.Color(c)).String()
}

// Terminal colors.
const (
	ColorOK      = "112"
	ColorNOK     = "196"
	ColorPending = "214"
)
