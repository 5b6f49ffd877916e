/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package status

import (
	"fmt"
	"io"
	"text/template"

	"github.com/muesli/termenv"

	"stash.kopano.io/kgol/cfemailrouting/cmd/cfemailroute/common"
)

const prettyTemplate = `
{{- WithEnabledForeground (Bold "zone")}}: {{WithEnabledForeground (or .Settings.Name .ZoneID)}}
  {{Bold "id"}}: {{.ZoneID}}
  {{Bold "enabled"}}: {{.Settings.Enabled}}
  {{Bold "status"}}: {{WithStatusColor (or .Settings.Status "unknown")}}
{{- if .Records}}
  {{Bold "records"}}:
    {{- range .Records}}
    - {{.Type}} {{.Name}}{{if .Priority}} {{deref .Priority}}{{end}} {{.Content}}
    {{- end}}
{{- end}}
`

func templateFuncs(p termenv.Profile, status *Status) template.FuncMap {
	okColor := p.Color(common.ColorOK)
	nokColor := p.Color(common.ColorNOK)
	pendingColor := p.Color(common.ColorPending)

	// Subset of the helpers in termenv, so formatting can be turned off if
	// the terminal supports ASCII only.
	return template.FuncMap{
		"Bold": func(values ...interface{}) string {
			if p == termenv.Ascii {
				return values[0].(string)
			}
			s := termenv.String(values[0].(string))
			return s.Bold().String()
		},
		"WithEnabledForeground": func(values ...interface{}) string {
			s := termenv.String(fmt.Sprintf("%v", values[len(values)-1]))
			if status.Settings.Enabled {
				s = s.Foreground(okColor)
			} else {
				s = s.Foreground(nokColor)
			}
			return s.String()
		},
		"WithStatusColor": func(values ...interface{}) string {
			value := fmt.Sprintf("%v", values[len(values)-1])
			s := termenv.String(value)
			if value == "ready" {
				s = s.Foreground(okColor)
			} else {
				s = s.Foreground(pendingColor)
			}
			return s.String()
		},
		"deref": func(v *uint16) uint16 {
			return *v
		},
	}
}

func outputPretty(w io.Writer, status *Status) error {
	return renderPretty(w, termenv.ColorProfile(), status)
}

func renderPretty(w io.Writer, p termenv.Profile, status *Status) error {
	if status.Settings == nil {
		return fmt.Errorf("no email routing settings for zone %v", status.ZoneID)
	}

	f := templateFuncs(p, status)
	tpl, err := template.New("tpl").Funcs(f).Parse(prettyTemplate)
	if err != nil {
		panic(err)
	}

	return tpl.Execute(w, status)
}
