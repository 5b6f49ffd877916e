/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

type errMsg error

type resultMsg struct {
	value interface{}
}

type progressModel struct {
	ctx   context.Context
	title string
	fetch func(ctx context.Context) (interface{}, error)

	spinner spinner.Model

	quitting bool
	done     bool

	value interface{}
	err   error
}

func newProgressModel(ctx context.Context, title string, fetch func(ctx context.Context) (interface{}, error)) *progressModel {
	s := spinner.NewModel()
	s.HideFor = time.Second
	s.Spinner = spinner.Line
	return &progressModel{
		ctx:   ctx,
		title: title,
		fetch: fetch,

		spinner: s,
	}
}

func (m *progressModel) run() tea.Msg {
	value, err := m.fetch(m.ctx)
	if err != nil {
		return errMsg(err)
	}
	return resultMsg{value: value}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(
		spinner.Tick,
		m.run,
	)
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.err = context.Canceled
			return m, tea.Quit
		default:
			return m, nil
		}

	case errMsg:
		m.err = msg
		m.done = true
		return m, tea.Quit

	case resultMsg:
		m.value = msg.value
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m *progressModel) View() string {
	if m.done {
		// Results are rendered by the caller.
		return ""
	}

	s := termenv.String(m.spinner.View()).String()
	str := fmt.Sprintf("%s %s ...", s, m.title)

	if m.quitting {
		return str + "\n"
	}
	return str
}

// WithProgress runs fetch while showing a spinner with title. Without a
// terminal on stdout, or with structured output, fetch runs without user
// interface.
func WithProgress(ctx context.Context, title string, format string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if format != OutputPretty || !isatty.IsTerminal(os.Stdout.Fd()) {
		return fetch(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newProgressModel(ctx, title, fetch)

	p := tea.NewProgram(model)
	if err := p.Start(); err != nil {
		return nil, err
	}
	if model.err != nil {
		return nil, model.err
	}

	return model.value, nil
}
