// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/glimpse-dev/glimpse/internal/search"
)

// searchFunc runs one query; serverClient.search in production.
type searchFunc func(ctx context.Context, query string, k int) ([]search.Result, error)

// --- bubbletea messages ---

type (
	resultsMsg struct {
		query   string
		results []search.Result
	}
	searchErrMsg struct {
		query string
		err   error
	}
)

// --- lipgloss styles ---

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	captionStyle = lipgloss.NewStyle().PaddingLeft(4)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

// searchModel is the bubbletea model for interactive search.
type searchModel struct {
	ctx       context.Context
	search    searchFunc
	server    string
	k         int
	input     textinput.Model
	spinner   spinner.Model
	searching bool
	query     string
	results   []search.Result
	err       error
	width     int
}

func newSearchModel(ctx context.Context, fn searchFunc, server string, k int) searchModel {
	in := textinput.New()
	in.Placeholder = "describe the image you are looking for"
	in.Prompt = "› "
	in.CharLimit = 512
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return searchModel{
		ctx:     ctx,
		search:  fn,
		server:  server,
		k:       k,
		input:   in,
		spinner: sp,
	}
}

func (m searchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultsMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.searching = false
		m.results = msg.results
		m.err = nil
		return m, nil

	case searchErrMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.searching = false
		m.results = nil
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m searchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		q := strings.TrimSpace(m.input.Value())
		if q == "" {
			return m, nil
		}
		m.query = q
		m.searching = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.searchCmd(q))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m searchModel) searchCmd(query string) tea.Cmd {
	fn, ctx, k := m.search, m.ctx, m.k
	return func() tea.Msg {
		results, err := fn(ctx, query, k)
		if err != nil {
			return searchErrMsg{query: query, err: err}
		}
		return resultsMsg{query: query, results: results}
	}
}

func (m searchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  Glimpse  ") + dimStyle.Render(" "+m.server) + "\n\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case m.searching:
		b.WriteString(m.spinner.View() + " Searching for " + promptStyle.Render(m.query) + "…\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("  "+m.err.Error()) + "\n")
	case m.query != "" && len(m.results) == 0:
		b.WriteString(dimStyle.Render("  No results for "+m.query) + "\n")
	default:
		for i, r := range m.results {
			b.WriteString(pathStyle.Render(fmt.Sprintf("%2d. %s", i+1, r.ImagePath)) + "\n")
			b.WriteString(captionStyle.Width(m.captionWidth()).Render(r.Caption) + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("enter to search  esc to quit"))
	return boxStyle.Render(b.String())
}

func (m searchModel) captionWidth() int {
	if m.width <= 12 {
		return 76
	}
	return m.width - 8
}
