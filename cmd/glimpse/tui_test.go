// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/search"
)

func stubSearch(results []search.Result, err error) (searchFunc, *[]string) {
	var queries []string
	return func(_ context.Context, query string, _ int) ([]search.Result, error) {
		queries = append(queries, query)
		return results, err
	}, &queries
}

func typeQuery(t *testing.T, m searchModel, q string) (searchModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(q)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(searchModel), cmd
}

func TestSearchModel_EnterRunsSearch(t *testing.T) {
	fn, queries := stubSearch([]search.Result{
		{ImagePath: "a.png", Caption: "a red car parked on a street"},
		{ImagePath: "b.png", Caption: "a dog on a beach"},
	}, nil)
	m := newSearchModel(context.Background(), fn, "127.0.0.1:8000", 3)

	m, cmd := typeQuery(t, m, "  red car ")
	require.NotNil(t, cmd)
	assert.True(t, m.searching)
	assert.Equal(t, "red car", m.query)
	assert.Contains(t, m.View(), "Searching for")

	msg := m.searchCmd(m.query)()
	assert.Equal(t, []string{"red car"}, *queries)

	next, _ := m.Update(msg)
	m = next.(searchModel)
	assert.False(t, m.searching)
	require.Len(t, m.results, 2)

	view := m.View()
	assert.Contains(t, view, "a.png")
	assert.Contains(t, view, "a dog on a beach")
}

func TestSearchModel_EmptyQueryIgnored(t *testing.T) {
	fn, queries := stubSearch(nil, nil)
	m := newSearchModel(context.Background(), fn, "", 5)

	m, cmd := typeQuery(t, m, "   ")
	assert.Nil(t, cmd)
	assert.False(t, m.searching)
	assert.Empty(t, *queries)
}

func TestSearchModel_StaleResultsDropped(t *testing.T) {
	fn, _ := stubSearch(nil, nil)
	m := newSearchModel(context.Background(), fn, "", 5)
	m, _ = typeQuery(t, m, "beach")

	next, _ := m.Update(resultsMsg{query: "car", results: []search.Result{{ImagePath: "a.png"}}})
	m = next.(searchModel)
	assert.True(t, m.searching)
	assert.Empty(t, m.results)

	next, _ = m.Update(searchErrMsg{query: "car", err: errors.New("boom")})
	m = next.(searchModel)
	assert.NoError(t, m.err)
}

func TestSearchModel_Error(t *testing.T) {
	fn, _ := stubSearch(nil, errors.New("server returned status 500"))
	m := newSearchModel(context.Background(), fn, "", 5)
	m, _ = typeQuery(t, m, "beach")

	next, _ := m.Update(m.searchCmd("beach")())
	m = next.(searchModel)
	assert.False(t, m.searching)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "server returned status 500")
}

func TestSearchModel_NoResults(t *testing.T) {
	fn, _ := stubSearch(nil, nil)
	m := newSearchModel(context.Background(), fn, "", 5)
	m, _ = typeQuery(t, m, "unicorn")

	next, _ := m.Update(m.searchCmd("unicorn")())
	m = next.(searchModel)
	assert.Contains(t, m.View(), "No results for unicorn")
}

func TestSearchModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(key.String(), func(t *testing.T) {
			fn, _ := stubSearch(nil, nil)
			m := newSearchModel(context.Background(), fn, "", 5)
			_, cmd := m.Update(key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestSearchModel_WindowSize(t *testing.T) {
	fn, _ := stubSearch(nil, nil)
	m := newSearchModel(context.Background(), fn, "", 5)
	assert.Equal(t, 76, m.captionWidth())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 92, next.(searchModel).captionWidth())
}
