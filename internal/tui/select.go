// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/partly/internal/enrichment/part"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction is what the user did with the picker.
type SelectionAction int

const (
	ActionNone SelectionAction = iota
	ActionSelected
	ActionSkipped
	// ActionStopped asks the caller to stop prompting for the rest of the batch.
	ActionStopped
)

// SelectionResult holds the outcome of Select. Index points into the
// candidates passed to Select and is -1 unless Action is ActionSelected.
type SelectionResult struct {
	Action    SelectionAction
	Index     int
	Selection *part.Scored
}

type keyMap struct {
	Move, Choose, Skip, Stop key.Binding
}

var keys = keyMap{
	Move:   key.NewBinding(key.WithKeys("up", "down", "k", "j"), key.WithHelp("up/down", "move")),
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Skip:   key.NewBinding(key.WithKeys("s", "esc"), key.WithHelp("s", "skip")),
	Stop:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "stop")),
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Move, k.Choose, k.Skip, k.Stop} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type candidateItem struct {
	part.Scored
	index int
}

func (i candidateItem) FilterValue() string { return i.MPN }

type candidateDelegate struct{ theme theme }

func (d candidateDelegate) Height() int                         { return 4 }
func (d candidateDelegate) Spacing() int                        { return 1 }
func (d candidateDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d candidateDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	c, ok := item.(candidateItem)
	if !ok {
		return
	}
	inner := m.Width() - 4

	vendor := c.Manufacturer
	if vendor == "" {
		vendor = "unknown manufacturer"
	}
	link := c.DatasheetURL
	if link == "" {
		link = "no datasheet"
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		d.theme.vendor.Render("["+strings.ToUpper(vendor)+"]")+"  "+d.theme.score.Render(fmt.Sprintf("score %.2f", c.Score)),
		d.theme.mpn.Render(c.MPN),
		d.theme.meta.Render(formatMetadata(c.Candidate, inner)),
		d.theme.link.Render(truncate(link, inner)),
	)

	card := d.theme.card
	if idx == m.Index() {
		card = d.theme.cardActive
	}
	_, _ = io.WriteString(w, card.Render(body))
}

type model struct {
	list   list.Model
	help   help.Model
	theme  theme
	mpn    string
	result SelectionResult
}

func newModel(mpn string, items []candidateItem) *model {
	th := newTheme()
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, candidateDelegate{theme: th}, defaultListWidth, defaultListHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return &model{
		list:   l,
		help:   help.New(),
		theme:  th,
		mpn:    mpn,
		result: SelectionResult{Action: ActionNone, Index: -1},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Choose):
			if it, ok := m.list.SelectedItem().(candidateItem); ok {
				chosen := it.Scored
				m.result = SelectionResult{Action: ActionSelected, Index: it.index, Selection: &chosen}
				return m, tea.Quit
			}
		case key.Matches(msg, keys.Skip):
			m.result = SelectionResult{Action: ActionSkipped, Index: -1}
			return m, tea.Quit
		case key.Matches(msg, keys.Stop):
			m.result = SelectionResult{Action: ActionStopped, Index: -1}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(clamp(defaultListWidth, msg.Width-4, 40), clamp(defaultListHeight, msg.Height-6, 5))
		m.help.Width = msg.Width
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	status := fmt.Sprintf("candidate %d of %d  ", m.list.Index()+1, len(m.list.Items())) + m.help.View(keys)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.header.Render("Ambiguous match for: "+m.mpn),
		m.list.View(),
		m.theme.status.Render(status),
	)
}

// Select lets the user pick one of the ranked candidates for an ambiguous
// part number. With no candidates it reports a skip without showing a UI.
func Select(mpn string, candidates []part.Scored) (SelectionResult, error) {
	if len(candidates) == 0 {
		return SelectionResult{Action: ActionSkipped, Index: -1}, nil
	}

	items := make([]candidateItem, len(candidates))
	for i, c := range candidates {
		items[i] = candidateItem{Scored: c, index: i}
	}

	final, err := runProgram(newModel(mpn, items))
	if err != nil {
		return SelectionResult{}, err
	}
	m, ok := final.(*model)
	if !ok {
		return SelectionResult{}, fmt.Errorf("unexpected program result %T", final)
	}
	return m.result, nil
}

// truncate collapses whitespace and cuts value to width bytes, marking the
// cut with "...".
func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	switch {
	case width <= 0 || len(value) <= width:
		return value
	case width <= 3:
		return value[:width]
	default:
		return value[:width-3] + "..."
	}
}

// formatMetadata summarizes source, confidence and spec fields on one line.
func formatMetadata(c part.Candidate, width int) string {
	var segs []string
	if c.Source != "" {
		segs = append(segs, c.Source)
	}
	segs = append(segs, fmt.Sprintf("confidence %.0f%%", c.Confidence*100))

	if len(c.Fields) > 0 {
		specs := make([]string, 0, len(c.Fields))
		for k, v := range c.Fields {
			specs = append(specs, k+"="+v)
		}
		sort.Strings(specs)
		segs = append(segs, strings.Join(specs, ", "))
	}

	return truncate(strings.Join(segs, " | "), width)
}

// clamp returns def, shrunk to available when that is positive and smaller,
// but never below floor.
func clamp(def, available, floor int) int {
	v := def
	if available > 0 && available < def {
		v = available
	}
	return max(v, floor)
}
