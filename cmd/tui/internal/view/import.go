package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"budgetbook/internal/budget"
	"budgetbook/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStatePreview
	importStateUploading
	importStateResult
)

// ImportModel walks the user through picking a CSV file, previewing the
// parsed rows and uploading the kept ones.
type ImportModel struct {
	CommonModel
	api API

	state      importState
	filePicker filepicker.Model

	drafts      []budget.Draft
	previewList list.Model
	skip        map[int]bool

	status string
	err    error
}

func NewImportModel(client API) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		api:        client,
		filePicker: fp,
		skip:       make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "Space: toggle | a: all | n: none | Enter: upload | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case parsedFileMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.drafts = msg.drafts
		m.skip = make(map[int]bool)
		m.state = importStatePreview

		items := make([]list.Item, len(m.drafts))
		for i, d := range m.drafts {
			items[i] = draftItem{draft: d, index: i}
		}

		delegate := draftDelegate{skip: &m.skip}
		m.previewList = list.New(items, delegate, 80, 20)
		m.previewList.Title = fmt.Sprintf("Parsed %d rows", len(m.drafts))
		m.previewList.SetShowStatusBar(false)
		m.previewList.SetFilteringEnabled(false)
		m.previewList.SetShowHelp(false)

		return m, nil

	case uploadedMsg:
		m.state = importStateResult
		if msg.failed > 0 {
			m.err = msg.firstErr
			m.status = fmt.Sprintf("Imported %d transactions, %d failed: %s",
				msg.created, msg.failed, apiMessage(msg.firstErr))

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions.", msg.created)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateUploading
		m.status = fmt.Sprintf("Parsing %s...", path)

		return m, parseFileCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview:
		m.state = importStateFilePick
		m.drafts = nil
		m.skip = make(map[int]bool)

		return m, nil
	case importStateResult:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.previewList.Index()
		m.skip[idx] = !m.skip[idx]

		return m, nil
	case "a":
		for i := range m.drafts {
			m.skip[i] = false
		}

		return m, nil
	case "n":
		for i := range m.drafts {
			m.skip[i] = true
		}

		return m, nil
	case "enter":
		m.state = importStateUploading
		m.status = "Uploading..."

		return m, m.uploadCmd()
	}

	var cmd tea.Cmd
	m.previewList, cmd = m.previewList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV file to import:\n\n" + m.filePicker.View(),
		)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.previewList.View())
	case importStateUploading:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type parsedFileMsg struct {
	drafts []budget.Draft
	err    error
}

type uploadedMsg struct {
	created  int
	failed   int
	firstErr error
}

func parseFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parsedFileMsg{err: err}
		}
		defer f.Close()

		drafts, err := importer.Parse(f)
		if err != nil {
			return parsedFileMsg{err: err}
		}

		return parsedFileMsg{drafts: drafts}
	}
}

func (m ImportModel) uploadCmd() tea.Cmd {
	drafts := m.drafts
	skip := m.skip

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		var out uploadedMsg
		for i, d := range drafts {
			if skip[i] {
				continue
			}

			if _, err := m.api.Create(ctx, d); err != nil {
				out.failed++
				if out.firstErr == nil {
					out.firstErr = err
				}

				continue
			}

			out.created++
		}

		return out
	}
}

// Preview list item

type draftItem struct {
	draft budget.Draft
	index int
}

func (i draftItem) Title() string       { return "" }
func (i draftItem) Description() string { return "" }
func (i draftItem) FilterValue() string { return "" }

// Preview list delegate

type draftDelegate struct {
	skip *map[int]bool
}

func (d draftDelegate) Height() int                             { return 2 }
func (d draftDelegate) Spacing() int                            { return 0 }
func (d draftDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d draftDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(draftItem)
	if !ok {
		return
	}

	checkbox := "[x]"
	if (*d.skip)[item.index] {
		checkbox = "[ ]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	dr := item.draft
	fmt.Fprintf(w, "%s%s %s  %s  %s  %s\n",
		cursor, checkbox,
		dr.Date.String(),
		SignedAmount(dr.Type, dr.Amount),
		dr.Category,
		dr.Name,
	)
}
