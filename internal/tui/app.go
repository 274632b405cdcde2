// internal/tui/app.go
//
// This is the hint TUI. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// Stories arrive over the delivery channel. waitForStory blocks on the
// channel inside a command and re-arms itself after every delivery, so
// the updater's pace never stalls the event loop.

package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hintapp/hint/internal/feed"
	"github.com/hintapp/hint/internal/logbook"
)

// storyDeliveredMsg carries one story handed over by the updater.
type storyDeliveredMsg struct {
	story feed.Story
}

// feedClosedMsg reports that the updater closed the delivery channel.
type feedClosedMsg struct{}

// storyItem implements list.Item for one row of the story list.
type storyItem struct {
	story feed.Story
	read  bool
}

func (i storyItem) FilterValue() string { return i.story.Title }

// AppOption customizes App construction.
type AppOption func(*App)

// WithLogbook routes session activity into a logbook and enables the
// log panel.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// WithFeedLabel sets the feed name shown in the header.
func WithFeedLabel(label string) AppOption {
	return func(a *App) {
		if strings.TrimSpace(label) != "" {
			a.feedLabel = label
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your
// state.
type App struct {
	board      *feed.Board
	deliveries <-chan feed.Story
	logbook    *logbook.Logbook
	feedLabel  string

	stories list.Model
	spin    spinner.Model
	read    map[int]bool

	updating   bool
	showDetail bool
	showLog    bool
	statusMsg  string

	width  int
	height int
}

// NewApp wires the TUI to the board it renders and the channel the
// updater delivers on.
func NewApp(board *feed.Board, deliveries <-chan feed.Story, opts ...AppOption) *App {
	stories := list.New(nil, storyDelegate{}, 0, 0)
	stories.SetShowTitle(false)
	stories.SetShowStatusBar(false)
	stories.SetFilteringEnabled(false)
	stories.SetShowHelp(false)
	stories.SetShowPagination(false)

	spin := spinner.New(
		spinner.WithSpinner(spinner.Line),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))),
	)

	app := &App{
		board:      board,
		deliveries: deliveries,
		feedLabel:  "Top",
		stories:    stories,
		spin:       spin,
		read:       map[int]bool{},
		updating:   true,
		statusMsg:  "Loading stories...",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Init starts the spinner and arms the first channel read.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.waitForStory())
}

// waitForStory blocks on the delivery channel until the updater hands
// over the next story or closes the channel.
func (a *App) waitForStory() tea.Cmd {
	ch := a.deliveries
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		story, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return storyDeliveredMsg{story: story}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeList()
		return a, nil

	case storyDeliveredMsg:
		cmd := a.appendStory(msg.story)
		return a, tea.Batch(cmd, a.waitForStory())

	case feedClosedMsg:
		a.updating = false
		if a.count() == 0 {
			a.statusMsg = "Feed is empty. Press q to quit."
		} else {
			a.statusMsg = fmt.Sprintf("Feed complete · %d stories", a.count())
		}
		return a, nil

	case spinner.TickMsg:
		if !a.updating {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.stories, cmd = a.stories.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		a.logInfo("session closed · %d of %d stories read", a.readCount(), a.count())
		return a, tea.Quit

	case "enter", "l", "right":
		return a, a.openSelectedStory()

	case "left", "h":
		if a.showDetail {
			a.showDetail = false
			a.resizeList()
		}
		return a, nil

	case "tab":
		a.showLog = !a.showLog
		a.resizeList()
		return a, nil

	case "r":
		return a, a.resyncFromBoard()
	}

	var cmd tea.Cmd
	a.stories, cmd = a.stories.Update(msg)
	return a, cmd
}

// openSelectedStory marks the selection read and expands the detail
// panel, mirroring what opening a story in a browser would do.
func (a *App) openSelectedStory() tea.Cmd {
	item, ok := a.stories.SelectedItem().(storyItem)
	if !ok {
		return nil
	}
	item.read = true
	a.read[item.story.Position] = true
	cmd := a.stories.SetItem(a.stories.Index(), item)
	if !a.showDetail {
		a.showDetail = true
		a.resizeList()
	}
	a.statusMsg = fmt.Sprintf("Opened %q", item.story.Title)
	return cmd
}

// resyncFromBoard rebuilds the list from a board snapshot. Items are
// keyed by position, so stories that already arrived over the channel
// stay put and keep their read state.
func (a *App) resyncFromBoard() tea.Cmd {
	if a.board == nil {
		return nil
	}
	var items []list.Item
	for story := range a.board.Stories() {
		items = append(items, storyItem{story: story, read: a.read[story.Position]})
	}
	selected := a.stories.Index()
	cmd := a.stories.SetItems(items)
	if selected >= len(items) {
		selected = len(items) - 1
	}
	if selected >= 0 {
		a.stories.Select(selected)
	}
	a.statusMsg = fmt.Sprintf("Resynced %d of %d stories", len(items), a.boardLimit())
	a.logInfo("resynced %d stories from board", len(items))
	return cmd
}

func (a *App) appendStory(story feed.Story) tea.Cmd {
	item := storyItem{story: story, read: a.read[story.Position]}
	cmd := a.stories.InsertItem(len(a.stories.Items()), item)
	a.statusMsg = fmt.Sprintf("Fetched %d of %d stories", a.count(), a.boardLimit())
	return cmd
}

func (a *App) count() int { return len(a.stories.Items()) }

func (a *App) readCount() int {
	n := 0
	for _, read := range a.read {
		if read {
			n++
		}
	}
	return n
}

func (a *App) boardLimit() int {
	if a.board == nil {
		return a.count()
	}
	return a.board.Limit()
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) resizeList() {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	reserved := 6
	if a.showDetail {
		reserved += 8
	}
	if a.showLog {
		reserved += 11
	}
	a.stories.SetSize(max(20, a.width-4), max(3, a.height-reserved))
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	sections := []string{
		a.renderHeader(),
		a.stories.View(),
		a.renderProgress(),
	}
	if a.showDetail {
		if panel := a.renderDetailPanel(width); panel != "" {
			sections = append(sections, panel)
		}
	}
	if a.showLog {
		if panel := a.renderLogPanel(width); panel != "" {
			sections = append(sections, panel)
		}
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) renderHeader() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render(fmt.Sprintf("⬡ HINT · Hacker News · %s", a.feedLabel))
}

func (a *App) renderProgress() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	if a.updating {
		return style.Render(fmt.Sprintf("%s fetching · %d/%d", a.spin.View(), a.count(), a.boardLimit()))
	}
	return style.Render(fmt.Sprintf("feed complete · %d/%d", a.count(), a.boardLimit()))
}

func (a *App) renderDetailPanel(width int) string {
	item, ok := a.stories.SelectedItem().(storyItem)
	if !ok {
		return ""
	}
	story := item.story
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("STORY %d · %s", story.Position+1, story.Kind))
	meta := fmt.Sprintf("by %s · %d points · %d comments", story.Author, story.Score, story.Descendants)
	if story.Time > 0 {
		meta += fmt.Sprintf(" · %s ago", humanizeDuration(time.Since(time.Unix(story.Time, 0))))
	}
	status := "unread"
	if a.read[story.Position] {
		status = "read"
	}
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join([]string{story.Title, meta, story.URL, "status: " + status}, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-2)).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderLogPanel(width int) string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(8)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-2)).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderFooter() string {
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("j/k move · enter open · h close · r resync · tab log · q quit")
	if strings.TrimSpace(a.statusMsg) == "" {
		return footer
	}
	status := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(a.statusMsg)
	return lipgloss.JoinVertical(lipgloss.Left, status, footer)
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// storyDelegate renders one story per line: read marker, rank, title.
type storyDelegate struct{}

func (d storyDelegate) Height() int                               { return 1 }
func (d storyDelegate) Spacing() int                              { return 0 }
func (d storyDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d storyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(storyItem)
	if !ok {
		return
	}
	marker := "☐"
	if entry.read {
		marker = "✓"
	}
	line := fmt.Sprintf("%s %2d  %s", marker, entry.story.Position+1, entry.story.Title)

	style := lipgloss.NewStyle()
	if index == m.Index() {
		line = "› " + line
		style = style.Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	} else {
		line = "  " + line
		if index%2 == 1 {
			// Zebra shading keeps long lists scannable.
			style = style.Foreground(lipgloss.Color("#AAAAAA"))
		}
	}
	fmt.Fprint(w, style.Render(truncate(line, m.Width())))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
