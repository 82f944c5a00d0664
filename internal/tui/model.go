package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cf-upload/internal/control"
	"cf-upload/internal/dictionary"
	"cf-upload/internal/eventloop"
	"cf-upload/internal/flow"
	"cf-upload/internal/form"
	"cf-upload/internal/reader"
	"cf-upload/internal/scanner"
	"cf-upload/pkg/utils"
)

type status int

const (
	statusAnswering status = iota
	statusDone
	statusQuit
)

// shared holds state written from control callbacks, which cannot reach the
// model value.
type shared struct {
	rescan bool
}

type model struct {
	form   *form.Form
	loop   *eventloop.Loop
	picker *control.PickerInput
	root   string
	opts   scanner.Options
	sh     *shared

	sp    spinner.Model
	bar   progress.Model
	input textinput.Model

	st     status
	stepID string

	// file list (custom rendering, not using bubbles/list)
	items        []item
	cursor       int
	scrollOffset int

	// choice list
	choiceCursor int

	// scanning stream
	scanCh     chan tea.Msg
	scanCancel context.CancelFunc
	scanning   bool
	scanErr    error

	// terminal size
	termW int
	termH int

	showHelp bool
}

type item struct {
	path string
	disp string
	size int64
	err  error
}

func newModel(f *form.Form, loop *eventloop.Loop, picker *control.PickerInput, root string, opts scanner.Options) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	in := textinput.New()
	in.CharLimit = 512
	m := model{
		form:   f,
		loop:   loop,
		picker: picker,
		root:   root,
		opts:   opts,
		sh:     &shared{},
		sp:     sp,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		input:  in,
		st:     statusAnswering,
	}
	picker.OnClick = func() { m.sh.rescan = true }
	m.startScan()
	m.syncStep()
	return m
}

// Run starts the form and drives it until every field is answered or the
// user quits. It returns the recorded answers.
func Run(f *form.Form, loop *eventloop.Loop, picker *control.PickerInput, root string, opts scanner.Options) ([]form.Answer, error) {
	if err := f.Start(); err != nil {
		return nil, err
	}
	m := newModel(f, loop, picker, root, opts)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if fm, ok := final.(model); ok && fm.scanCancel != nil {
		fm.scanCancel()
	}
	f.Close()
	loop.Close()
	return f.Answers(), err
}

// messages
type loopMsg struct{ fn func() }
type scanItemMsg struct{ item scanner.ResultItem }
type scanCompleteMsg struct{ err error }

func (m model) waitLoopMsg() tea.Cmd {
	return func() tea.Msg {
		fn, ok := m.loop.Next()
		if !ok {
			return nil
		}
		return loopMsg{fn: fn}
	}
}

func (m *model) waitScanMsg() tea.Cmd {
	if m.scanCh == nil {
		return nil
	}
	ch := m.scanCh
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *model) startScan() {
	if m.scanCancel != nil {
		m.scanCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.scanCancel = cancel
	m.items = m.items[:0]
	m.cursor, m.scrollOffset = 0, 0
	m.scanning = true
	m.scanErr = nil
	ch := make(chan tea.Msg)
	m.scanCh = ch
	go func() {
		defer close(ch)
		out, errCh := scanner.ScanFilesStream(ctx, m.root, m.opts)
		for r := range out {
			select {
			case ch <- scanItemMsg{item: r}:
			case <-ctx.Done():
			}
		}
		var err error
		if e, ok := <-errCh; ok {
			err = e
		}
		select {
		case ch <- scanCompleteMsg{err: err}:
		case <-ctx.Done():
		}
	}()
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, m.waitLoopMsg(), m.waitScanMsg(), textinput.Blink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		if w := msg.Width - 20; w > 10 {
			m.bar.Width = w
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd
	case loopMsg:
		msg.fn()
		cmds := []tea.Cmd{m.waitLoopMsg()}
		if m.sh.rescan {
			m.sh.rescan = false
			m.startScan()
			cmds = append(cmds, m.waitScanMsg())
		}
		if cmd := m.syncStep(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.form.Done() {
			m.st = statusDone
			cmds = append(cmds, tea.Quit)
		}
		return m, tea.Batch(cmds...)
	case scanItemMsg:
		m.appendResult(msg.item)
		return m, m.waitScanMsg()
	case scanCompleteMsg:
		m.scanErr = msg.err
		m.scanning = false
		return m, nil
	}
	if m.isText() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// syncStep resets per-step widgets when the form moved to a new control.
func (m *model) syncStep() tea.Cmd {
	c := m.form.Current()
	if c == nil || c.ID() == m.stepID {
		return nil
	}
	m.stepID = c.ID()
	m.choiceCursor = 0
	m.input.Reset()
	if t, ok := c.(*control.Text); ok {
		m.input.Placeholder = t.Placeholder()
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m model) isText() bool {
	_, ok := m.form.Current().(*control.Text)
	return ok
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || (key == "q" && !m.isText()) {
		m.st = statusQuit
		return m, tea.Quit
	}
	if key == "?" && !m.isText() {
		m.showHelp = !m.showHelp
		return m, nil
	}
	switch c := m.form.Current().(type) {
	case *control.UploadFile:
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.adjustScroll()
			}
		case "enter":
			if m.cursor < len(m.items) {
				if f, err := reader.Stat(m.items[m.cursor].path); err == nil {
					m.picker.Select(f)
				} else {
					m.items[m.cursor].err = err
				}
			}
		case "esc", "x":
			// a cancelled picker delivers no file
			m.picker.Select()
		case "r":
			c.TriggerFileSelect()
			if m.sh.rescan {
				m.sh.rescan = false
				m.startScan()
				return m, m.waitScanMsg()
			}
		}
		return m, nil
	case *control.Choice:
		switch key {
		case "up", "k":
			if m.choiceCursor > 0 {
				m.choiceCursor--
			}
		case "down", "j":
			if m.choiceCursor < len(c.Options())-1 {
				m.choiceCursor++
			}
		case "enter", " ":
			_ = c.Choose(m.choiceCursor)
		}
		return m, nil
	case *control.Text:
		if key == "enter" {
			_ = c.Submit(m.input.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	switch m.st {
	case statusDone:
		return doneStyle.Render("All fields answered.") + "\n"
	case statusQuit:
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerText())
	switch c := m.form.Current().(type) {
	case *control.UploadFile:
		b.WriteString(m.uploadView(c))
	case *control.Choice:
		b.WriteString(m.choiceView(c))
	case *control.Text:
		b.WriteString(m.input.View() + "\n")
	}
	if e := m.form.LastError(); e != "" {
		b.WriteString("\n" + errorStyle.Render(e) + "\n")
	}
	if m.showHelp {
		b.WriteString("\n" + m.helpText())
	}
	return b.String()
}

func (m model) headerText() string {
	cur, total := m.form.Step()
	field := m.form.Field()
	label := field.Placeholder
	if label == "" {
		label = field.Name
	}
	return headerStyle.Render(fmt.Sprintf("Step %d/%d  %s", cur, total, label)) + "  " + hintStyle.Render("? help") + "\n\n"
}

func (m model) uploadView(u *control.UploadFile) string {
	var b strings.Builder
	el := u.Element()
	text := el.First(control.TagUploadText).Text()
	if text == "" {
		text = hintStyle.Render(m.form.Dictionary().Get(dictionary.FilePlaceholder))
	}
	b.WriteString(text + "\n")

	barEl := el.First(control.TagUploadProgressBar)
	if el.HasClass(control.ClassAnimateIn) || barEl.HasClass(control.ClassLoaded) {
		pct, _ := strconv.ParseFloat(strings.TrimSuffix(barEl.Style("width"), "%"), 64)
		line := m.bar.ViewAs(pct / 100)
		switch {
		case m.form.Progress() == flow.Ready:
			line += " " + doneStyle.Render("ready")
		case barEl.HasClass(control.ClassLoaded):
			line += " " + doneStyle.Render("loaded") + " " + m.sp.View()
		default:
			line += " " + m.sp.View()
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderList(u.MaxFileSize()))
	if m.scanning {
		b.WriteString(hintStyle.Render("scanning "+m.root+" "+m.sp.View()) + "\n")
	} else if m.scanErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("scan: %v", m.scanErr)) + "\n")
	}
	return b.String()
}

func (m model) choiceView(c *control.Choice) string {
	var b strings.Builder
	b.WriteString(c.Placeholder() + "\n")
	for i, o := range c.Options() {
		if i == m.choiceCursor {
			b.WriteString(cursorStyle.Render(">") + " " + o + "\n")
		} else {
			b.WriteString("  " + o + "\n")
		}
	}
	return b.String()
}

// Custom list rendering - no bubbles/list component
func (m model) renderList(limit int64) string {
	if len(m.items) == 0 {
		if m.scanning {
			return ""
		}
		return hintStyle.Render(m.form.Dictionary().Get(dictionary.InputNoFile)) + "\n"
	}
	var b strings.Builder
	visibleHeight := m.visibleHeight()
	start := m.scrollOffset
	end := start + visibleHeight
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := start; i < end; i++ {
		it := m.items[i]
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render(">") + " "
		}
		sizeStr := sizeColorStyle(it.size, limit).Render(fmt.Sprintf("%9s", utils.HumanizeBytesCompact(it.size)))
		line := prefix + sizeStr + " " + it.disp
		if it.err != nil {
			line += " " + errorStyle.Render(it.err.Error())
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) visibleHeight() int {
	h := m.termH - 12
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) adjustScroll() {
	visibleHeight := m.visibleHeight()
	if m.cursor >= m.scrollOffset+visibleHeight {
		m.scrollOffset = m.cursor - visibleHeight + 1
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
}

func (m *model) appendResult(r scanner.ResultItem) {
	m.items = append(m.items, item{
		path: r.Path,
		disp: m.displayPath(r.Path),
		size: r.Size,
		err:  r.Err,
	})
	sort.SliceStable(m.items, func(i, j int) bool { return m.items[i].disp < m.items[j].disp })
}

func (m *model) displayPath(p string) string {
	if rel, err := filepath.Rel(m.root, p); err == nil && rel != "." {
		return rel
	}
	return p
}

func (m model) helpText() string {
	lines := []string{
		"Help (press ? to close):",
		"  ↑/k, ↓/j  Move cursor",
		"  enter     Select file / option, submit text",
		"  esc/x     Cancel the picker",
		"  r         Rescan files",
		"  q         Quit (ctrl+c while typing)",
	}
	return lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).Render(strings.Join(lines, "\n"))
}

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))            // purple
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true) // green
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))           // red
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// Colour a file size by how close it is to the upload limit: gray well below,
// yellow near it, red above it.
func sizeColorStyle(b, limit int64) lipgloss.Style {
	switch {
	case b > limit:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	case b >= limit-limit/10:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")) // yellow
	case b >= limit/2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46")) // green
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("250")) // light gray
	}
}
