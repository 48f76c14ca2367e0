package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/secosha/marketplace/internal/browse"
	"github.com/secosha/marketplace/internal/listings"
	"github.com/secosha/marketplace/pkg/enums"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

// Search is the query surface the browse screen drives.
type Search interface {
	Load() browse.Token
	SetTerm(term string)
	SetFilters(filters listings.FilterSet) browse.Token
	SetSort(sort enums.SortKey) browse.Token
	ClearFilters() browse.Token
	Query() listings.Query
}

// Cart receives additions from the detail overlay.
type Cart interface {
	browse.CartAdder
	TotalCount() int
}

// StateMsg delivers an applied search state from the runner.
type StateMsg browse.State

// CartMsg reports the cart badge count after a cart change.
type CartMsg struct {
	Count int
}

// Model is the browse screen.
type Model struct {
	ctx    context.Context
	search Search
	cart   Cart
	styles Styles

	input     textinput.Model
	price     textinput.Model
	detail    viewport.Model
	selection browse.Selection

	state     browse.State
	cursor    int
	cartCount int
	notice    string

	width  int
	height int
}

func New(ctx context.Context, search Search, cart Cart) Model {
	input := textinput.New()
	input.Placeholder = "Search listings"
	input.Prompt = "/ "
	input.CharLimit = 120
	input.SetValue(search.Query().Term)

	price := textinput.New()
	price.Placeholder = "min-max, e.g. 20-80"
	price.Prompt = "Price $ "
	price.CharLimit = 32

	return Model{
		ctx:       ctx,
		search:    search,
		cart:      cart,
		styles:    DefaultStyles(),
		input:     input,
		price:     price,
		detail:    viewport.New(60, 14),
		cartCount: cart.TotalCount(),
		width:     80,
		height:    24,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-4)
		m.detail.Width = max(20, min(72, msg.Width-8))
		m.detail.Height = max(5, msg.Height-10)
		if item, ok := m.selection.Selected(); ok {
			m.detail.SetContent(m.detailContent(item))
		}
		return m, nil

	case StateMsg:
		m.state = browse.State(msg)
		if m.cursor >= len(m.state.Items) {
			m.cursor = max(0, len(m.state.Items)-1)
		}
		return m, nil

	case CartMsg:
		m.cartCount = msg.Count
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if _, open := m.selection.Selected(); open {
			return m.updateDetail(msg)
		}
		if m.price.Focused() {
			return m.updatePrice(msg)
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateGrid(msg)
	}

	if m.price.Focused() {
		var cmd tea.Cmd
		m.price, cmd = m.price.Update(msg)
		return m, cmd
	}
	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.selection.HandleKey(msg.String()) {
		return m, nil
	}
	switch msg.String() {
	case "a":
		if item, ok := m.selection.Selected(); ok {
			browse.AddToCart(m.ctx, m.cart, item)
			m.cartCount = m.cart.TotalCount()
			m.notice = fmt.Sprintf("Added %q to your cart", item.Title)
		}
		return m, nil
	case "q":
		m.selection.Close()
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.input.Blur()
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.search.SetTerm(after)
	}
	return m, cmd
}

// updatePrice edits the price range; enter applies it and esc discards the edit.
func (m Model) updatePrice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.price.Blur()
		return m, nil
	case tea.KeyEnter:
		m.price.Blur()
		lo, hi, err := parsePriceRange(m.price.Value())
		if err != nil {
			m.notice = errorText(err)
			return m, nil
		}
		filters := m.search.Query().Filters
		filters.MinPrice, filters.MaxPrice = lo, hi
		m.search.SetFilters(filters)
		return m, nil
	}
	var cmd tea.Cmd
	m.price, cmd = m.price.Update(msg)
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	cols := m.columns()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		cmd := m.input.Focus()
		return m, cmd
	case "left", "h":
		m.move(-1)
	case "right", "l":
		m.move(1)
	case "up", "k":
		m.move(-cols)
	case "down", "j":
		m.move(cols)
	case "enter":
		if m.cursor < len(m.state.Items) {
			item := m.state.Items[m.cursor]
			m.selection.Select(item)
			m.detail.SetContent(m.detailContent(item))
			m.detail.GotoTop()
		}
	case "c":
		m.cycleFilter(func(f *listings.FilterSet) **string { return &f.Category }, categoryOptions())
	case "z":
		m.cycleFilter(func(f *listings.FilterSet) **string { return &f.Size }, sizeOptions())
	case "o":
		m.cycleFilter(func(f *listings.FilterSet) **string { return &f.Condition }, conditionOptions())
	case "v":
		m.cycleFilter(func(f *listings.FilterSet) **string { return &f.Color }, colorOptions())
	case "p":
		filters := m.search.Query().Filters
		m.price.SetValue(formatPriceRange(filters.MinPrice, filters.MaxPrice))
		m.price.CursorEnd()
		cmd := m.price.Focus()
		return m, cmd
	case "s":
		m.search.SetSort(nextSort(m.search.Query().SortOrDefault()))
	case "x":
		m.search.ClearFilters()
		m.input.SetValue("")
	case "r":
		m.search.Load()
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if len(m.state.Items) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.state.Items) {
		return
	}
	m.cursor = next
}

// cycleFilter advances one filter through "any" followed by each option.
func (m *Model) cycleFilter(field func(*listings.FilterSet) **string, options []string) {
	filters := m.search.Query().Filters
	slot := field(&filters)
	*slot = nextOption(*slot, options)
	m.search.SetFilters(filters)
}

func nextOption(current *string, options []string) *string {
	if current == nil {
		return &options[0]
	}
	for i, option := range options {
		if option == *current && i+1 < len(options) {
			return &options[i+1]
		}
	}
	return nil
}

func nextSort(current enums.SortKey) enums.SortKey {
	keys := enums.SortKeys()
	for i, key := range keys {
		if key == current {
			return keys[(i+1)%len(keys)]
		}
	}
	return enums.SortNewest
}

func categoryOptions() []string {
	out := []string{}
	for _, c := range enums.Categories() {
		out = append(out, string(c))
	}
	return out
}

func sizeOptions() []string {
	out := []string{}
	for _, s := range enums.Sizes() {
		out = append(out, string(s))
	}
	return out
}

func conditionOptions() []string {
	out := []string{}
	for _, c := range enums.Conditions() {
		out = append(out, string(c))
	}
	return out
}

func colorOptions() []string {
	out := []string{}
	for _, c := range enums.Colors() {
		out = append(out, string(c))
	}
	return out
}

// parsePriceRange reads "min-max", "min-", "-max" or a lone minimum. Blank
// input clears both bounds.
func parsePriceRange(raw string) (lo, hi *decimal.Decimal, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil
	}
	minRaw, maxRaw, _ := strings.Cut(raw, "-")
	if lo, err = parseBound(minRaw); err != nil {
		return nil, nil, err
	}
	if hi, err = parseBound(maxRaw); err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}

func parseBound(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a valid price", raw))
	}
	return &d, nil
}

func formatPriceRange(lo, hi *decimal.Decimal) string {
	if lo == nil && hi == nil {
		return ""
	}
	var b strings.Builder
	if lo != nil {
		b.WriteString(lo.String())
	}
	b.WriteString("-")
	if hi != nil {
		b.WriteString(hi.String())
	}
	return b.String()
}

func (m Model) columns() int {
	return max(1, m.width/(cardWidth+4))
}

func (m Model) View() string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.Header.Render("secosha"),
		"  ",
		m.styles.Badge.Render(fmt.Sprintf("Cart (%d)", m.cartCount)),
	)
	b.WriteString(header + "\n\n")
	b.WriteString(m.input.View() + "\n")
	if m.price.Focused() {
		b.WriteString(m.price.View() + "\n")
	}
	b.WriteString(m.styles.Filters.Render(m.filterLine()) + "\n\n")

	if _, ok := m.selection.Selected(); ok {
		b.WriteString(m.styles.Overlay.Render(m.detail.View()) + "\n")
		b.WriteString(m.styles.Footer.Render("a add to cart • esc close • ↑/↓ scroll"))
		if m.notice != "" {
			b.WriteString("\n" + m.styles.Notice.Render(m.notice))
		}
		return b.String()
	}

	if m.state.Err != nil {
		b.WriteString(m.styles.Error.Render(errorText(m.state.Err)) + "\n")
	}
	if m.state.Loading {
		b.WriteString(m.styles.Muted.Render("Loading…") + "\n")
	}
	if len(m.state.Items) == 0 && !m.state.Loading && m.state.Err == nil {
		b.WriteString(m.styles.Muted.Render("No listings match your search.") + "\n")
	} else {
		b.WriteString(m.grid() + "\n")
	}

	footer := browse.Summary(len(m.state.Items), m.state.Total)
	if m.notice != "" {
		footer += "  " + m.styles.Notice.Render(m.notice)
	}
	b.WriteString(m.styles.Footer.Render(footer) + "\n")
	b.WriteString(m.styles.Footer.Render("/ search • enter details • c category • z size • v color • o condition • p price • s sort • x clear • q quit"))
	return b.String()
}

func (m Model) filterLine() string {
	q := m.search.Query()
	line := fmt.Sprintf("Category: %s  Size: %s  Color: %s  Condition: %s  Price: %s  Sort: %s",
		orAny(q.Filters.Category), orAny(q.Filters.Size), orAny(q.Filters.Color), orAny(q.Filters.Condition),
		priceLabel(q.Filters.MinPrice, q.Filters.MaxPrice), q.SortOrDefault())
	if n := q.ActiveCount(); n > 0 {
		line += fmt.Sprintf("  Active: %d", n)
	}
	return line
}

func priceLabel(lo, hi *decimal.Decimal) string {
	switch {
	case lo == nil && hi == nil:
		return "any"
	case hi == nil:
		return "from $" + lo.StringFixed(2)
	case lo == nil:
		return "up to $" + hi.StringFixed(2)
	default:
		return "$" + lo.StringFixed(2) + "-$" + hi.StringFixed(2)
	}
}

func orAny(v *string) string {
	if v == nil {
		return "any"
	}
	return *v
}

func (m Model) grid() string {
	cols := m.columns()
	rows := []string{}
	for start := 0; start < len(m.state.Items); start += cols {
		end := min(start+cols, len(m.state.Items))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, m.card(m.state.Items[i], i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) card(item browse.Listing, active bool) string {
	style := m.styles.Card
	if active {
		style = m.styles.CardActive
	}
	lines := []string{
		m.styles.Title.Render(truncate(item.Title, cardWidth-2)),
		m.styles.Price.Render("$" + item.Price.StringFixed(2)),
		m.styles.Muted.Render(fmt.Sprintf("%s · %s", item.Size, item.Condition)),
	}
	if item.Owner != nil && item.Owner.FullName != "" {
		lines = append(lines, m.styles.Muted.Render(truncate(item.Owner.FullName, cardWidth-2)))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) detailContent(item browse.Listing) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(item.Title) + "\n")
	b.WriteString(m.styles.Price.Render("$"+item.Price.StringFixed(2)) + "\n\n")
	fmt.Fprintf(&b, "Category:  %s\n", item.Category)
	fmt.Fprintf(&b, "Size:      %s\n", item.Size)
	if item.Color != "" {
		fmt.Fprintf(&b, "Color:     %s\n", item.Color)
	}
	fmt.Fprintf(&b, "Condition: %s\n", item.Condition)
	if item.Owner != nil {
		seller := item.Owner.FullName
		if item.Owner.Location != "" {
			seller += " (" + item.Owner.Location + ")"
		}
		fmt.Fprintf(&b, "Seller:    %s\n", seller)
	}
	b.WriteString("\n" + item.Description + "\n")
	if len(item.Images) > 0 {
		b.WriteString("\nPhotos:\n")
		for _, img := range item.Images {
			b.WriteString("  " + img + "\n")
		}
	}
	return b.String()
}

func errorText(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
