package net

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/peterkuimelis/omen/internal/deck"
	"github.com/peterkuimelis/omen/internal/log"
)

// Client drives a session from a line-oriented terminal REPL.
type Client struct {
	session *deck.Session
	in      io.Reader
	out     io.Writer
	width   float64
}

// NewClient creates a REPL client reading commands from in and writing to out.
func NewClient(s *deck.Session, in io.Reader, out io.Writer, width float64) *Client {
	return &Client{session: s, in: in, out: out, width: width}
}

// RunREPL reads commands until EOF, "quit", or ctx is cancelled.
func (c *Client) RunREPL(ctx context.Context) error {
	reader := bufio.NewReader(c.in)
	c.renderState(BuildStateView(c.session, c.width))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		msg, quit, perr := parseCommand(line)
		switch {
		case quit:
			return nil
		case perr != nil:
			fmt.Fprintln(c.out, perr)
			continue
		case msg.Type == "help":
			c.renderHelp()
			continue
		case msg.Type == "events":
			c.renderEvents(EventViews(c.session.Events()))
			continue
		}

		if msg.Width > 0 {
			c.width = msg.Width
		}
		if err := Apply(c.session, msg); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		c.renderState(BuildStateView(c.session, c.width))
	}
}

// parseCommand maps a REPL line to a ClientMessage.
func parseCommand(line string) (ClientMessage, bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return ClientMessage{Type: CmdState}, false, nil
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return ClientMessage{}, true, nil
	case "h", "help", "?":
		return ClientMessage{Type: "help"}, false, nil
	case "e", "events":
		return ClientMessage{Type: "events"}, false, nil
	case "s", "state":
		return ClientMessage{Type: CmdState}, false, nil
	case "n", "next":
		return ClientMessage{Type: CmdAdvance}, false, nil
	case "l", "level", "levelup":
		return ClientMessage{Type: CmdLevelUp}, false, nil
	case "c", "complete":
		return ClientMessage{Type: CmdComplete}, false, nil
	case "r", "reset":
		return ClientMessage{Type: CmdReset}, false, nil
	case "g", "cycle":
		return ClientMessage{Type: CmdCycleLayout}, false, nil
	case "layout":
		if len(fields) < 2 {
			return ClientMessage{}, false, fmt.Errorf("usage: layout study|grid|stack")
		}
		return ClientMessage{Type: CmdSetLayout, Layout: fields[1]}, false, nil
	case "w", "width":
		if len(fields) < 2 {
			return ClientMessage{}, false, fmt.Errorf("usage: width N")
		}
		w, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || w < deck.CardSize {
			return ClientMessage{}, false, fmt.Errorf("width must be a number >= %v", deck.CardSize)
		}
		return ClientMessage{Type: CmdState, Width: w}, false, nil
	default:
		return ClientMessage{}, false, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
}

func (c *Client) renderHelp() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  n, next         advance to the next card")
	fmt.Fprintln(c.out, "  l, level        level up the current card (completes shortly after)")
	fmt.Fprintln(c.out, "  c, complete     complete the current card now")
	fmt.Fprintln(c.out, "  r, reset        return completed cards to the deck")
	fmt.Fprintln(c.out, "  g, cycle        cycle study → grid → stack")
	fmt.Fprintln(c.out, "  layout NAME     switch to study, grid or stack")
	fmt.Fprintln(c.out, "  w, width N      set the viewport width")
	fmt.Fprintln(c.out, "  s, state        show the current layout")
	fmt.Fprintln(c.out, "  e, events       show the session log")
	fmt.Fprintln(c.out, "  q, quit         leave")
}

func (c *Client) renderEvents(events []EventView) {
	for _, e := range events {
		fmt.Fprintln(c.out, log.FormatEvent(log.SessionEvent{
			Seq:     e.Seq,
			Index:   e.Index,
			Layout:  e.Layout,
			Details: e.Details,
		}))
	}
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "Layout: %s | Cursor: %d | Active: %d | Done: %d",
		sv.Layout, sv.Index, sv.ActiveCount, sv.DoneCount)
	if sv.LevelingUp {
		fmt.Fprint(c.out, " | leveling up…")
	}
	fmt.Fprintln(c.out)

	// Topmost card first: highest stack order leads the listing.
	cards := append([]CardView(nil), sv.Cards...)
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Order > cards[j].Order })

	for _, cv := range cards {
		fmt.Fprintf(c.out, "  %s (x=%7.2f y=%6.2f shadow=%.2f)\n", formatCard(cv), cv.X, cv.Y, cv.Shadow)
	}
}

func formatCard(cv CardView) string {
	switch {
	case cv.Current:
		return fmt.Sprintf("[>%d<]", cv.Rank)
	case cv.Complete:
		return fmt.Sprintf("[✓%d ]", cv.Rank)
	default:
		return fmt.Sprintf("[ %d ]", cv.Rank)
	}
}
