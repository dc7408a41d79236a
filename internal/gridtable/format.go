package gridtable

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Formatter wraps a cell's text one physical line at a time.
type Formatter struct {
	LeftPad  int
	RightPad int
	Breaks   LineBreakMode
}

// Format fits the start of text into a line exactly width columns wide and
// returns that line together with the text left for the following lines.
//
// Words are placed greedily. A word wider than the room left by the padding
// is split when it starts a line: the head fills the line and the tail leads
// the remainder.
func (f Formatter) Format(text string, width int) (line, rest string) {
	text = normalize(text)
	room := width - f.LeftPad - f.RightPad

	if f.Breaks == BreaksPreserve {
		head, tail, _ := strings.Cut(text, "\n")
		head = strings.TrimRight(head, " ")
		if runewidth.StringWidth(head) <= room {
			return f.pad(head, width), tail
		}
		fitted, left := fill(strings.Fields(head), room)
		if tail != "" {
			left = strings.TrimPrefix(left+"\n"+tail, "\n")
		}
		return f.pad(fitted, width), left
	}

	fitted, left := fill(strings.Fields(text), room)
	return f.pad(fitted, width), left
}

// fill joins as many words as fit into room columns.
func fill(words []string, room int) (fitted, rest string) {
	if len(words) == 0 {
		return "", ""
	}
	first := words[0]
	if runewidth.StringWidth(first) > room {
		head := splitWord(first, room)
		tail := append([]string{strings.TrimPrefix(first, head)}, words[1:]...)
		return head, strings.Join(tail, " ")
	}

	var b strings.Builder
	b.WriteString(first)
	used := runewidth.StringWidth(first)
	i := 1
	for ; i < len(words); i++ {
		w := runewidth.StringWidth(words[i])
		if used+1+w > room {
			break
		}
		b.WriteByte(' ')
		b.WriteString(words[i])
		used += 1 + w
	}
	return b.String(), strings.Join(words[i:], " ")
}

// splitWord returns the longest prefix of word that fits in room columns.
// At least one rune is always taken so wrapping makes progress.
func splitWord(word string, room int) string {
	if room > 0 {
		if head := runewidth.Truncate(word, room, ""); head != "" {
			return head
		}
	}
	_, size := utf8.DecodeRuneInString(word)
	return word[:size]
}

// pad places fitted after the left padding and fills the line to width.
func (f Formatter) pad(fitted string, width int) string {
	line := strings.Repeat(" ", f.LeftPad) + fitted
	w := runewidth.StringWidth(line)
	switch {
	case w < width:
		line += strings.Repeat(" ", width-w)
	case w > width:
		line = runewidth.Truncate(line, width, "")
		line += strings.Repeat(" ", width-runewidth.StringWidth(line))
	}
	return line
}

// blank reports whether nothing printable is left of text.
func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}
