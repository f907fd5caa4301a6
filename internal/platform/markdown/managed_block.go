package markdown

import "strings"

// Block is a generated region delimited by HTML comment markers. Text outside
// the markers belongs to the user and is never rewritten.
type Block struct {
	Start string
	End   string
}

func NewBlock(name string) Block {
	return Block{
		Start: "<!-- " + name + ":start -->",
		End:   "<!-- " + name + ":end -->",
	}
}

// Replace swaps the block's content, appending the block when body has none.
func (b Block) Replace(body, generated string) string {
	generated = strings.TrimRight(generated, "\n")
	block := b.Start + "\n" + generated + "\n" + b.End

	if start, end, ok := b.bounds(body); ok {
		return body[:start] + block + body[end:]
	}

	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}

// Content returns the text between the markers.
func (b Block) Content(body string) (string, bool) {
	start, end, ok := b.bounds(body)
	if !ok {
		return "", false
	}
	inner := body[start+len(b.Start) : end-len(b.End)]
	return strings.Trim(inner, "\n"), true
}

func (b Block) bounds(body string) (int, int, bool) {
	start := strings.Index(body, b.Start)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(body[start:], b.End)
	if rel < 0 {
		return 0, 0, false
	}
	return start, start + rel + len(b.End), true
}
