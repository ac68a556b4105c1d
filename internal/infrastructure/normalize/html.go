package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements that carry page chrome or executable content rather than
// article text.
const strippedSelectors = "script, style, noscript, iframe, form, nav, header, footer, aside"

// Inline elements whose content flows into the surrounding paragraph.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "cite": true, "code": true,
	"em": true, "i": true, "mark": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true,
}

// htmlToText converts markup into lightweight structured text: "#"
// headings, blank-line separated paragraphs, "-" list items, ">" quote
// prefixes, and fenced preformatted blocks. Links keep their targets as
// [text](href).
func htmlToText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}
	doc.Find(strippedSelectors).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var blocks []string
	renderContents(root, &blocks)
	return strings.Join(blocks, "\n\n"), nil
}

// renderContents walks mixed content: runs of text and inline elements
// accumulate into one paragraph, block elements flush it and render on
// their own.
func renderContents(s *goquery.Selection, blocks *[]string) {
	var pending strings.Builder
	flush := func() {
		if t := collapseSpace(pending.String()); t != "" {
			*blocks = append(*blocks, t)
		}
		pending.Reset()
	}

	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			pending.WriteString(c.Text())
		case inlineTags[name]:
			pending.WriteString(renderInline(c))
		case name == "#comment":
		default:
			flush()
			renderBlock(c, blocks)
		}
	})
	flush()
}

func renderBlock(s *goquery.Selection, blocks *[]string) {
	name := goquery.NodeName(s)
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if t := collapseSpace(s.Text()); t != "" {
			level := int(name[1] - '0')
			*blocks = append(*blocks, strings.Repeat("#", level)+" "+t)
		}
	case "p":
		if t := collapseSpace(renderInline(s)); t != "" {
			*blocks = append(*blocks, t)
		}
	case "ul":
		renderList(s, blocks, func(int) string { return "- " })
	case "ol":
		renderList(s, blocks, func(i int) string { return fmt.Sprintf("%d. ", i+1) })
	case "li":
		// Stray item outside a list.
		if t := collapseSpace(renderInline(s)); t != "" {
			*blocks = append(*blocks, "- "+t)
		}
	case "blockquote":
		var inner []string
		renderContents(s, &inner)
		if len(inner) > 0 {
			quoted := "> " + strings.Join(inner, "\n> ")
			*blocks = append(*blocks, quoted)
		}
	case "pre":
		code := strings.Trim(s.Text(), "\n")
		if strings.TrimSpace(code) != "" {
			*blocks = append(*blocks, "```\n"+code+"\n```")
		}
	case "table":
		renderTable(s, blocks)
	case "br", "hr", "img":
	default:
		renderContents(s, blocks)
	}
}

func renderList(s *goquery.Selection, blocks *[]string, marker func(int) string) {
	var items []string
	s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		if t := collapseSpace(renderInline(li)); t != "" {
			items = append(items, marker(i)+t)
		}
	})
	if len(items) > 0 {
		*blocks = append(*blocks, strings.Join(items, "\n"))
	}
}

func renderTable(s *goquery.Selection, blocks *[]string) {
	var rows []string
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, collapseSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	})
	if len(rows) > 0 {
		*blocks = append(*blocks, strings.Join(rows, "\n"))
	}
}

// renderInline flattens an element's content to plain text, keeping
// link targets and turning <br> into line breaks.
func renderInline(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); name {
		case "#text":
			b.WriteString(c.Text())
		case "a":
			text := collapseSpace(renderInline(c))
			if text == "" {
				return
			}
			href := strings.TrimSpace(c.AttrOr("href", ""))
			if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
				b.WriteString(text)
			} else {
				fmt.Fprintf(&b, "[%s](%s)", text, href)
			}
		case "br":
			b.WriteString("\n")
		case "img", "#comment":
		default:
			b.WriteString(renderInline(c))
		}
	})
	return b.String()
}

// collapseSpace squeezes runs of horizontal whitespace and drops empty
// lines while preserving deliberate line breaks.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if t := strings.Join(strings.Fields(line), " "); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
