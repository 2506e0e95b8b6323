package podtransform

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/codalotl/podmunge/internal/pod"
	"github.com/codalotl/podmunge/internal/podmunger"
)

// Markdown returns a transform that converts "=begin markdown" ... "=end markdown" regions and "=for markdown" paragraphs into plain POD:
//   - headings become =head1 through =head4 (deeper levels are clamped)
//   - lists and block quotes become =over/=item/=back
//   - code blocks become verbatim paragraphs
//   - `code`, *emphasis*, **strong**, and [links](url) become C<>, I<>, B<>, and L<text|url>
//
// Regions in other formats are left alone.
func Markdown() podmunger.Transformer {
	md := goldmark.New()
	return podmunger.TransformerFunc(func(doc podmunger.Doc, args podmunger.Args) (podmunger.Doc, error) {
		paras := doc.Pod.Paragraphs
		out := &pod.Document{}

		next := 0
		for _, reg := range regions(paras) {
			out.Paragraphs = appendFor(out.Paragraphs, md, paras[next:reg.begin])
			next = min(reg.end+1, len(paras))
			if reg.format != "markdown" {
				out.Paragraphs = append(out.Paragraphs, paras[reg.begin:next]...)
				continue
			}
			var src []string
			for _, p := range paras[reg.begin+1 : min(reg.end, len(paras))] {
				src = append(src, p.String())
			}
			out.Paragraphs = append(out.Paragraphs, convertMarkdown(md, strings.Join(src, "\n\n"))...)
		}
		out.Paragraphs = appendFor(out.Paragraphs, md, paras[next:])

		doc.Pod = out
		return doc, nil
	})
}

// appendFor appends paras to dst, converting "=for markdown" paragraphs.
func appendFor(dst []pod.Paragraph, md goldmark.Markdown, paras []pod.Paragraph) []pod.Paragraph {
	for _, p := range paras {
		if p.IsCommand("for") && formatName(p.Content) == "markdown" {
			body := strings.TrimLeft(strings.TrimSpace(p.Content)[len("markdown"):], " \t\n")
			dst = append(dst, convertMarkdown(md, body)...)
			continue
		}
		dst = append(dst, p)
	}
	return dst
}

func convertMarkdown(md goldmark.Markdown, source string) []pod.Paragraph {
	src := []byte(source)
	root := md.Parser().Parse(text.NewReader(src))
	c := &mdConverter{src: src}
	c.blocks(root)
	return c.out
}

type mdConverter struct {
	src []byte
	out []pod.Paragraph
}

func (c *mdConverter) emit(p pod.Paragraph) {
	c.out = append(c.out, p)
}

func (c *mdConverter) blocks(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		c.block(n)
	}
}

func (c *mdConverter) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		c.emit(pod.NewCommand(fmt.Sprintf("head%d", min(max(n.Level, 1), 4)), c.inline(n)))
	case *ast.Paragraph, *ast.TextBlock:
		if s := c.inline(n); s != "" {
			c.emit(pod.NewOrdinary(guardCommand(s)))
		}
	case *ast.List:
		c.emit(pod.NewCommand("over", "4"))
		num := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			if n.IsOrdered() {
				c.emit(pod.NewCommand("item", fmt.Sprintf("%d.", num)))
				num++
			} else {
				c.emit(pod.NewCommand("item", "*"))
			}
			c.blocks(item)
		}
		c.emit(pod.NewCommand("back", ""))
	case *ast.Blockquote:
		c.emit(pod.NewCommand("over", "4"))
		c.blocks(n)
		c.emit(pod.NewCommand("back", ""))
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if code := c.lines(n); strings.TrimSpace(code) != "" {
			c.emit(pod.NewVerbatim(code))
		}
	case *ast.HTMLBlock:
		c.emit(pod.NewCommand("begin", "html"))
		c.emit(pod.NewOrdinary(strings.TrimRight(c.lines(n), "\n")))
		c.emit(pod.NewCommand("end", "html"))
	case *ast.ThematicBreak:
	default:
		c.blocks(n)
	}
}

// lines returns the raw source lines of a block node.
func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	return buf.String()
}

// inline renders the inline children of n as POD text.
func (c *mdConverter) inline(n ast.Node) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			b.WriteString(escape(string(child.Segment.Value(c.src))))
			if child.SoftLineBreak() || child.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.WriteString(escape(string(child.Value)))
		case *ast.CodeSpan:
			b.WriteString("C<" + escape(c.plain(child)) + ">")
		case *ast.Emphasis:
			code := "I"
			if child.Level >= 2 {
				code = "B"
			}
			b.WriteString(code + "<" + c.inline(child) + ">")
		case *ast.Link:
			b.WriteString(link(c.plain(child), string(child.Destination)))
		case *ast.Image:
			b.WriteString(link(c.plain(child), string(child.Destination)))
		case *ast.AutoLink:
			b.WriteString(link("", string(child.URL(c.src))))
		case *ast.RawHTML:
			segs := child.Segments
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				b.WriteString(escape(string(seg.Value(c.src))))
			}
		default:
			b.WriteString(c.inline(child))
		}
	}
	return strings.TrimSpace(b.String())
}

// plain returns the text of n's descendants without any markup.
func (c *mdConverter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(c.src))
			if n.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

var podEscaper = strings.NewReplacer("<", "E<lt>", ">", "E<gt>")

// escape makes s safe as POD text: angle brackets can't start or end formatting codes.
func escape(s string) string {
	return podEscaper.Replace(s)
}

var linkTextEscaper = strings.NewReplacer("<", "E<lt>", ">", "E<gt>", "|", "E<verbar>", "/", "E<sol>")

func link(label, url string) string {
	if label == "" || label == url {
		return "L<" + url + ">"
	}
	return "L<" + linkTextEscaper.Replace(label) + "|" + url + ">"
}

// guardCommand keeps an ordinary paragraph that happens to begin with "=" from being read as a command.
func guardCommand(s string) string {
	if strings.HasPrefix(s, "=") {
		return "E<61>" + s[1:]
	}
	return s
}
