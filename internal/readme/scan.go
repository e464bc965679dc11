package readme

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"elm-pipeline/internal/transform"
)

// Anchor is the link destination that marks the start of a rule section.
const Anchor = "#elm-pipeline-transforms-5f0c5d9e-2a7b-4f0e-9a4d-1c3b7e8f6a21"

// lastSectionLevel is the deepest heading level that ends a rule section.
const lastSectionLevel = 3

// Rewriter adjusts code block text before it becomes a rule.
// *namespace.Matcher satisfies it.
type Rewriter interface {
	Rewrite(text string) string
}

var acceptedLanguages = map[string]bool{
	"js":         true,
	"javascript": true,
}

var markdown = goldmark.New()

// ScanFile reads path and scans it. A missing file is reported with an error
// wrapping os.ErrNotExist.
func ScanFile(path string, rewriter Rewriter) ([]transform.Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read README %s: %w", path, err)
	}

	transforms, err := scan(data, path, rewriter)
	if err != nil {
		return nil, err
	}

	return transforms, nil
}

// Scan extracts the rules from README content. rewriter may be nil.
func Scan(content []byte, rewriter Rewriter) ([]transform.Transform, error) {
	return scan(content, "", rewriter)
}

// scanner holds the collection state for one document.
type scanner struct {
	source     []byte
	path       string
	rewriter   Rewriter
	collecting bool
	pending    *string
	pendingAt  int
	out        []transform.Transform
}

func scan(content []byte, path string, rewriter Rewriter) ([]transform.Transform, error) {
	content = normalizeLineEndings(content)

	s := &scanner{
		source:   content,
		path:     path,
		rewriter: rewriter,
	}

	doc := markdown.Parser().Parse(text.NewReader(content))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		done, err := s.visit(n)
		if err != nil {
			return nil, err
		}

		if done {
			break
		}
	}

	if s.pending != nil {
		return nil, &DocError{Path: path, Line: s.pendingAt, Reason: "find block has no matching replace block"}
	}

	return s.out, nil
}

// normalizeLineEndings turns CRLF and lone CR line endings into LF, so block
// text matches compiler output.
func normalizeLineEndings(content []byte) []byte {
	if !bytes.ContainsRune(content, '\r') {
		return content
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

// visit handles one top-level block and reports whether scanning is over.
func (s *scanner) visit(n ast.Node) (bool, error) {
	switch node := n.(type) {
	case *ast.Paragraph:
		if !s.collecting && s.hasAnchor(node) {
			s.collecting = true
		}
	case *ast.Heading:
		if s.collecting && node.Level <= lastSectionLevel {
			return true, nil
		}
	case *ast.FencedCodeBlock:
		if s.collecting {
			return false, s.collect(node)
		}
	}

	return false, nil
}

// hasAnchor reports whether any link inside the paragraph targets Anchor.
func (s *scanner) hasAnchor(p *ast.Paragraph) bool {
	found := false

	_ = ast.Walk(p, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if link, ok := n.(*ast.Link); ok && string(link.Destination) == Anchor {
			found = true
			return ast.WalkStop, nil
		}

		return ast.WalkContinue, nil
	})

	return found
}

func (s *scanner) collect(block *ast.FencedCodeBlock) error {
	line := s.lineOf(block)

	lang := string(block.Language(s.source))
	if !acceptedLanguages[lang] {
		return &DocError{
			Path:   s.path,
			Line:   line,
			Reason: fmt.Sprintf("code block has language %q, expected js", lang),
		}
	}

	code := s.blockText(block)
	if s.rewriter != nil {
		code = s.rewriter.Rewrite(code)
	}

	code = transform.Normalize(code)

	if s.pending == nil {
		if code == "" {
			return &DocError{Path: s.path, Line: line, Reason: "find block is empty"}
		}

		s.pending = &code
		s.pendingAt = line

		return nil
	}

	s.out = append(s.out, transform.Transform{Find: *s.pending, Replace: code})
	s.pending = nil
	s.pendingAt = 0

	return nil
}

// blockText joins the block's lines without the final newline.
func (s *scanner) blockText(block *ast.FencedCodeBlock) string {
	var buf bytes.Buffer

	lines := block.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(s.source))
	}

	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// lineOf returns the 1-based line of the block's opening fence, or 0.
func (s *scanner) lineOf(block *ast.FencedCodeBlock) int {
	var offset int

	switch {
	case block.Info != nil:
		offset = block.Info.Segment.Start
	case block.Lines().Len() > 0:
		offset = block.Lines().At(0).Start
	default:
		return 0
	}

	return bytes.Count(s.source[:offset], []byte("\n")) + 1
}
