package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"prose_lens/internal/doc"
)

var ErrUnsupported = errors.New("unsupported file type")

var spaceRun = regexp.MustCompile(`[ \t\x{00a0}]+`)
var headingStyle = regexp.MustCompile(`(?i)^heading\s*([1-6])$`)

type Parsed struct {
	Title      string
	SourcePath string
	Blocks     []doc.Block
}

// Document builds an editable document from the parsed blocks.
func (p *Parsed) Document() *doc.Document {
	return doc.FromBlocks(p.Blocks)
}

func ParseFile(path string) (*Parsed, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		blocks []doc.Block
		err    error
	)
	switch ext {
	case ".docx":
		var raw []byte
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		blocks, err = parseDOCX(raw)
	case ".pdf":
		blocks, err = parsePDF(path)
	case ".md", ".markdown":
		blocks, err = parseText(path, doc.BlocksFromMarkdown)
	case ".txt", "":
		blocks, err = parseText(path, doc.BlocksFromText)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Parsed{
		Title:      title,
		SourcePath: path,
		Blocks:     normalizeBlocks(blocks),
	}, nil
}

func parseText(path string, split func(string) []doc.Block) ([]doc.Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return split(norm.NFC.String(text)), nil
}

type docxParagraph struct {
	style string
	runs  []doc.Run
}

func parseDOCX(raw []byte) ([]doc.Block, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, openErr := f.Open()
			if openErr != nil {
				return nil, fmt.Errorf("open document.xml: %w", openErr)
			}
			defer rc.Close()
			xmlData, err = io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if len(xmlData) == 0 {
		return nil, fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var (
		blocks  []doc.Block
		para    *docxParagraph
		inRun   bool
		inProps bool
		inText  bool
		format  doc.Format
	)
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return nil, fmt.Errorf("decode document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para = &docxParagraph{}
			case "pStyle":
				if para != nil {
					para.style = attr(t, "val")
				}
			case "r":
				inRun, format = true, 0
			case "rPr":
				inProps = inRun
			case "b":
				if inProps && toggleOn(t) {
					format |= doc.Bold
				}
			case "i":
				if inProps && toggleOn(t) {
					format |= doc.Italic
				}
			case "t":
				inText = inRun
			case "tab":
				appendRun(para, " ", format, inRun)
			case "br", "cr":
				appendRun(para, "\n", format, inRun)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if para != nil {
					blocks = append(blocks, para.block())
				}
				para = nil
			case "r":
				inRun = false
			case "rPr":
				inProps = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				appendRun(para, string(t), format, true)
			}
		}
	}
	return blocks, nil
}

func appendRun(para *docxParagraph, text string, format doc.Format, inRun bool) {
	if para == nil || !inRun {
		return
	}
	if n := len(para.runs); n > 0 && para.runs[n-1].Format == format {
		para.runs[n-1].Text += text
		return
	}
	para.runs = append(para.runs, doc.Run{Text: text, Format: format})
}

func (p *docxParagraph) block() doc.Block {
	if m := headingStyle.FindStringSubmatch(p.style); m != nil {
		level, _ := strconv.Atoi(m[1])
		return doc.Block{Kind: doc.KindHeading, Level: level, Runs: p.runs}
	}
	if strings.EqualFold(p.style, "title") {
		return doc.Block{Kind: doc.KindHeading, Level: 1, Runs: p.runs}
	}
	return doc.Block{Kind: doc.KindParagraph, Runs: p.runs}
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggleOn reads an OOXML on/off property such as <w:b/> or <w:b w:val="0"/>.
func toggleOn(el xml.StartElement) bool {
	switch strings.ToLower(attr(el, "val")) {
	case "0", "false", "off":
		return false
	}
	return true
}

func parsePDF(path string) ([]doc.Block, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		return nil, fmt.Errorf("no extractable text found in pdf")
	}
	return doc.BlocksFromText(normalizeWhitespace(norm.NFC.String(b.String()))), nil
}

// normalizeWhitespace collapses spaces inside lines and keeps at most one
// blank line between paragraphs.
func normalizeWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// normalizeBlocks composes text to NFC, collapses runs of spaces, trims block
// edges and drops blocks left empty.
func normalizeBlocks(blocks []doc.Block) []doc.Block {
	out := make([]doc.Block, 0, len(blocks))
	for _, b := range blocks {
		runs := make([]doc.Run, 0, len(b.Runs))
		for _, r := range b.Runs {
			r.Text = spaceRun.ReplaceAllString(norm.NFC.String(r.Text), " ")
			if r.Text == "" {
				continue
			}
			if n := len(runs); n > 0 && runs[n-1].Format == r.Format {
				runs[n-1].Text += r.Text
				continue
			}
			runs = append(runs, r)
		}
		if len(runs) > 0 {
			runs[0].Text = strings.TrimLeft(runs[0].Text, " \n")
			last := len(runs) - 1
			runs[last].Text = strings.TrimRight(runs[last].Text, " \n")
		}
		runs = dropEmpty(runs)
		if len(runs) == 0 {
			continue
		}
		b.Runs = runs
		out = append(out, b)
	}
	return out
}

func dropEmpty(runs []doc.Run) []doc.Run {
	out := runs[:0]
	for _, r := range runs {
		if r.Text != "" {
			out = append(out, r)
		}
	}
	return out
}
