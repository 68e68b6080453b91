package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// CVTextExtractor reads the plain text of an uploaded CV so that CVs
// without raw_text can still be embedded.
type CVTextExtractor interface {
	ExtractText(filePath string) (*CVContent, error)
}

type CVContent struct {
	Text      string
	PageCount int
	// SkippedPages lists pages whose text could not be decoded.
	SkippedPages []int
}

type pdfExtractor struct{}

func NewPDFExtractor() CVTextExtractor {
	return &pdfExtractor{}
}

func (p *pdfExtractor) ExtractText(filePath string) (*CVContent, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	content := &CVContent{PageCount: r.NumPage()}
	var textBuilder strings.Builder

	for pageIndex := 1; pageIndex <= content.PageCount; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			content.SkippedPages = append(content.SkippedPages, pageIndex)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	content.Text = CleanText(textBuilder.String())
	if content.Text == "" {
		return nil, fmt.Errorf("no text content found in PDF")
	}

	return content, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
