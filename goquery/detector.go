package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yzsnstotz/tlvc"
)

// Ensure Detector implements tlvc.FormatDetector at compile time.
var _ tlvc.FormatDetector = (*Detector)(nil)

// Detector identifies chat export formats from HTML content by looking for
// the page structure and class names each exporter emits.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified export format.
// Returns FormatUnknown if the document has no message-like blocks.
func (d *Detector) Detect(html string) tlvc.ExportFormat {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return tlvc.FormatUnknown
	}

	// Telegram Desktop wraps history in div.page_wrap > div.history and
	// renders each bubble as div.message.default.
	if d.hasSelector(doc, "div.history") && d.hasSelector(doc, "div.message.default") ||
		d.hasSelector(doc, "div.page_wrap") && d.hasSelector(doc, "div.message.service") ||
		d.hasTelegramTitle(doc) && d.hasSelector(doc, "div.message") {
		return tlvc.FormatTelegram
	}

	if d.hasSelector(doc, "[class*='message']") {
		return tlvc.FormatGeneric
	}

	return tlvc.FormatUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

// hasTelegramTitle checks the page header Telegram writes at the top of every page.
func (d *Detector) hasTelegramTitle(doc *goquery.Document) bool {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	return title == "exported data" || strings.HasPrefix(title, "telegram")
}
