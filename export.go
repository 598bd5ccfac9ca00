package tlvc

// ExportFormat identifies the tool that produced an HTML export.
type ExportFormat string

// Known export formats.
const (
	FormatTelegram ExportFormat = "telegram"
	FormatGeneric  ExportFormat = "generic"
	FormatUnknown  ExportFormat = "unknown"
)

// FormatDetector identifies export formats from HTML content.
type FormatDetector interface {
	Detect(html string) ExportFormat
}
