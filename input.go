package tlvc

// InputKind records whether the caller passed a file or an export folder.
type InputKind string

// Input kinds.
const (
	InputFile InputKind = "file"
	InputDir  InputKind = "dir"
)

// Assets lists the optional sibling asset directories found next to the
// HTML document. Only directories that exist are set.
type Assets struct {
	PhotosDir string `json:"photosDir,omitempty"`
	ImagesDir string `json:"imagesDir,omitempty"`
	CSSDir    string `json:"cssDir,omitempty"`
	JSDir     string `json:"jsDir,omitempty"`
}

// First returns the first existing asset directory, or "".
func (a Assets) First() string {
	for _, dir := range []string{a.PhotosDir, a.ImagesDir, a.CSSDir, a.JSDir} {
		if dir != "" {
			return dir
		}
	}
	return ""
}

// ResolvedInput holds absolute paths for one transcript export. Downstream
// stages use these paths as-is and never resolve them again.
type ResolvedInput struct {
	Kind       InputKind `json:"kind"`
	InputPath  string    `json:"inputPath"`
	ExportRoot string    `json:"exportRoot"`
	HTMLPath   string    `json:"htmlPath"`
	Assets     Assets    `json:"assets"`
}

// InputResolver locates the canonical HTML document of an export.
type InputResolver interface {
	// Resolve accepts a direct HTML file path or an export folder path.
	// Returns ENOTFOUND if the path does not exist and ENOHTML if no
	// document can be located.
	Resolve(path string) (*ResolvedInput, error)
}
