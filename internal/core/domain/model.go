package domain

type Origin string

const (
	Local  Origin = "local"
	Remote Origin = "remote"
)

// SourceImage is the resolved input of a run.
type SourceImage struct {
	Path   string
	Origin Origin
	// BaseName is the file name without its last extension, not yet slugified.
	BaseName string
	// Filename is the file name as given by the path or URL, extension included.
	Filename string
}

type ThumbnailSpec struct {
	Width    uint
	Height   uint
	Template string
}

// Passthrough reports whether the spec asks for a re-encode without resizing.
func (s ThumbnailSpec) Passthrough() bool {
	return s.Width == 0 && s.Height == 0
}

type RenderedThumbnail struct {
	Path   string
	Key    string
	Width  int
	Height int
}

type UploadRecord struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputPost OutputFormat = "post"
)

type RendererKind string

const (
	RendererNative RendererKind = "native"
	RendererMagick RendererKind = "magick"
)
