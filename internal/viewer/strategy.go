package viewer

import "linview/internal/naming"

const (
	DefaultChunkSizeBytes  = 32 * 1024
	DefaultMaxRetries      = 1
	DefaultCMapURL         = "https://cdn.jsdelivr.net/npm/pdfjs-dist@3.11.174/cmaps/"
	DefaultStandardFontURL = "https://cdn.jsdelivr.net/npm/pdfjs-dist@3.11.174/standard_fonts/"
)

// ResourceLocations are static, external assets the rendering engine may
// need while painting pages.
type ResourceLocations struct {
	CMapURL         string `json:"cmap_url"`
	CMapPacked      bool   `json:"cmap_packed"`
	StandardFontURL string `json:"standard_font_url"`
}

type FetchStrategy struct {
	AllowPartialFetch bool              `json:"allow_partial_fetch"`
	ChunkSizeBytes    int               `json:"chunk_size_bytes"`
	Resources         ResourceLocations `json:"resources"`
}

// Degraded is the fallback used after a partial-fetch failure.
func (s FetchStrategy) Degraded() FetchStrategy {
	s.AllowPartialFetch = false
	return s
}

// Options carries the adjustable constants of the viewer.
type Options struct {
	ChunkSizeBytes int
	MaxRetries     int
	Tags           naming.Tags
	Resources      ResourceLocations
}

func DefaultOptions() Options {
	return Options{
		ChunkSizeBytes: DefaultChunkSizeBytes,
		MaxRetries:     DefaultMaxRetries,
		Tags:           naming.DefaultTags(),
		Resources: ResourceLocations{
			CMapURL:         DefaultCMapURL,
			CMapPacked:      true,
			StandardFontURL: DefaultStandardFontURL,
		},
	}
}

func (o Options) normalized() Options {
	if o.ChunkSizeBytes <= 0 {
		o.ChunkSizeBytes = DefaultChunkSizeBytes
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Tags == (naming.Tags{}) {
		o.Tags = naming.DefaultTags()
	}
	return o
}

// SelectStrategy maps a variant to its fetch configuration. Linearized
// documents stream by byte range; originals are fetched whole.
func SelectStrategy(v naming.Variant, opts Options) FetchStrategy {
	opts = opts.normalized()
	return FetchStrategy{
		AllowPartialFetch: v == naming.VariantLinearized,
		ChunkSizeBytes:    opts.ChunkSizeBytes,
		Resources:         opts.Resources,
	}
}
