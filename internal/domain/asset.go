package domain

// AssetKind enumerates asset types.
type AssetKind string

const (
	AssetKindVideo     AssetKind = "video"
	AssetKindThumbnail AssetKind = "thumbnail"
)

// Asset represents a file produced by a composition. Path points at a local
// file owned by whoever holds the asset until Release is called.
type Asset struct {
	Kind   AssetKind `json:"kind"`
	Path   string    `json:"-"`
	MIME   string    `json:"mime"`
	Bytes  int64     `json:"bytes"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
}
