package ipfs

const (
	UnavailableError   = "IPFS service unavailable"
	UnavailableMessage = "IPFS node is not running. Please start IPFS node or configure IPFS_API_URL."
	UnavailableCode    = "IPFS_UNAVAILABLE"

	DefaultImageFilename = "image.png"
)

type UploadResponse struct {
	Hash string `json:"hash"`
	Path string `json:"path"`
}

type MetadataResponse struct {
	Hash string `json:"hash"`
	URL  string `json:"url"`
}

type ImageResponse struct {
	Hash string `json:"hash"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type ImageBase64Request struct {
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
}
