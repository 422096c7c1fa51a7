package storage

// Config holds media store configuration
type Config struct {
	UploadDir    string   // Local directory for uploaded photos (e.g., "./uploads")
	BaseURL      string   // Prefix of returned references (e.g., "/uploads")
	MaxFileSize  int64    // Bytes
	AllowedTypes []string // Detected MIME types accepted by Save
}
