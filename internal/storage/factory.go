package storage

import "strings"

// Config holds connection settings for the archive backend.
type Config struct {
	Type      string // "minio" or "s3"; auto-detected from the endpoint when empty
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// NewStorage creates an ObjectStorage instance based on the configuration.
func NewStorage(cfg *Config) (ObjectStorage, error) {
	storageType := cfg.Type
	if storageType == "" {
		storageType = detectStorageType(cfg.Endpoint)
	}

	if storageType == "minio" {
		return NewMinIOStorage(cfg)
	}
	return NewS3Storage(cfg)
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) string {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "amazonaws.com"):
		return "s3"
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return "s3"
	default:
		return "minio"
	}
}
