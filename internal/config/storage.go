package config

import (
	"sync"
)

// StorageConfig bounds what the upload sockets accept and how many files are
// analysed at once.
type StorageConfig struct {
	UploadDir           string
	MaxFileBytes        int64
	MaxFiles            int
	AnalysisConcurrency int
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		v := env()
		storageConfig = &StorageConfig{
			UploadDir:           v.GetString("UPLOAD_DIR"),
			MaxFileBytes:        v.GetInt64("UPLOAD_MAX_FILE_BYTES"),
			MaxFiles:            v.GetInt("UPLOAD_MAX_FILES"),
			AnalysisConcurrency: v.GetInt("ANALYSIS_CONCURRENCY"),
		}
	})
	return storageConfig
}
