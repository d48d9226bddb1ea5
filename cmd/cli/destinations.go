package main

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/dvloznov/finance-summary/internal/gcsuploader"
)

// cleanedURI names the object after the source when out is a gs:// prefix
// ending in "/", e.g. gs://b/clean/ + rosa.csv -> gs://b/clean/rosa_cleaned.csv.
// Any other destination is returned unchanged.
func cleanedURI(store gcsuploader.StorageService, out, source string) string {
	if !strings.HasPrefix(out, "gs://") || !strings.HasSuffix(out, "/") {
		return out
	}
	name := sourceName(store, source)
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".csv"
	}
	return out + base + "_cleaned" + ext
}

// archiveObject returns the bucket and object a local source is copied to.
// A prefix ending in "/" keeps the source file name.
func archiveObject(prefix, source string) (bucket, object string, err error) {
	if strings.HasSuffix(prefix, "/") {
		prefix += filepath.Base(source)
	}
	return gcsuploader.ParseGCSURI(prefix)
}

func sourceName(store gcsuploader.StorageService, source string) string {
	if strings.HasPrefix(source, "gs://") {
		return store.ExtractFilenameFromGCSURI(source)
	}
	return filepath.Base(source)
}
