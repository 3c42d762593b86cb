package urlfilter

import (
	"path"
	"strings"
)

// deniedExtensions lists file types a text crawl never needs to fetch.
var deniedExtensions = map[string]struct{}{}

func init() {
	for _, group := range [][]string{
		// web assets
		{"css", "js", "json", "xml", "rss", "atom"},
		// images
		{"bmp", "gif", "jpg", "jpeg", "ico", "png", "tif", "tiff", "svg", "webp", "heic", "psd", "ai", "eps"},
		// audio and video
		{"mid", "mp2", "mp3", "mp4", "m4a", "m4v", "wav", "avi", "mov", "mpeg", "mpg", "ram", "wmv", "wma", "webm", "flv", "ogg", "ogv", "flac", "aac", "rm", "smil", "swf", "mkv", "3gp"},
		// documents
		{"pdf", "ps", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "pps", "ppsx", "odt", "ods", "odp", "rtf", "tex", "bib", "names", "thmx", "mso", "epub", "arff"},
		// archives
		{"zip", "rar", "gz", "tgz", "tar", "bz2", "7z", "xz", "lz", "lzma", "z", "iso", "dmg", "cab", "jar", "war"},
		// executables and binaries
		{"exe", "msi", "bin", "apk", "deb", "rpm", "dll", "so", "sh", "bat", "img", "class"},
		// data dumps
		{"csv", "dat", "data", "sql", "db", "sqlite", "mat", "npy", "pkl", "h5", "sas", "sav", "ppm", "pgm", "ipynb"},
		// fonts
		{"ttf", "otf", "woff", "woff2", "eot"},
	} {
		for _, ext := range group {
			deniedExtensions[ext] = struct{}{}
		}
	}
}

// HasDeniedExtension reports whether the last segment of urlPath ends in a
// denied file extension. Matching is case-insensitive.
func HasDeniedExtension(urlPath string) bool {
	ext := strings.TrimPrefix(path.Ext(strings.ToLower(urlPath)), ".")
	if ext == "" {
		return false
	}
	_, denied := deniedExtensions[ext]
	return denied
}
