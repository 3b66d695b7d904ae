package dubbing

import (
	"path/filepath"
	"strings"
)

// Language codes the dubbing platform accepts.
var supportedLanguages = map[string]bool{
	"en":    true,
	"es":    true,
	"es_la": true,
	"fr":    true,
	"de":    true,
	"it":    true,
	"pt":    true,
	"ja":    true,
	"ko":    true,
	"zh":    true,
	"hi":    true,
	"ar":    true,
	"ru":    true,
}

func SupportedLanguage(code string) bool {
	return supportedLanguages[strings.ToLower(code)]
}

// APILanguage maps client language codes to the wire variant the API
// expects. Plain "es" dubs as Latin American Spanish.
func APILanguage(code string) string {
	code = strings.ToLower(code)
	if code == "es" {
		return "es_la"
	}
	return code
}

var mediaExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// RecognizedMedia reports whether the path looks like an uploadable
// audio or video file.
func RecognizedMedia(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}
