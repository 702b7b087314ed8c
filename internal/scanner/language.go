package scanner

import "strings"

// languageMap maps file extensions to the languages the CFG front-end
// supports.
var languageMap = map[string]string{
	".go": "go",
	".py": "python",
}

// DetectLanguage maps an extension to a supported language, or "" when the
// file cannot be analyzed.
func DetectLanguage(ext string) string {
	return languageMap[strings.ToLower(ext)]
}

// Supported reports whether a language has a CFG builder.
func Supported(language string) bool {
	return language == "go" || language == "python"
}
