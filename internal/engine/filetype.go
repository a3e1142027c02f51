package engine

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// extTypes maps file extensions to the file types understood by the scoring
// and comment tables.
var extTypes = map[string]string{
	".js": "js", ".jsx": "js", ".mjs": "js", ".cjs": "js",
	".ts": "ts", ".tsx": "ts",
	".py":   "python",
	".java": "java",
	".c":    "c", ".h": "c",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp",
	".cs":   "csharp",
	".php":  "php",
	".html": "html", ".htm": "html",
	".xml":  "xml",
	".json": "json",
	".yml":  "config", ".yaml": "config", ".toml": "config", ".ini": "config",
	".conf": "config", ".cfg": "config", ".properties": "config", ".env": "config",
	".sql":  "sql",
	".css":  "css",
	".svg":  "svg",
	".png":  "png", ".jpg": "jpg", ".jpeg": "jpeg", ".gif": "gif", ".ico": "ico",
}

// chromaNames normalizes lexer names that differ from our file type keys.
var chromaNames = map[string]string{
	"c++":        "cpp",
	"c#":         "csharp",
	"javascript": "js",
	"typescript": "ts",
	"python 2":   "python",
}

// FileTypeFor infers the file type of path from its name. Known extensions
// are mapped directly; anything else falls back to chroma's lexer registry and
// finally to "text".
func FileTypeFor(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasPrefix(base, ".env") {
		return "config"
	}
	if t, ok := extTypes[filepath.Ext(base)]; ok {
		return t
	}
	if l := lexers.Match(base); l != nil {
		name := strings.ToLower(l.Config().Name)
		if n, ok := chromaNames[name]; ok {
			return n
		}
		return strings.ReplaceAll(name, " ", "")
	}
	return "text"
}
