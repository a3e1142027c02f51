package engine

import (
	"path"
	"strings"
)

// Built-in excludes, applied when Config.DefaultExcludes is set. They cover
// dependency trees, build output and files whose content is hashes or binary
// data rather than hand-written source.
var (
	excludedDirs = map[string]bool{
		"node_modules": true,
		"vendor":       true,
		"target":       true,
		"dist":         true,
		"build":        true,
		"out":          true,
		"bin":          true,
		"obj":          true,
		"coverage":     true,
		"__pycache__":  true,
		".venv":        true,
		"venv":         true,
		".tox":         true,
		".idea":        true,
	}

	excludedSuffixes = []string{
		".min.js", ".min.css", ".map",
		".webp", ".bmp", ".tiff", ".woff", ".woff2", ".ttf", ".eot",
		".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z", ".jar", ".war",
		".class", ".exe", ".dll", ".so", ".dylib", ".wasm", ".pyc",
		".mp3", ".mp4", ".mov",
		".pb.go", ".lock",
	}

	// checksum manifests and lockfiles are walls of hashes
	excludedNames = map[string]bool{
		"go.sum":              true,
		"package-lock.json":   true,
		"pnpm-lock.yaml":      true,
		"npm-shrinkwrap.json": true,
		".ds_store":           true,
	}
)

func isDefaultDirExcluded(name string) bool {
	return excludedDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	base := path.Base(lowerRel)
	if excludedNames[base] || strings.Contains(base, ".gen.") {
		return true
	}
	for _, s := range excludedSuffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	return false
}
