package project

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SharedProjectDirToken stands for the directory of a shared manifest in its include paths.
const SharedProjectDirToken = "$(MSBuildThisFileDirectory)"

// IsSharedManifest reports whether manifestPath is a shared (.projitems) manifest.
func IsSharedManifest(manifestPath string) bool {
	return strings.EqualFold(filepath.Ext(manifestPath), ".projitems")
}

// IncludePath converts an absolute item path into the form stored in the
// manifest at manifestPath. Ordinary manifests store paths relative to their
// directory; shared manifests prefix them with SharedProjectDirToken.
func IncludePath(manifestPath, itemPath string) (string, error) {
	dir := filepath.Clean(filepath.Dir(manifestPath))
	item := filepath.Clean(itemPath)

	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(item, prefix) {
		return "", fmt.Errorf("%w: %s is not under %s", ErrUnsupportedLayout, itemPath, dir)
	}

	rel := item[len(prefix):]
	if IsSharedManifest(manifestPath) {
		return SharedProjectDirToken + rel, nil
	}
	return rel, nil
}

// normalizeInclude makes include paths comparable across separators.
func normalizeInclude(include string) string {
	return strings.ReplaceAll(include, `\`, "/")
}

// SameIncludePath reports whether two include paths name the same item.
// Manifests written on Windows use backslashes, so separators are not significant.
func SameIncludePath(a, b string) bool {
	return normalizeInclude(a) == normalizeInclude(b)
}

// HasIncludePrefix reports whether include lives somewhere below the directory include dir.
func HasIncludePrefix(include, dir string) bool {
	d := strings.TrimSuffix(normalizeInclude(dir), "/")
	return strings.HasPrefix(normalizeInclude(include), d+"/")
}

// RewriteIncludePrefix replaces the directory prefix oldDir of include with
// newDir, keeping the remainder as written.
func RewriteIncludePrefix(include, oldDir, newDir string) string {
	old := strings.TrimSuffix(normalizeInclude(oldDir), "/")
	return newDir + include[len(old):]
}

var projectSystemExtensions = []string{".sln", ".shproj", ".projitems", ".csproj", ".user"}

// IsProjectSystemFile reports whether path is a solution or manifest file,
// which never carries a build action itself.
func IsProjectSystemFile(path string) bool {
	if strings.EqualFold(filepath.Base(path), "project.json") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range projectSystemExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CheckItemPath returns ErrUnsupportedTarget when itemPath is a directory or
// a project system file.
func CheckItemPath(fs FS, itemPath string) error {
	if fs.IsDir(itemPath) {
		return fmt.Errorf("%w: folder build actions are not supported", ErrUnsupportedTarget)
	}
	if IsProjectSystemFile(itemPath) {
		return fmt.Errorf("%w: %s is a project file", ErrUnsupportedTarget, filepath.Base(itemPath))
	}
	return nil
}
