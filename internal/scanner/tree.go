package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxDepth is how deep Walk descends below the root.
const DefaultMaxDepth = 3

// defaultIgnores are skipped in every project.
var defaultIgnores = []string{".git", ".svn", ".idea", ".vscode", ".cursor"}

// Dir is one scanned directory.
type Dir struct {
	Name string
	// Path is relative to the scan root; "." for the root itself.
	Path    string
	Files   []string
	Subdirs []*Dir
}

// Each calls fn for d and every descendant, depth first.
func (d *Dir) Each(fn func(*Dir)) {
	fn(d)
	for _, sub := range d.Subdirs {
		sub.Each(fn)
	}
}

// IgnoreDirs returns the directory names to skip: the defaults plus the plain
// names listed in root/.gitignore.
func IgnoreDirs(root string) (map[string]bool, error) {
	ignore := make(map[string]bool, len(defaultIgnores))
	for _, name := range defaultIgnores {
		ignore[name] = true
	}

	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if errors.Is(err, os.ErrNotExist) {
		return ignore, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanner: open .gitignore: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name, ok := gitignoreDir(sc.Text()); ok {
			ignore[name] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanner: read .gitignore: %w", err)
	}
	return ignore, nil
}

// gitignoreDir extracts a directory name from one .gitignore line. Comments,
// negations, globs and nested paths are not directory names.
func gitignoreDir(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return "", false
	}
	if strings.HasSuffix(line, "/") {
		return strings.TrimRight(line, "/"), true
	}
	if strings.ContainsAny(line, "*?") {
		return "", false
	}
	name := strings.TrimLeft(line, "/")
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// Walk scans root down to maxDepth levels, skipping ignored directories and
// hidden files. Entries are sorted by name.
func Walk(root string, ignore map[string]bool, maxDepth int) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanner: %s is not a directory", root)
	}
	return walk(root, root, ignore, 0, maxDepth), nil
}

func walk(root, dir string, ignore map[string]bool, depth, maxDepth int) *Dir {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}
	d := &Dir{Name: filepath.Base(dir), Path: filepath.ToSlash(rel)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are listed without contents.
		return d
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			if ignore[name] || depth+1 > maxDepth {
				continue
			}
			d.Subdirs = append(d.Subdirs, walk(root, filepath.Join(dir, name), ignore, depth+1, maxDepth))
		case e.Type().IsRegular() && !strings.HasPrefix(name, "."):
			d.Files = append(d.Files, name)
		}
	}
	return d
}

// ─── Purposes ────────────────────────────────────────────────────────────────

// UnknownPurpose marks a directory whose role could not be inferred.
const UnknownPurpose = "[fill in: describe what this directory does]"

var purposes = []struct {
	suffix  string
	purpose string
}{
	{"src", "Main source code"},
	{"lib", "Libraries and utilities"},
	{"utils", "Shared utility functions"},
	{"helpers", "Helper functions"},
	{"components", "UI components"},
	{"pages", "Page components / routes"},
	{"app", "Core application logic"},
	{"api", "API definitions"},
	{"services", "Business service layer"},
	{"hooks", "React Hooks"},
	{"stores", "State management"},
	{"store", "State management"},
	{"types", "Type definitions"},
	{"interfaces", "Interface definitions"},
	{"models", "Data models"},
	{"schemas", "Validation schemas"},
	{"config", "Configuration"},
	{"constants", "Constants"},
	{"assets", "Static assets"},
	{"public", "Public static files"},
	{"static", "Static files"},
	{"styles", "Stylesheets"},
	{"css", "CSS styles"},
	{"tests", "Tests"},
	{"test", "Tests"},
	{"__tests__", "Tests"},
	{"spec", "Test specifications"},
	{"scripts", "Scripts"},
	{"bin", "Executables"},
	{"docs", "Documentation"},
	{"migrations", "Database migrations"},
	{"middleware", "Middleware"},
	{"plugins", "Plugins"},
	{"layouts", "Layout components"},
	{"templates", "Templates"},
	{"features", "Feature modules"},
	{"modules", "Business modules"},
	{"domain", "Domain model"},
	{"infrastructure", "Infrastructure layer"},
	{"adapters", "Adapter layer"},
	{"ports", "Port definitions"},
}

// Purpose infers a directory's role from its name. The first entry whose key
// equals or ends the lower-cased name wins.
func Purpose(name string) string {
	lower := strings.ToLower(name)
	for _, p := range purposes {
		if strings.HasSuffix(lower, p.suffix) {
			return p.purpose
		}
	}
	return UnknownPurpose
}
