// Package scanner inspects a project tree for context-keeper: which tech
// stacks it uses, which conventions follow from them, and which directories
// deserve their own TECH_INFO.md.
package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Stack names in detection order.
const (
	TypeScript = "typescript"
	JavaScript = "javascript"
	React      = "react"
	Vue        = "vue"
	Astro      = "astro"
	NextJS     = "nextjs"
	Go         = "go"
	Python     = "python"
	Rust       = "rust"
	Java       = "java"
)

type detector struct {
	name  string
	match func(p *project) bool
}

var detectors = []detector{
	{TypeScript, func(p *project) bool { return p.exists("tsconfig.json") || p.hasDep("typescript") }},
	{JavaScript, func(p *project) bool { return p.exists("package.json") && !p.exists("tsconfig.json") }},
	{React, func(p *project) bool { return p.hasDep("react") }},
	{Vue, func(p *project) bool { return p.hasDep("vue") }},
	{Astro, func(p *project) bool { return p.hasDep("astro") }},
	{NextJS, func(p *project) bool { return p.hasDep("next") }},
	{Go, func(p *project) bool { return p.exists("go.mod") }},
	{Python, func(p *project) bool {
		return p.exists("pyproject.toml") || p.exists("requirements.txt") || p.exists("setup.py")
	}},
	{Rust, func(p *project) bool { return p.exists("Cargo.toml") }},
	{Java, func(p *project) bool { return p.exists("pom.xml") || p.exists("build.gradle") }},
}

// DetectStack returns the stacks found in root, in detection order.
func DetectStack(root string) []string {
	p := &project{root: root}
	var found []string
	for _, d := range detectors {
		if d.match(p) {
			found = append(found, d.name)
		}
	}
	return found
}

type project struct {
	root   string
	loaded bool
	deps   map[string]bool
}

func (p *project) exists(name string) bool {
	_, err := os.Stat(filepath.Join(p.root, name))
	return err == nil
}

// hasDep reports whether package.json lists name in dependencies or
// devDependencies. A missing or malformed package.json has no deps.
func (p *project) hasDep(name string) bool {
	if !p.loaded {
		p.loaded = true
		p.deps = readPackageDeps(filepath.Join(p.root, "package.json"))
	}
	return p.deps[name]
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func readPackageDeps(path string) map[string]bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	deps := make(map[string]bool, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		deps[name] = true
	}
	for name := range pkg.DevDependencies {
		deps[name] = true
	}
	return deps
}

// ─── Conventions ─────────────────────────────────────────────────────────────

var commonConventions = []string{
	"Never call the native fetch directly; go through the shared HTTP client wrapper",
	"Never hard-code secrets (API keys, passwords)",
	"Never commit .env or similar config files to git",
	"Every async operation needs proper error handling",
}

var stackConventions = map[string][]string{
	TypeScript: {
		"Do not use `any`; declare explicit types",
		"Use `unknown` instead of `any` for values of unknown type",
		"Every function declares its return type",
		"Use `interface` for object shapes and `type` for unions or complex types",
		"Enable every strict-mode check",
	},
	JavaScript: {
		"Use ES6+ syntax",
		"Use const and let, never var",
		"Use destructuring to simplify code",
	},
	React: {
		"Use function components and Hooks, not class components",
		"Name component files in PascalCase",
		"Use React.memo() to avoid wasted renders",
		"Use useMemo/useCallback to avoid unnecessary re-renders",
	},
	Astro: {
		"Use Astro components for static content",
		"Use React/Vue islands only where interaction is needed",
		"Follow Astro's file-based routing conventions",
	},
	NextJS: {
		"Use the App Router (app/) rather than the Pages Router",
		"Default to Server Components",
		"Add 'use client' only where interaction is needed",
	},
	Go: {
		"Follow Effective Go",
		"Format code with gofmt",
		"Handle every error explicitly; never discard an error return",
		"Use meaningful names; avoid single-letter variables outside loops",
	},
	Python: {
		"Follow PEP 8",
		"Use type hints",
		"Use f-strings for formatting",
		"Use pathlib rather than os.path",
	},
	Rust: {
		"Format code with cargo fmt",
		"Lint with cargo clippy",
		"Prefer Result over panic",
		"Document every public API",
	},
}

// Conventions returns the common conventions followed by those of each
// stack, in stack order.
func Conventions(stacks []string) []string {
	out := append([]string(nil), commonConventions...)
	for _, s := range stacks {
		out = append(out, stackConventions[s]...)
	}
	return out
}
