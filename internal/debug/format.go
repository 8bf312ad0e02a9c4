// Package debug renders component ancestry for diagnostics and owns the
// development warn/tip channel.
//
// FormatComponentName and GenerateComponentTrace are the development
// implementations. Reporter gates them on the configured mode: in production
// builds they return empty strings and warnings are dropped.
package debug

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"faultline/internal/component"
)

var (
	classifyRE  = regexp.MustCompile(`(?:^|[-_])(\w)`)
	separatorRE = regexp.MustCompile(`[-_]`)
	fileNameRE  = regexp.MustCompile(`([^/\\]+)\.[^./\\]+$`)
)

// Classify turns a hyphen/underscore separated name into PascalCase:
// "my-component" becomes "MyComponent".
func Classify(s string) string {
	s = norm.NFC.String(s)
	s = classifyRE.ReplaceAllStringFunc(s, strings.ToUpper)
	return separatorRE.ReplaceAllString(s, "")
}

// FormatComponentName renders vm as "<Name>" or "<Anonymous>", optionally
// followed by " at {file}".
func FormatComponentName(vm component.Instance, includeFile bool) string {
	if vm == nil {
		return "<Anonymous>"
	}
	if component.IsRoot(vm) {
		return "<Root>"
	}
	md := vm.Metadata()
	name := md.Name
	if name == "" {
		name = md.ComponentTag
	}
	if name == "" && md.File != "" {
		if m := fileNameRE.FindStringSubmatch(md.File); m != nil {
			name = m[1]
		}
	}

	var sb strings.Builder
	if name != "" {
		sb.WriteString("<")
		sb.WriteString(Classify(name))
		sb.WriteString(">")
	} else {
		sb.WriteString("<Anonymous>")
	}
	if md.File != "" && includeFile {
		sb.WriteString(" at ")
		sb.WriteString(md.File)
	}
	return sb.String()
}

type traceEntry struct {
	vm    component.Instance
	count int // consecutive instances of one kind folded into this entry
}

// GenerateComponentTrace renders the ancestry of vm, folding directly nested
// instances of the same kind into a single line.
func GenerateComponentTrace(vm component.Instance) string {
	if vm == nil {
		return ""
	}
	if vm.Parent() == nil {
		return fmt.Sprintf("\n\n(found in %s)", FormatComponentName(vm, true))
	}

	var tree []traceEntry
	for cur := vm; cur != nil; cur = cur.Parent() {
		if n := len(tree); n > 0 {
			last := tree[n-1]
			if k := cur.Kind(); k != nil && last.vm.Kind() == k {
				tree[n-1].count++
				continue
			}
		}
		tree = append(tree, traceEntry{vm: cur, count: 1})
	}

	var sb strings.Builder
	sb.WriteString("\n\nfound in\n\n")
	for i, entry := range tree {
		if i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", 5+i*2))
		} else {
			sb.WriteString("---> ")
		}
		sb.WriteString(FormatComponentName(entry.vm, true))
		if entry.count > 1 {
			fmt.Fprintf(&sb, "... (%d recursive calls)", entry.count)
		}
	}
	return sb.String()
}
