package tool

import (
	"fmt"
	"strings"
)

// FormatTree renders tools as a box-drawing tree under name.
// Matryoshka tools are labelled with their child count and expanded one level deeper.
//
//	Agent
//	└── facade (2 inner tools)
//	    ├── inner1
//	    └── inner2
func FormatTree(name string, tools []Tool) string {
	if len(tools) == 0 {
		return name + " has no tools"
	}
	lines := []string{name}
	lines = appendTree(lines, tools, "")
	return strings.Join(lines, "\n")
}

func appendTree(lines []string, tools []Tool, prefix string) []string {
	for i, t := range tools {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(tools)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}

		label := t.Definition().Name
		m, isFacade := As[*Matryoshka](t)
		if isFacade {
			label = fmt.Sprintf("%s (%d inner tools)", label, len(m.inner))
		}
		lines = append(lines, prefix+connector+label)
		if isFacade {
			lines = appendTree(lines, m.inner, childPrefix)
		}
	}
	return lines
}
