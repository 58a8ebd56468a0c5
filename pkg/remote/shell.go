package remote

import (
	"path"
	"strings"
)

// ShellEscape single-quotes s for a POSIX shell.
func ShellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuotePath quotes p for a POSIX shell, leaving a leading ~ to be expanded
// by the remote shell.
func QuotePath(p string) string {
	switch {
	case p == "~":
		return `"$HOME"`
	case strings.HasPrefix(p, "~/"):
		return `"$HOME"/` + ShellEscape(p[2:])
	default:
		return ShellEscape(p)
	}
}

const (
	heredocDelimiter = "SKILLMAN_EOF"
	blockSeparator   = "===SKILLMAN_SEP==="
	bodyMarker       = "---SKILLMAN_BODY---"
)

// writeFileCommand writes content to file atomically through a temporary
// file, creating the parent directory.
func writeFileCommand(file string, content []byte) (string, bool) {
	body := string(content)
	if strings.Contains("\n"+body, "\n"+heredocDelimiter+"\n") {
		return "", false
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	tmp := file + ".tmp"
	var b strings.Builder
	b.WriteString("mkdir -p " + QuotePath(path.Dir(file)))
	b.WriteString(" && cat > " + QuotePath(tmp) + " <<'" + heredocDelimiter + "'")
	b.WriteString(" && mv -f " + QuotePath(tmp) + " " + QuotePath(file) + "\n")
	b.WriteString(body)
	b.WriteString(heredocDelimiter + "\n")
	return b.String(), true
}

// splitBlocks splits command output on blockSeparator lines, dropping
// empty blocks.
func splitBlocks(out string) []string {
	var blocks []string
	for _, block := range strings.Split(out, blockSeparator+"\n") {
		if strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
