package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a titled block header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row; values are cut to the column width
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], truncate(val, widths[i]))
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatValue renders an optional indicator value
func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
