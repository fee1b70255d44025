package cli

import (
	"io"
	"text/tabwriter"
)

// newTable は列をスペースで揃える表形式の出力を返す。Flushを忘れないこと。
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func enabledLabel(v int) string {
	if v == 1 {
		return "enabled"
	}
	return "disabled"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
