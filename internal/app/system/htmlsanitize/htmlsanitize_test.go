package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/contacthub/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Called on Monday.", "Called on Monday."},
		{"keeps newlines", "line one\nline two", "line one\nline two"},
		{"strips tags", "<p><strong>VIP</strong> client</p>", "VIP client"},
		{"drops script body", "hello<script>alert('xss')</script>", "hello"},
		{"drops handlers", `<b onclick="x()">hi</b>`, "hi"},
		{"keeps comparison text", "a < b && c > d", "a < b && c > d"},
		{"decodes entities", "Fish &amp; Chips", "Fish & Chips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestField_Trims(t *testing.T) {
	if got := htmlsanitize.Field("  <i>Acme</i> Ltd \n"); got != "Acme Ltd" {
		t.Errorf("Field() = %q, want %q", got, "Acme Ltd")
	}
}
