package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/langis/internal/app/system/htmlsanitize"
)

func TestText_StripsMarkup(t *testing.T) {
	got := htmlsanitize.Text(`Hello <script>alert("x")</script><b>world</b>`)
	if strings.Contains(got, "<") {
		t.Errorf("expected no markup, got %q", got)
	}
	if !strings.Contains(got, "world") {
		t.Errorf("expected text content preserved, got %q", got)
	}
}

func TestDescription_KeepsBasicFormatting(t *testing.T) {
	got := htmlsanitize.Description(`<p>Kurz <em>španělštiny</em></p><script>x()</script>`)
	if !strings.Contains(got, "<em>") {
		t.Errorf("expected emphasis preserved, got %q", got)
	}
	if strings.Contains(got, "script") {
		t.Errorf("expected script stripped, got %q", got)
	}
}
