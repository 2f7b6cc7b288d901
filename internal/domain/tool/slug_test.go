package tool_test

import (
	"testing"

	"github.com/saasforge/saasforge/internal/domain/tool"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"CRM Pro", "crm-pro"},
		{"  My  App  ", "my-app"},
		{"Already-Slugged", "already-slugged"},
		{"Ünïcode Café!", "n-code-caf"},
		{"123 Go", "123-go"},
		{"---", ""},
		{"", ""},
		{"TaskMaster: Agile Edition", "taskmaster-agile-edition"},
	}
	for _, tc := range tests {
		if got := tool.Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
