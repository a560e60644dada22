package animlist

import (
	"reflect"
	"testing"
)

func TestTextItemWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"breaks on cluster boundary", "hello world", 5, []string{"hello", " worl", "d"}},
		{"empty", "", 10, []string{""}},
		{"hard newline", "a\nb", 10, []string{"a", "b"}},
		{"zero width keeps lines whole", "hello world", 0, []string{"hello world"}},
		{"wide runes", "日本語", 4, []string{"日本", "語"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTextItem(tt.text).wrap(tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestTextItemHeight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  int
	}{
		{"single line", "hello", 10, 1},
		{"wrapped", "hello world", 5, 3},
		{"empty still occupies a row", "", 10, 1},
		{"multi line", "a\nb\nc", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewTextItem(tt.text).Height(tt.width); got != tt.want {
				t.Errorf("Height(%d) = %d, want %d", tt.width, got, tt.want)
			}
		})
	}
}
