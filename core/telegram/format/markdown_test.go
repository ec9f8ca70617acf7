package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		version int
		in      string
		want    string
	}{
		{MarkdownV1, "snake_case *bold* [link]", `snake\_case \*bold\* \[link]`},
		{MarkdownV1, "a`b", "a\\`b"},
		{MarkdownV2, "1.5 (ok)!", `1\.5 \(ok\)\!`},
		{MarkdownV2, `back\slash`, `back\\slash`},
		{MarkdownV1, "plain", "plain"},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version)
		if err != nil || got != tc.want {
			t.Fatalf("EscapeMarkdown(%q, %d) = %q, %v; want %q", tc.in, tc.version, got, err, tc.want)
		}
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("unknown version accepted")
	}
	if Escape("_") != `\_` {
		t.Fatalf("Escape = %q", Escape("_"))
	}
}
