package docgen

import "testing"

func TestNormalizeFormat(t *testing.T) {
	cases := []struct {
		input Format
		want  Format
	}{
		{"", FormatPDF},
		{"pdf", FormatPDF},
		{"PDF", FormatPDF},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"html", FormatHTML},
		{"htm", FormatHTML},
		{"template", FormatHTML},
		{" Html ", FormatHTML},
		{"docx", Format("docx")},
	}

	for _, tc := range cases {
		if got := NormalizeFormat(tc.input); got != tc.want {
			t.Fatalf("NormalizeFormat(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
