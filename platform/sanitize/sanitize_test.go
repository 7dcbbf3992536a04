package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Moving from: NN1 1AA",
			want:  "Moving from: NN1 1AA",
		},
		{
			name:  "tags removed",
			input: "<div><b>Moving from:</b> NN1 1AA</div>",
			want:  "Moving from: NN1 1AA",
		},
		{
			name:  "table rows become lines",
			input: "<table><tr><td>Name</td><td>Jane</td></tr><tr><td>Email</td><td>jane@example.com</td></tr></table>",
			want:  "Name Jane \nEmail jane@example.com",
		},
		{
			name:  "line breaks become lines",
			input: "Moving from: NN1 1AA<br>Moving to: LE2 3BB<br/>Move date: 12/06/2026",
			want:  "Moving from: NN1 1AA\nMoving to: LE2 3BB\nMove date: 12/06/2026",
		},
		{
			name:  "closing paragraphs become lines",
			input: "<p>First line</p><p>Second line</p>",
			want:  "First line\nSecond line",
		},
		{
			name:  "entities decoded",
			input: "Smith &amp; Sons &lt;info@example.com&gt;",
			want:  "Smith & Sons",
		},
		{
			name:  "nbsp becomes space",
			input: "3&nbsp;bedrooms",
			want:  "3 bedrooms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Fatalf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
