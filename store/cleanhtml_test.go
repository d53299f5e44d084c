package store

import "testing"

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "no anchor tags",
			html: `<p class="AmmCorpsTexte">Simple text</p>`,
			want: `<p class="AmmCorpsTexte">Simple text</p>`,
		},
		{
			name: "removes a name keeps content",
			html: `<p class="AmmAnnexeTitre"><a name="Ann3bNotice">NOTICE</a></p>`,
			want: `<p class="AmmAnnexeTitre">NOTICE</p>`,
		},
		{
			name: "multiple a name tags",
			html: `<p><a name="first">Premier</a></p><p><a name="second">Deuxième</a></p>`,
			want: `<p>Premier</p><p>Deuxième</p>`,
		},
		{
			name: "nested html inside a name",
			html: `<p><a name="_Toc123"><span class="bold">Titre</span> avec <em>emphase</em></a></p>`,
			want: `<p><span class="bold">Titre</span> avec <em>emphase</em></p>`,
		},
		{
			name: "empty a name tag",
			html: `<p><a name=""></a>Some text</p>`,
			want: `<p>Some text</p>`,
		},
		{
			name: "preserves href anchors",
			html: `<p><a href="https://example.com">Link</a></p>`,
			want: `<p><a href="https://example.com">Link</a></p>`,
		},
		{
			name: "a name at start of string",
			html: `<a name="start">Content</a>`,
			want: `Content`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHTML(tt.html); got != tt.want {
				t.Errorf("CleanHTML(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}
