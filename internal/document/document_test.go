package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	text, err := ExtractText("resume.TXT", []byte("  Skilled in Go and   Docker \r\n\n\n\tBuilt REST APIs  "))
	require.NoError(t, err)
	assert.Equal(t, "Skilled in Go and Docker\nBuilt REST APIs", text)

	_, err = ExtractText("resume.txt", []byte{0xff, 0xfe, 0xfd})
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestExtractRejectsUnsupportedTypes(t *testing.T) {
	for _, name := range []string{"resume.doc", "resume", "photo.png", ".pdf.bak"} {
		_, err := ExtractText(name, []byte("x"))
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
	}
}

func TestExtractCorruptDocuments(t *testing.T) {
	_, err := ExtractText("cv.pdf", []byte("not a pdf"))
	require.ErrorIs(t, err, ErrUnreadable)

	_, err = ExtractText("cv.docx", []byte("not a zip"))
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestDocumentXMLText(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills:</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve">React &amp; Node.js</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:r><w:t>AWS</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	assert.Equal(t, "Jane Doe\nSkills: React & Node.js\nAWS", documentXMLText(xml))
}

func TestTypeFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		want Type
	}{
		{mime: MIMEPDF, want: TypePDF},
		{mime: MIMEDOCX, want: TypeDOCX},
		{mime: "text/plain; charset=utf-8", want: TypeText},
		{mime: " Application/PDF ", want: TypePDF},
	}
	for _, tt := range tests {
		got, err := TypeFromMIME(tt.mime)
		require.NoError(t, err, tt.mime)
		assert.Equal(t, tt.want, got, tt.mime)
	}

	_, err := TypeFromMIME("application/msword")
	require.ErrorIs(t, err, ErrUnsupportedType)
}
