package mail

import (
	"bufio"
	netmail "net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, raw string) *netmail.Message {
	t.Helper()
	msg, err := netmail.ReadMessage(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	return msg
}

func TestExtractPlainText_SinglePart(t *testing.T) {
	msg := readMessage(t, "Content-Type: text/plain; charset=utf-8\r\n"+
		"\r\n"+
		"Course: Math 6\r\n")

	text, err := extractPlainText(msg)
	require.NoError(t, err)
	assert.Equal(t, "Course: Math 6\r\n", text)
}

func TestExtractPlainText_MultipartPrefersPlain(t *testing.T) {
	raw := "Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Course: Math 6\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Course: Math 6</p>\r\n" +
		"--b1--\r\n"

	text, err := extractPlainText(readMessage(t, raw))
	require.NoError(t, err)
	assert.Contains(t, text, "Course: Math 6")
	assert.NotContains(t, text, "<p>")
}

func TestExtractPlainText_QuotedPrintablePart(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=\"b2\"\r\n" +
		"\r\n" +
		"--b2\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Grade: A=20=20(5/5 =3D 100%)\r\n" +
		"--b2--\r\n"

	text, err := extractPlainText(readMessage(t, raw))
	require.NoError(t, err)
	assert.Contains(t, text, "Grade: A  (5/5 = 100%)")
}

func TestDecodeBody_Base64(t *testing.T) {
	text, err := decodeBody(strings.NewReader("Q291cnNlOiBNYXRoIDY="), "base64", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "Course: Math 6", text)
}

func TestDecodeBody_Latin1Charset(t *testing.T) {
	// 0xE9 is é in ISO-8859-1
	text, err := decodeBody(strings.NewReader("Jos\xe9"), "", "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "José", text)
}

func TestDecodeBody_UnknownCharsetPassthrough(t *testing.T) {
	text, err := decodeBody(strings.NewReader("plain"), "", "x-no-such-charset")
	require.NoError(t, err)
	assert.Equal(t, "plain", text)
}
