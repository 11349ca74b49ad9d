package mail

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// extractPlainText extracts the text/plain content from an email
// message. For multipart messages it collects the text/plain parts;
// transfer encoding and charset are decoded per part.
func extractPlainText(msg *netmail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		// Single-part message, decode the body directly
		return decodeBody(msg.Body,
			msg.Header.Get("Content-Transfer-Encoding"),
			params["charset"])
	}

	boundary, ok := params["boundary"]
	if !ok {
		// No boundary found, return the body as is
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var textContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever text was collected before the bad part
			break
		}

		partType, partParams, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			continue
		}

		if strings.HasPrefix(partType, "text/plain") {
			text, err := decodeBody(part,
				part.Header.Get("Content-Transfer-Encoding"),
				partParams["charset"])
			if err != nil {
				continue // Skip this part if we can't decode it
			}
			textContent.WriteString(text)
			textContent.WriteString("\n")
		}
		// Nested multiparts and attachments are skipped
	}

	return textContent.String(), nil
}

// decodeBody applies the transfer encoding and charset of a message
// part, yielding UTF-8 text.
func decodeBody(r io.Reader, transferEncoding, charset string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return string(data), nil
	}

	enc, err := ianaindex.MIME.Encoding(charset)
	if err != nil || enc == nil {
		// Unknown charset, pass the bytes through
		return string(data), nil
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data), nil
	}
	return string(decoded), nil
}
