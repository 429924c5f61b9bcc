package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// paragraphText joins the run texts (matched by runTag) of every paragraph in xml
// (matched by paraTag). Empty paragraphs are dropped.
func paragraphText(xml string, paraTag, runTag *regexp.Regexp) []string {
	var out []string
	for _, para := range paraTag.FindAllString(xml, -1) {
		var b strings.Builder
		for _, m := range runTag.FindAllStringSubmatch(para, -1) {
			b.WriteString(html.UnescapeString(m[1]))
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// readZipFile returns the contents of the entry named name, or nil if absent.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return buf.Bytes(), nil
	}
	return nil, nil
}

const contentTypesPath = "[Content_Types].xml"

var (
	overrideTag = regexp.MustCompile(`<Override\s[^>]*>`)
	xmlAttr     = regexp.MustCompile(`([A-Za-z]+)="([^"]*)"`)
)

// mainPartPath looks up the part registered under contentType in [Content_Types].xml
// and returns its zip entry name. It returns fallback when the package does not say.
func mainPartPath(zr *zip.Reader, contentType, fallback string) string {
	data, err := readZipFile(zr, contentTypesPath)
	if err != nil || data == nil {
		return fallback
	}
	for _, tag := range overrideTag.FindAllString(string(data), -1) {
		attrs := make(map[string]string, 2)
		for _, m := range xmlAttr.FindAllStringSubmatch(tag, -1) {
			attrs[m[1]] = m[2]
		}
		if attrs["ContentType"] == contentType && attrs["PartName"] != "" {
			return strings.TrimPrefix(attrs["PartName"], "/")
		}
	}
	return fallback
}
