package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// slidePath matches ppt/slides/slideN.xml and captures N.
	slidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	// apTag matches a whole <a:p>...</a:p> paragraph, but not <a:pPr>.
	apTag = regexp.MustCompile(`(?s)<a:p(?:\s[^>]*[^/>])?>.*?</a:p>`)
	// atTag matches <a:t>text</a:t> (with any attributes).
	atTag = regexp.MustCompile(`<a:t(?:\s[^>]*)?>([^<]*)</a:t>`)
)

type slideFile struct {
	num  int
	file *zip.File
}

// extractPPTX returns each slide with text as "[Slide i]\n{lines}", in slide number order,
// slides separated by a blank line. i counts every slide, including ones without text.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract PPTX: not a zip: %w", err)
	}

	var slides []slideFile
	for _, f := range zr.File {
		m := slidePath.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var out []string
	for i, s := range slides {
		data, err := readZipFile(zr, s.file.Name)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: %w", err)
		}
		lines := paragraphText(string(data), apTag, atTag)
		if len(lines) == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("[Slide %d]\n%s", i+1, strings.Join(lines, "\n")))
	}
	return strings.Join(out, "\n\n"), nil
}
