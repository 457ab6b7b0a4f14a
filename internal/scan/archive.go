package scan

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxEntrySize = 200 << 20 // 200MB uncompressed per entry

// ArchiveSep joins an archive path and an entry name in Source.Path.
const ArchiveSep = "!"

// EntryPath names entry inside archive, e.g. "export.zip!_chat.txt".
func EntryPath(archive, entry string) string {
	return archive + ArchiveSep + entry
}

// ReadArchive extracts every .txt entry of the zip archive at archive in
// archive order. Entries that fail to open or decode are returned as
// errored sources.
func ReadArchive(archive string, data []byte) ([]parse.Source, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var sources []parse.Source
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isChatEntry(f.Name) {
			continue
		}
		src := parse.Source{Name: path.Base(f.Name), Path: EntryPath(archive, f.Name)}
		src.Text, src.Err = readEntry(f)
		sources = append(sources, src)
	}
	return sources, nil
}

func isChatEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), ".") {
		return false
	}
	return strings.EqualFold(path.Ext(name), ".txt")
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(data) > maxEntrySize {
		return "", fmt.Errorf("read %s: entry exceeds %d bytes", f.Name, maxEntrySize)
	}
	return Decode(data)
}

// Decode converts raw bytes to UTF-8 text. A UTF-8 or UTF-16 byte order
// mark selects the encoding; without one the input is taken as UTF-8.
func Decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
