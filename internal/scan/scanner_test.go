package scan

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeHandlesBOMs(t *testing.T) {
	text, err := Decode([]byte("\xef\xbb\xbfhello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	// "hi" in UTF-16LE with BOM
	text, err = Decode([]byte{0xff, 0xfe, 'h', 0, 'i', 0})
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	// "hi" in UTF-16BE with BOM
	text, err = Decode([]byte{0xfe, 0xff, 0, 'h', 0, 'i'})
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	text, err = Decode([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", text)
}

func TestReadArchiveKeepsOrderAndSkipsJunk(t *testing.T) {
	data := buildZip(t, map[string]string{
		"_chat.txt":           "[2023-07-07, 10:00 PM] Alice: hi",
		"__MACOSX/._chat.txt": "junk",
		"media/photo.jpg":     "binary",
		"folder/second.TXT":   "second",
		".hidden.txt":         "hidden",
	}, []string{"_chat.txt", "__MACOSX/._chat.txt", "media/photo.jpg", "folder/second.TXT", ".hidden.txt"})

	sources, err := ReadArchive("export.zip", data)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "_chat.txt", sources[0].Name)
	assert.Equal(t, "export.zip!_chat.txt", sources[0].Path)
	assert.Equal(t, "[2023-07-07, 10:00 PM] Alice: hi", sources[0].Text)
	assert.Equal(t, "second.TXT", sources[1].Name)
	assert.Equal(t, "export.zip!folder/second.TXT", sources[1].Path)
}

func TestFromBytes(t *testing.T) {
	sources := FromBytes("/exports/alice/chat.txt", []byte("hello"))
	require.Len(t, sources, 1)
	assert.Equal(t, "chat.txt", sources[0].Name)
	assert.Equal(t, "/exports/alice/chat.txt", sources[0].Path)
	assert.Equal(t, "hello", sources[0].Text)
	assert.NoError(t, sources[0].Err)

	sources = FromBytes("broken.zip", []byte("not a zip"))
	require.Len(t, sources, 1)
	assert.Equal(t, "broken.zip", sources[0].Name)
	assert.Error(t, sources[0].Err)

	empty := buildZip(t, map[string]string{"a.jpg": "x"}, []string{"a.jpg"})
	sources = FromBytes("media.zip", empty)
	require.Len(t, sources, 1)
	assert.ErrorContains(t, sources[0].Err, "no .txt files")
}

func TestScanPathsAndLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("md"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "c.txt"), []byte("c"), 0o644))
	zipPath := filepath.Join(dir, "z.zip")
	require.NoError(t, os.WriteFile(zipPath, buildZip(t, map[string]string{"inner.txt": "inner"}, []string{"inner.txt"}), 0o644))

	files, err := ScanPaths(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.txt", filepath.Base(files[0].Path))
	assert.Equal(t, "b.txt", filepath.Base(files[1].Path))
	assert.Equal(t, "zip", files[2].Kind)

	sources := Load(files)
	require.Len(t, sources, 3)
	assert.Equal(t, "a", sources[0].Text)
	assert.Equal(t, files[0].Path, sources[0].Path)
	assert.Equal(t, "b", sources[1].Text)
	assert.Equal(t, "inner.txt", sources[2].Name)
	assert.Equal(t, zipPath+"!inner.txt", sources[2].Path)
	assert.Equal(t, "inner", sources[2].Text)

	_, err = ScanPaths(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestLoadReportsUnreadableFile(t *testing.T) {
	sources := Load([]FileInfo{{Path: filepath.Join(t.TempDir(), "gone.txt"), Kind: "text"}})
	require.Len(t, sources, 1)
	assert.Equal(t, "gone.txt", sources[0].Name)
	assert.Error(t, sources[0].Err)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "WhatsApp Chat with Alice", BaseName("/tmp/WhatsApp Chat with Alice.txt"))
	assert.Equal(t, "export", BaseName("export.zip", "other.txt"))
	assert.Equal(t, "chat", BaseName())
}
