package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

type FileInfo struct {
	Path string
	Kind string // "text" or "zip"
	Size int64
}

// kindOf classifies a file by extension; "" means the file is not an input.
func kindOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return "text"
	case ".zip":
		return "zip"
	default:
		return ""
	}
}

// ScanPaths expands files and directories into chat export inputs.
// Explicit files are kept in argument order whatever their extension;
// directories are walked in lexical order for .txt and .zip files.
func ScanPaths(paths ...string) ([]FileInfo, error) {
	var files []FileInfo
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			kind := kindOf(p)
			if kind == "" {
				kind = "text"
			}
			files = append(files, FileInfo{Path: p, Kind: kind, Size: info.Size()})
			continue
		}
		found, err := scanDir(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func scanDir(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		kind := kindOf(path)
		if kind == "" || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		files = append(files, FileInfo{Path: path, Kind: kind, Size: info.Size()})
		return nil
	})
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Load reads and decodes every file. Read, extraction and decode failures
// become per-source errors rather than aborting the batch.
func Load(files []FileInfo) []parse.Source {
	var sources []parse.Source
	for _, fi := range files {
		data, err := os.ReadFile(fi.Path)
		if err != nil {
			sources = append(sources, parse.Source{Name: filepath.Base(fi.Path), Path: fi.Path, Err: err})
			continue
		}
		sources = append(sources, FromBytes(fi.Path, data)...)
	}
	return sources
}

// FromBytes turns the file at origin (a path or an upload's file name)
// into sources, expanding archives.
func FromBytes(origin string, data []byte) []parse.Source {
	name := filepath.Base(origin)
	if kindOf(origin) == "zip" {
		sources, err := ReadArchive(origin, data)
		if err != nil {
			return []parse.Source{{Name: name, Path: origin, Err: fmt.Errorf("extract: %w", err)}}
		}
		if len(sources) == 0 {
			return []parse.Source{{Name: name, Path: origin, Err: fmt.Errorf("archive contains no .txt files")}}
		}
		return sources
	}

	text, err := Decode(data)
	if err != nil {
		return []parse.Source{{Name: name, Path: origin, Err: fmt.Errorf("decode: %w", err)}}
	}
	return []parse.Source{{Name: name, Path: origin, Text: text}}
}

// BaseName is the first input's file name without its extension.
func BaseName(names ...string) string {
	for _, n := range names {
		base := filepath.Base(n)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if base != "" && base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	return "chat"
}
