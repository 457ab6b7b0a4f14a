package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/scan"
)

// Locate returns the path of the plain text file a record was parsed from.
// Records from archive entries have no file of their own to open.
func Locate(files []scan.FileInfo, r parse.Record) (string, error) {
	for _, fi := range files {
		switch {
		case fi.Kind == "zip" && strings.HasPrefix(r.SourceFile, fi.Path+scan.ArchiveSep):
			entry := strings.TrimPrefix(r.SourceFile, fi.Path+scan.ArchiveSep)
			return "", fmt.Errorf("%s is inside archive %s; extract it to open", entry, fi.Path)
		case fi.Kind != "zip" && fi.Path == r.SourceFile:
			return fi.Path, nil
		}
	}
	return "", fmt.Errorf("source file not found: %s", r.SourceFile)
}

// Record opens the record's source file in $EDITOR (less by default) at
// the record's first line.
func Record(files []scan.FileInfo, r parse.Record) error {
	filePath, err := Locate(files, r)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	lineNum := r.LineNumber
	if lineNum < 1 {
		lineNum = 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
