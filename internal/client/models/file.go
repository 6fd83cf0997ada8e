// Package models defines the file tree types exchanged with the backend.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypeRegular   FileType = "regular"
	FileTypeDirectory FileType = "directory"
)

const (
	MaxFileNameLength = 255
	MaxFilePathLength = 4095
)

var (
	ErrUnknownFileType = errors.New("unknown file type")
	ErrInvalidFileName = errors.New("invalid file name")
	ErrInvalidFilePath = errors.New("invalid file path")
)

// RegularContent points to the bytes of a regular file.
type RegularContent struct {
	URL string `json:"url"`
}

type DirectoryEntry struct {
	Name string `json:"name"`
	File File   `json:"file"`
}

type DirectoryContent struct {
	Files []DirectoryEntry `json:"files"`
}

// File is a regular file or a directory. Exactly one of Regular and
// Directory may be set, matching Type; both are nil when the backend
// omitted the content.
type File struct {
	ID        uuid.UUID
	Type      FileType
	Regular   *RegularContent
	Directory *DirectoryContent
}

type fileJSON struct {
	ID      uuid.UUID       `json:"id"`
	Type    FileType        `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

func (f *File) UnmarshalJSON(data []byte) error {
	var raw fileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := File{ID: raw.ID, Type: raw.Type}
	hasContent := len(raw.Content) > 0 && string(raw.Content) != "null"

	switch raw.Type {
	case FileTypeRegular:
		if hasContent {
			out.Regular = &RegularContent{}
			if err := json.Unmarshal(raw.Content, out.Regular); err != nil {
				return fmt.Errorf("regular content: %w", err)
			}
		}
	case FileTypeDirectory:
		if hasContent {
			out.Directory = &DirectoryContent{}
			if err := json.Unmarshal(raw.Content, out.Directory); err != nil {
				return fmt.Errorf("directory content: %w", err)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFileType, raw.Type)
	}

	*f = out
	return nil
}

func (f File) MarshalJSON() ([]byte, error) {
	raw := fileJSON{ID: f.ID, Type: f.Type}

	var content any
	switch {
	case f.Regular != nil:
		content = f.Regular
	case f.Directory != nil:
		content = f.Directory
	}
	if content != nil {
		b, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		raw.Content = b
	}
	return json.Marshal(raw)
}

func (f *File) IsDir() bool {
	return f.Type == FileTypeDirectory
}

// CheckName validates a single path segment.
func CheckName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return fmt.Errorf("%w: %q is not supported", ErrInvalidFileName, name)
	case len(name) > MaxFileNameLength:
		return fmt.Errorf("%w: too long", ErrInvalidFileName)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: contains '/'", ErrInvalidFileName)
	case strings.IndexFunc(name, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0:
		return fmt.Errorf("%w: contains non-printable characters", ErrInvalidFileName)
	}
	return nil
}

// CleanPath validates a slash separated file path and returns it without
// leading, trailing or doubled slashes. The empty path names the root.
func CleanPath(p string) (string, error) {
	if len(p) > MaxFilePathLength {
		return "", fmt.Errorf("%w: too long", ErrInvalidFilePath)
	}

	var names []string
	for _, name := range strings.Split(p, "/") {
		if name == "" {
			continue
		}
		if err := CheckName(name); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidFilePath, err)
		}
		names = append(names, name)
	}
	return strings.Join(names, "/"), nil
}
