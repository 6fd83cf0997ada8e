package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/dmitrijs2005/yama/internal/client/client"
	"github.com/dmitrijs2005/yama/internal/client/models"
	"github.com/google/uuid"
)

// ReadOptions scopes a path lookup.
//   - WorkingFileID: directory the path is relative to; zero means the
//     user's root.
type ReadOptions struct {
	WorkingFileID uuid.UUID
}

// WriteOptions controls file creation.
//   - WorkingFileID: as in ReadOptions.
//   - FailIfExists: reject the write when the path already exists instead
//     of overwriting.
type WriteOptions struct {
	WorkingFileID uuid.UUID
	FailIfExists  bool
}

// FileService reads and writes the remote file tree.
type FileService interface {
	Read(ctx context.Context, p string, opts ReadOptions) (*models.File, error)
	ReadContent(ctx context.Context, p string, opts ReadOptions) (string, error)
	WriteRegular(ctx context.Context, p string, content io.Reader, opts WriteOptions) (*models.File, error)
	MakeDirectory(ctx context.Context, p string, opts WriteOptions) (*models.File, error)
	Remove(ctx context.Context, p string, opts ReadOptions) (*models.File, error)
	Download(ctx context.Context, f *models.File) ([]byte, error)
}

var ErrNoContentURL = errors.New("file has no content url")

type fileService struct {
	api API
}

func NewFileService(api API) FileService {
	return &fileService{api: api}
}

// filesTarget addresses /files/<p> under the API base, with query.
func filesTarget(p string, query url.Values) (client.Target, error) {
	clean, err := models.CleanPath(p)
	if err != nil {
		return client.Target{}, err
	}

	elems := []string{"files/"}
	if clean != "" {
		for _, name := range strings.Split(clean, "/") {
			elems = append(elems, url.PathEscape(name))
		}
	}

	return client.Derive(func(u *url.URL) *url.URL {
		u = u.JoinPath(elems...)
		u.RawQuery = query.Encode()
		return u
	}), nil
}

func readQuery(opts ReadOptions) url.Values {
	q := url.Values{}
	if opts.WorkingFileID != uuid.Nil {
		q.Set("working_file_id", opts.WorkingFileID.String())
	}
	return q
}

func writeQuery(opts WriteOptions) url.Values {
	q := readQuery(ReadOptions{WorkingFileID: opts.WorkingFileID})
	if opts.FailIfExists {
		q.Set("exist_ok", "false")
	}
	return q
}

func (s *fileService) Read(ctx context.Context, p string, opts ReadOptions) (*models.File, error) {
	target, err := filesTarget(p, readQuery(opts))
	if err != nil {
		return nil, err
	}

	var f models.File
	if err := s.api.Get(ctx, target, &f); err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return &f, nil
}

func (s *fileService) ReadContent(ctx context.Context, p string, opts ReadOptions) (string, error) {
	q := readQuery(opts)
	q.Set("regular_content", "true")

	target, err := filesTarget(p, q)
	if err != nil {
		return "", err
	}

	resp, err := s.api.GetResponse(ctx, target)
	if err != nil {
		return "", fmt.Errorf("read content %s: %w", p, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read content %s: %w", p, err)
	}
	return string(data), nil
}

func (s *fileService) write(ctx context.Context, p string, body *client.Multipart, opts WriteOptions) (*models.File, error) {
	target, err := filesTarget(p, writeQuery(opts))
	if err != nil {
		return nil, err
	}

	var f models.File
	if err := s.api.Put(ctx, target, body, &f); err != nil {
		return nil, fmt.Errorf("write %s: %w", p, err)
	}
	return &f, nil
}

func (s *fileService) WriteRegular(ctx context.Context, p string, content io.Reader, opts WriteOptions) (*models.File, error) {
	body := &client.Multipart{
		Fields: []client.Field{{Name: "type", Value: string(models.FileTypeRegular)}},
		Files:  []client.FilePart{{Field: "content", Filename: path.Base("/" + p), Content: content}},
	}
	return s.write(ctx, p, body, opts)
}

func (s *fileService) MakeDirectory(ctx context.Context, p string, opts WriteOptions) (*models.File, error) {
	body := &client.Multipart{
		Fields: []client.Field{{Name: "type", Value: string(models.FileTypeDirectory)}},
	}
	return s.write(ctx, p, body, opts)
}

func (s *fileService) Remove(ctx context.Context, p string, opts ReadOptions) (*models.File, error) {
	target, err := filesTarget(p, readQuery(opts))
	if err != nil {
		return nil, err
	}

	var f models.File
	if err := s.api.Delete(ctx, target, &f); err != nil {
		return nil, fmt.Errorf("remove %s: %w", p, err)
	}
	return &f, nil
}

// Download fetches a regular file from the content URL the backend put in
// its model. The URL is absolute and may point outside the API.
func (s *fileService) Download(ctx context.Context, f *models.File) ([]byte, error) {
	if f == nil || f.Regular == nil || f.Regular.URL == "" {
		return nil, ErrNoContentURL
	}

	u, err := url.Parse(f.Regular.URL)
	if err != nil {
		return nil, fmt.Errorf("content url: %w", err)
	}

	resp, err := s.api.GetResponse(ctx, client.URL(u))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", f.ID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", f.ID, err)
	}
	return data, nil
}
