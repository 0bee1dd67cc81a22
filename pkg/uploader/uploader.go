// Package uploader provides a client-side coordinator for batched image uploads.
// It applies the cheap rejection rules before any network use and keeps the
// ordered list of references returned by the server.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
)

const maxFileBytes = 10 << 20 // 10 MiB на файл

var (
	ErrUploadInProgress = errors.New("upload already in progress")
	ErrLimitExceeded    = errors.New("attached images limit exceeded")
	ErrNotAnImage       = errors.New("file is not an image")
	ErrFileTooLarge     = errors.New("file exceeds 10 MiB")
	ErrNoFiles          = errors.New("no files to submit")
)

// File - кандидат на загрузку, заполняется вызывающей стороной
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// FileError - ошибка отбора конкретного файла, остальные файлы не трогает
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

type Coordinator struct {
	client   *http.Client
	endpoint string
	maxCount int

	mu        sync.Mutex
	refs      []string
	uploading bool
}

// NewCoordinator builds a coordinator posting batches to endpoint. maxCount
// caps the total number of attached references, e.g. 3 or 8 depending on the
// form this coordinator backs.
func NewCoordinator(client *http.Client, endpoint string, maxCount int) *Coordinator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Coordinator{client: client, endpoint: endpoint, maxCount: maxCount}
}

// SelectFiles filters candidates before submission. Going over the attach cap
// aborts the whole selection naming the cap; a wrong MIME type or an oversized
// file rejects only that file, siblings continue.
func (c *Coordinator) SelectFiles(files []File) ([]File, []FileError, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uploading {
		return nil, nil, ErrUploadInProgress
	}
	if len(c.refs)+len(files) > c.maxCount {
		return nil, nil, fmt.Errorf("%w: max %d image(s)", ErrLimitExceeded, c.maxCount)
	}

	var accepted []File
	var rejected []FileError
	for _, f := range files {
		switch {
		case !strings.HasPrefix(f.ContentType, "image/"):
			rejected = append(rejected, FileError{Name: f.Name, Err: ErrNotAnImage})
		case f.Size > maxFileBytes:
			rejected = append(rejected, FileError{Name: f.Name, Err: ErrFileTooLarge})
		default:
			accepted = append(accepted, f)
		}
	}

	return accepted, rejected, nil
}

// SubmitBatch posts all files as one multipart request. On success the
// returned references are appended in server order; on any failure the
// reference list stays untouched.
func (c *Coordinator) SubmitBatch(ctx context.Context, files []File) error {
	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return ErrUploadInProgress
	}
	if len(files) == 0 {
		c.mu.Unlock()
		return ErrNoFiles
	}
	c.uploading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	body, cType, err := packMultipart(files)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", cType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("upload rejected: %s", apiErr.Error)
		}
		return fmt.Errorf("upload rejected: status %d", resp.StatusCode)
	}

	var result struct {
		Success   bool     `json:"success"`
		ImageURLs []string `json:"imageUrls"`
		Message   string   `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode upload response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("upload rejected: %s", result.Message)
	}

	c.mu.Lock()
	c.refs = append(c.refs, result.ImageURLs...)
	c.mu.Unlock()

	return nil
}

// RemoveAt drops one reference by position. The stored artifact stays on the
// server, orphans are accepted.
func (c *Coordinator) RemoveAt(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.refs) {
		return fmt.Errorf("index %d out of range [0;%d)", i, len(c.refs))
	}
	c.refs = append(c.refs[:i], c.refs[i+1:]...)
	return nil
}

// References returns a snapshot of the ordered reference list.
func (c *Coordinator) References() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.refs))
	copy(out, c.refs)
	return out
}

func (c *Coordinator) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

func packMultipart(files []File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.Name))
		hdr.Set("Content-Type", f.ContentType)

		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part for %q: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to read %q: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		log.Println("Failed to close response body:", err)
	}
}
