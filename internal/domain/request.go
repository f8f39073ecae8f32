package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// SourceMode tells how a request's source is resolved
type SourceMode string

const (
	ModeURL      SourceMode = "url"      // Direct URL
	ModeProvider SourceMode = "provider" // Provider file id with confirmation exchange
)

// Source identifies the remote file. Exactly one of URL or FileID is set.
type Source struct {
	URL    string `json:"url,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

// URLSource builds a direct-URL source
func URLSource(rawURL string) Source {
	return Source{URL: rawURL}
}

// ProviderSource builds a provider file-id source
func ProviderSource(fileID string) Source {
	return Source{FileID: fileID}
}

// Mode returns the resolution mode of the source
func (s Source) Mode() SourceMode {
	if s.FileID != "" {
		return ModeProvider
	}
	return ModeURL
}

// String returns the URL or file id, whichever is set
func (s Source) String() string {
	if s.FileID != "" {
		return s.FileID
	}
	return s.URL
}

// DownloadRequest describes one fetch: what to get and where to put it
type DownloadRequest struct {
	Source         Source `json:"source"`
	DestinationDir string `json:"destination_dir"`
}

// NewDownloadRequest builds a request from the raw CLI values
func NewDownloadRequest(rawURL, fileID, destinationDir string) *DownloadRequest {
	return &DownloadRequest{
		Source:         Source{URL: strings.TrimSpace(rawURL), FileID: strings.TrimSpace(fileID)},
		DestinationDir: destinationDir,
	}
}

// Validate checks that exactly one source is set and the URL is usable
func (r *DownloadRequest) Validate() error {
	hasURL := r.Source.URL != ""
	hasID := r.Source.FileID != ""

	switch {
	case hasURL && hasID:
		return fmt.Errorf("%w: use either --url or --file_id, not both", ErrInvalidArguments)
	case !hasURL && !hasID:
		return fmt.Errorf("%w: you must provide either --url or --file_id", ErrInvalidArguments)
	}

	if r.DestinationDir == "" {
		return fmt.Errorf("%w: save path is empty", ErrInvalidArguments)
	}

	if hasURL {
		u, err := url.Parse(r.Source.URL)
		if err != nil {
			return fmt.Errorf("%w: invalid url %q: %w", ErrInvalidArguments, r.Source.URL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: unsupported url scheme %q", ErrInvalidArguments, u.Scheme)
		}
	}

	return nil
}

// FileNameFromURL returns the last path segment of a URL, or "" if it has
// none or it would escape the directory it is joined to
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}
