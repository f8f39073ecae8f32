package infrastructure

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/gdfetch-go/internal/domain"
	"go.uber.org/zap"
)

// confirmCookiePrefix marks the cookie carrying the large-file confirmation token
const confirmCookiePrefix = "download_warning"

// resolveProvider fetches a file by id, answering the large-file warning
// with its confirmation token when the provider asks for one. The cookie
// session lives only for this call.
func (f *HTTPFetcher) resolveProvider(ctx context.Context, fileID string) (*domain.Target, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	session := newHTTPClient(f.config, jar)

	firstURL, err := f.providerURL(fileID, "")
	if err != nil {
		return nil, err
	}
	resp, err := f.get(ctx, session, firstURL, nil)
	if err != nil {
		return nil, err
	}

	token, ok := confirmToken(resp)
	if ok {
		f.logger.Debug("Provider requested confirmation", zap.String("file_id", fileID))

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		confirmURL, err := f.providerURL(fileID, token)
		if err != nil {
			return nil, err
		}
		resp, err = f.get(ctx, session, confirmURL, nil)
		if err != nil {
			return nil, err
		}
	}

	size := f.probeSize(ctx, session, fileID, token)

	return &domain.Target{
		Body:     resp.Body,
		Size:     size,
		FileName: fileNameFromDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

// providerURL adds the id and, when present, the confirm token to the drive endpoint
func (f *HTTPFetcher) providerURL(fileID, token string) (string, error) {
	u, err := url.Parse(f.config.DriveURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid drive url %q: %w", domain.ErrUnreachableSource, f.config.DriveURL, err)
	}
	q := u.Query()
	q.Set("id", fileID)
	if token != "" {
		q.Set("confirm", token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// confirmToken returns the value of the first cookie named download_warning*
func confirmToken(resp *http.Response) (string, bool) {
	for _, cookie := range resp.Cookies() {
		if strings.HasPrefix(cookie.Name, confirmCookiePrefix) {
			return cookie.Value, true
		}
	}
	return "", false
}

// probeSize asks for the first three bytes and reads the total from
// Content-Range. Any failure leaves the size unknown.
func (f *HTTPFetcher) probeSize(ctx context.Context, session *http.Client, fileID, token string) domain.ExpectedSize {
	probeURL, err := f.providerURL(fileID, token)
	if err != nil {
		return domain.UnknownSize()
	}

	resp, err := f.get(ctx, session, probeURL, http.Header{"Range": []string{"bytes=0-2"}})
	if err != nil {
		f.logger.Debug("Size probe failed", zap.String("file_id", fileID), zap.Error(err))
		return domain.UnknownSize()
	}
	// a server ignoring Range sends the whole file; close without draining
	_ = resp.Body.Close()

	size, ok := parseContentRangeTotal(resp.Header.Get("Content-Range"))
	if !ok {
		return domain.UnknownSize()
	}
	return domain.KnownSize(size)
}

// parseContentRangeTotal reads the total from "bytes <start>-<end>/<total>"
func parseContentRangeTotal(header string) (int64, bool) {
	if header == "" {
		return 0, false
	}
	slash := strings.LastIndex(header, "/")
	if slash < 0 {
		return 0, false
	}
	total, err := strconv.ParseInt(strings.TrimSpace(header[slash+1:]), 10, 64)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}

// fileNameFromDisposition extracts a safe base name from Content-Disposition
func fileNameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(filepath.Clean("/" + params["filename"]))
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}
