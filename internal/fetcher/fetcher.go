// Package fetcher opens dashboard data sources (local files, HTTP(S) and FTP URLs)
// and streams tabular rows out of CSV and XLSX payloads.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Options selects the fetchers used for remote sources.
// Nil fields fall back to defaults.
type Options struct {
	HTTP Fetcher
	FTP  Fetcher
}

func (o Options) fetcherFor(scheme string) (Fetcher, error) {
	switch scheme {
	case "http", "https":
		if o.HTTP != nil {
			return o.HTTP, nil
		}
		return NewHTTPFetcher(HTTPOptions{}), nil
	case "ftp":
		if o.FTP != nil {
			return o.FTP, nil
		}
		return NewFTPFetcher(FTPOptions{}), nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", scheme)
	}
}

// IsRemote reports whether src is a URL rather than a local path.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	// Single-letter schemes are Windows drive letters.
	return len(u.Scheme) > 1 && u.Host != ""
}

// Ext returns the lower-cased extension of a path or URL, ignoring query strings.
func Ext(src string) string {
	if IsRemote(src) {
		u, _ := url.Parse(src)
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(filepath.Ext(src))
}

// Open returns a reader over src. Local paths are opened directly.
func Open(ctx context.Context, src string, opts Options) (io.ReadCloser, error) {
	if !IsRemote(src) {
		f, err := os.Open(src)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", src)
		}
		return f, nil
	}

	u, _ := url.Parse(src)
	f, err := opts.fetcherFor(u.Scheme)
	if err != nil {
		return nil, err
	}
	rc, err := f.Download(ctx, src)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: download %s", src)
	}
	return rc, nil
}

// Localize returns a local file path for src, downloading remote sources into dir.
// Readers that need random access (shapefiles, archives) go through here.
func Localize(ctx context.Context, src, dir string, opts Options) (string, error) {
	if !IsRemote(src) {
		if _, err := os.Stat(src); err != nil {
			return "", eris.Wrapf(err, "fetcher: stat %s", src)
		}
		return src, nil
	}

	u, _ := url.Parse(src)
	f, err := opts.fetcherFor(u.Scheme)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create temp dir")
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}
	dest := filepath.Join(dir, name)
	if _, err := f.DownloadToFile(ctx, src, dest); err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", src)
	}
	return dest, nil
}

// saveFile copies body into path through a ".part" sibling, so a failed or
// truncated download never leaves a partial file under the final name.
func saveFile(path string, body io.Reader) (int64, error) {
	part := path + ".part"
	file, err := os.Create(part)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}

	n, err := io.Copy(file, body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(part)
		return n, eris.Wrap(err, "write file")
	}

	if err := os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return n, eris.Wrap(err, "rename file")
	}
	return n, nil
}
