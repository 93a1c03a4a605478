package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the FTP fetcher. Credentials embedded in the URL win
// over User and Password; with neither set the fetcher logs in anonymously,
// which is how public statistical mirrors expose their extracts.
type FTPOptions struct {
	Timeout  time.Duration
	User     string
	Password string
}

// FTPFetcher downloads indicator extracts and boundary archives over FTP.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates a new FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &FTPFetcher{opts: opts}
}

// ftpTarget is one remote extract: where to dial, what to retrieve and who to
// log in as.
type ftpTarget struct {
	addr string
	path string
	user string
	pass string
}

func (f *FTPFetcher) target(rawURL string) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "ftp: parse url")
	}
	if u.Scheme != "ftp" {
		return ftpTarget{}, eris.Errorf("ftp: expected ftp scheme, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return ftpTarget{}, eris.Errorf("ftp: no host in %s", u.Redacted())
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return ftpTarget{}, eris.Errorf("ftp: %s names a directory, not a file", u.Redacted())
	}

	t := ftpTarget{
		addr: u.Host,
		path: u.Path,
		user: f.opts.User,
		pass: f.opts.Password,
	}
	if u.Port() == "" {
		t.addr = net.JoinHostPort(u.Hostname(), "21")
	}
	if u.User != nil {
		t.user = u.User.Username()
		t.pass, _ = u.User.Password()
	}
	if t.user == "" {
		t.user, t.pass = "anonymous", "anonymous@"
	}
	return t, nil
}

// ftpBody streams one RETR transfer. When the server reported a size, reaching
// EOF early is an error rather than a silently truncated extract.
type ftpBody struct {
	data io.ReadCloser
	quit func() error
	stop func() bool
	want int64 // -1 when the server did not answer SIZE
	got  int64
}

func (b *ftpBody) Read(p []byte) (int, error) {
	n, err := b.data.Read(p)
	b.got += int64(n)
	if err == io.EOF && b.want >= 0 && b.got != b.want {
		return n, eris.Errorf("ftp: short transfer: got %d of %d bytes", b.got, b.want)
	}
	return n, err
}

func (b *ftpBody) Close() error {
	if b.stop != nil {
		b.stop()
	}
	dataErr := b.data.Close()
	quitErr := b.quit()
	if dataErr != nil {
		return eris.Wrap(dataErr, "ftp: close transfer")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "ftp: quit")
	}
	return nil
}

// Download logs in, retrieves the file and returns its body. Cancelling ctx
// aborts a transfer blocked on the data connection. The caller must close the
// body to release the control connection.
func (f *FTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	t, err := f.target(rawURL)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("addr", t.addr), zap.String("path", t.path))

	conn, err := ftp.Dial(t.addr, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: dial %s", t.addr)
	}
	if err := conn.Login(t.user, t.pass); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrapf(err, "ftp: login as %s", t.user)
	}

	// SIZE is an extension; servers without it skip the length check.
	size, err := conn.FileSize(t.path)
	if err != nil {
		log.Debug("ftp: size unavailable", zap.Error(err))
		size = -1
	}

	resp, err := conn.Retr(t.path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrapf(err, "ftp: retrieve %s", t.path)
	}
	log.Debug("ftp: retrieving", zap.Int64("size", size))

	return &ftpBody{
		data: resp,
		quit: conn.Quit,
		stop: context.AfterFunc(ctx, func() { _ = resp.SetDeadline(time.Now()) }),
		want: size,
	}, nil
}

// DownloadToFile retrieves the FTP URL into path. Returns bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	return saveFile(path, body)
}
