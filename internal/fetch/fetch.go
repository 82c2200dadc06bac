package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/edsrzf/mmap-go"

	"github.com/mgpai22/subtrack/internal/subtitle"
)

// DefaultMaxBytes caps a single subtitle file.
const DefaultMaxBytes = 32 << 20

var ErrTooLarge = errors.New("subtitle source too large")

// Fetcher reads subtitle sources from http(s) URLs, file:// URLs and plain
// paths. Line endings are normalized to LF.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

func New() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		MaxBytes: DefaultMaxBytes,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, src string) (string, error) {
	if src == "" {
		return "", errors.New("empty source")
	}

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		data, err = f.fetchHTTP(ctx, src)
	case strings.HasPrefix(src, "file://"):
		u, perr := url.Parse(src)
		if perr != nil {
			return "", errors.Wrapf(perr, "parse %s", src)
		}
		data, err = f.readFile(u.Path)
	default:
		data, err = f.readFile(src)
	}
	if err != nil {
		return "", err
	}

	return subtitle.NormalizeNewlines(string(data)), nil
}

func (f *Fetcher) maxBytes() int64 {
	if f.MaxBytes > 0 {
		return f.MaxBytes
	}
	return DefaultMaxBytes
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", src)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", src)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("get %s: unexpected status %s", src, resp.Status)
	}

	limit := f.maxBytes()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", src)
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrTooLarge, "%s exceeds %d bytes", src, limit)
	}
	return data, nil
}

// readFile maps the file read-only and copies it out. Files that cannot be
// mapped are read normally.
func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if stat.Size() > f.maxBytes() {
		return nil, errors.Wrapf(ErrTooLarge, "%s is %d bytes", path, stat.Size())
	}
	if stat.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			return nil, errors.Wrapf(rerr, "read %s", path)
		}
		return data, nil
	}
	defer func() { _ = m.Unmap() }()

	return append([]byte(nil), m...), nil
}
