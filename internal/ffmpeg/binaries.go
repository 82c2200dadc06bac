package ffmpeg

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
)

const (
	EnvFFmpegPath  = "SUBTRACK_FFMPEG_PATH"
	EnvFFprobePath = "SUBTRACK_FFPROBE_PATH"
)

var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure locates ffmpeg and ffprobe once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = Locate(os.Getenv, exec.LookPath, cacheDir())
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// Locate resolves each binary from its environment override, then PATH,
// then a previously installed copy under dir.
func Locate(getenv func(string) string, lookPath func(string) (string, error), dir string) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv(EnvFFmpegPath),
		FFprobe: getenv(EnvFFprobePath),
	}

	if paths.FFmpeg == "" {
		paths.FFmpeg = find("ffmpeg", lookPath, dir)
	}
	if paths.FFprobe == "" {
		paths.FFprobe = find("ffprobe", lookPath, dir)
	}

	if paths.FFmpeg == "" || paths.FFprobe == "" {
		return BinaryPaths{}, errors.WithHintf(ErrNotFound,
			"install ffmpeg or set %s and %s", EnvFFmpegPath, EnvFFprobePath)
	}
	return paths, nil
}

func find(name string, lookPath func(string) (string, error), dir string) string {
	if found, err := lookPath(name); err == nil {
		return found
	}
	if dir == "" {
		return ""
	}
	candidate := filepath.Join(dir, name+executableSuffix())
	if fileExists(candidate) {
		return candidate
	}
	return ""
}

func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "subtrack", "ffmpeg", runtime.GOOS, runtime.GOARCH)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
