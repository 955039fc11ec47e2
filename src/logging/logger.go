package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Options 日志配置
type Options struct {
	Level   string
	File    string // empty disables the file hook
	MaxSize string // e.g. "10 * 1024 * 1024"
}

// New builds the process logger. Console output always goes to out; when
// opts.File is set every entry is also appended to that file, which is rotated
// once it grows past opts.MaxSize.
func New(out io.Writer, opts Options) (*logrus.Logger, *FileHook, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if opts.File == "" {
		return logger, nil, nil
	}

	hook, err := NewFileHook(opts.File, ParseSize(opts.MaxSize))
	if err != nil {
		return nil, nil, err
	}
	logger.AddHook(hook)

	return logger, hook, nil
}

// renameFile moves the full log aside during rotation.
var renameFile = os.Rename

// FileHook 将日志写入文件，超过大小后轮转
type FileHook struct {
	path      string
	maxSize   int64
	file      *os.File
	formatter logrus.Formatter
	mu        sync.Mutex
}

// NewFileHook opens (or creates) path for appending.
func NewFileHook(path string, maxSize int64) (*FileHook, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	return &FileHook{
		path:      path,
		maxSize:   maxSize,
		file:      file,
		formatter: &logrus.TextFormatter{FullTimestamp: true, DisableColors: true},
	}, nil
}

// Levels implements logrus.Hook.
func (h *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *FileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.file.Write(line); err != nil {
		return err
	}

	return h.checkRotate()
}

// checkRotate must be called with h.mu held.
func (h *FileHook) checkRotate() error {
	if h.maxSize <= 0 {
		return nil
	}

	info, err := h.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() <= h.maxSize {
		return nil
	}

	return h.rotate()
}

func (h *FileHook) rotate() error {
	closeErr := h.file.Close()

	ext := ""
	base := h.path
	if i := strings.LastIndex(h.path, "."); i > strings.LastIndex(h.path, string(os.PathSeparator)) {
		base, ext = h.path[:i], h.path[i:]
	}
	rotated := fmt.Sprintf("%s.%s%s", base, time.Now().Format("20060102150405.000000000"), ext)
	var renameErr error
	if closeErr == nil {
		renameErr = renameFile(h.path, rotated)
	}

	// the hook keeps an open file even when the rename failed
	file, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Join(closeErr, renameErr, err)
	}
	h.file = file

	return errors.Join(closeErr, renameErr)
}

// Close 关闭日志文件
func (h *FileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file != nil {
		return h.file.Close()
	}
	return nil
}

// ParseSize evaluates a product expression such as "10 * 1024 * 1024".
// Unparseable factors make the whole size 0, which disables rotation.
func ParseSize(expr string) int64 {
	if strings.TrimSpace(expr) == "" {
		return 0
	}

	var result int64 = 1
	for _, part := range strings.Split(expr, "*") {
		num, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		result *= num
	}
	return result
}
