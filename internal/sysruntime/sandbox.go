package sysruntime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Sandbox is a Runtime implementation confined to an allow-listed root
// directory: every path operation resolves symlink-aware against the
// root and refuses any path that would escape it. Process exec and
// network access are disabled unless the AllowExec/AllowNet options
// are passed to NewSandbox.
type Sandbox struct {
	root        string
	host        *Host
	allowExec   bool
	allowNet    bool
	start       time.Time
}

// SandboxOption configures a Sandbox at construction.
type SandboxOption func(*Sandbox)

// AllowExec enables ExecPipe/ExecCommand inside the sandbox (disabled by default).
func AllowExec() SandboxOption { return func(s *Sandbox) { s.allowExec = true } }

// AllowNet enables FetchURL inside the sandbox (disabled by default).
func AllowNet() SandboxOption { return func(s *Sandbox) { s.allowNet = true } }

// NewSandbox constructs a sandboxed runtime rooted at root.
func NewSandbox(root string, opts ...SandboxOption) *Sandbox {
	s := &Sandbox{root: root, host: NewHost(), start: time.Now()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolve canonicalises path against the sandbox root, refusing any
// path that would escape it (symlink-aware via securejoin).
func (s *Sandbox) resolve(op, path string) (string, error) {
	resolved, err := securejoin.SecureJoin(s.root, path)
	if err != nil {
		return "", newErr(KindPathViolation, op, path, err)
	}
	return resolved, nil
}

func (s *Sandbox) ReadFile(ctx context.Context, path string) ([]byte, error) {
	p, err := s.resolve("read", path)
	if err != nil {
		return nil, err
	}
	return s.host.ReadFile(ctx, p)
}

func (s *Sandbox) ReadString(ctx context.Context, path string) (string, error) {
	p, err := s.resolve("read_string", path)
	if err != nil {
		return "", err
	}
	return s.host.ReadString(ctx, p)
}

func (s *Sandbox) WriteFile(ctx context.Context, path string, data []byte) error {
	p, err := s.resolve("write", path)
	if err != nil {
		return err
	}
	return s.host.WriteFile(ctx, p, data)
}

func (s *Sandbox) CopyFile(ctx context.Context, src, dst string) error {
	sp, err := s.resolve("copy", src)
	if err != nil {
		return err
	}
	dp, err := s.resolve("copy", dst)
	if err != nil {
		return err
	}
	return s.host.CopyFile(ctx, sp, dp)
}

func (s *Sandbox) RenameFile(ctx context.Context, src, dst string) error {
	sp, err := s.resolve("rename", src)
	if err != nil {
		return err
	}
	dp, err := s.resolve("rename", dst)
	if err != nil {
		return err
	}
	return s.host.RenameFile(ctx, sp, dp)
}

func (s *Sandbox) RemoveFile(ctx context.Context, path string) error {
	p, err := s.resolve("remove", path)
	if err != nil {
		return err
	}
	return s.host.RemoveFile(ctx, p)
}

func (s *Sandbox) Metadata(ctx context.Context, path string) (Metadata, error) {
	p, err := s.resolve("metadata", path)
	if err != nil {
		return Metadata{}, err
	}
	return s.host.Metadata(ctx, p)
}

func (s *Sandbox) Exists(ctx context.Context, path string, kind FileKind) (bool, error) {
	p, err := s.resolve("exists", path)
	if err != nil {
		return false, err
	}
	return s.host.Exists(ctx, p, kind)
}

func (s *Sandbox) MkdirAll(ctx context.Context, path string) error {
	p, err := s.resolve("mkdir", path)
	if err != nil {
		return err
	}
	return s.host.MkdirAll(ctx, p)
}

func (s *Sandbox) RemoveAll(ctx context.Context, path string) error {
	p, err := s.resolve("remove_all", path)
	if err != nil {
		return err
	}
	return s.host.RemoveAll(ctx, p)
}

func (s *Sandbox) ListDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	p, err := s.resolve("list_dir", path)
	if err != nil {
		return nil, err
	}
	return s.host.ListDir(ctx, p)
}

func (s *Sandbox) Cwd(_ context.Context) (string, error) {
	return s.root, nil
}

func (s *Sandbox) TempDir(ctx context.Context, template string) (*TempDir, error) {
	base, err := s.resolve("temp_dir", ".docforge-tmp")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, wrapIOErr("temp_dir", base, err)
	}
	dir, err := os.MkdirTemp(base, orDefault(template, "sandbox-*"))
	if err != nil {
		return nil, wrapIOErr("temp_dir", base, err)
	}
	return &TempDir{path: dir, release: func() error { return os.RemoveAll(dir) }}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (s *Sandbox) ExecPipe(ctx context.Context, cmd string, args []string, stdin []byte) ([]byte, error) {
	if !s.allowExec {
		return nil, newErr(KindNotSupported, "exec_pipe", cmd, fmt.Errorf("process execution disabled in sandbox"))
	}
	return s.host.ExecPipe(ctx, cmd, args, stdin)
}

func (s *Sandbox) ExecCommand(ctx context.Context, cmd string, args []string, stdin []byte) (ProcessResult, error) {
	if !s.allowExec {
		return ProcessResult{}, newErr(KindNotSupported, "exec_command", cmd, fmt.Errorf("process execution disabled in sandbox"))
	}
	return s.host.ExecCommand(ctx, cmd, args, stdin)
}

func (s *Sandbox) Getenv(name string) (string, bool) { return s.host.Getenv(name) }
func (s *Sandbox) Environ() map[string]string        { return s.host.Environ() }

func (s *Sandbox) FetchURL(ctx context.Context, url string) ([]byte, string, error) {
	if !s.allowNet {
		return nil, "", newErr(KindNotSupported, "fetch_url", url, fmt.Errorf("network access disabled in sandbox"))
	}
	return s.host.FetchURL(ctx, url)
}

func (s *Sandbox) OSName() string { return s.host.OSName() }
func (s *Sandbox) Arch() string   { return s.host.Arch() }

func (s *Sandbox) CPUTime() int64 {
	return time.Since(s.start).Nanoseconds() * 1000
}

func (s *Sandbox) XDGDir(kind XDGKind, subpath string) (string, error) {
	p, err := s.resolve("xdg_dir", filepath.Join(".xdg", xdgDirName(kind), subpath))
	if err != nil {
		return "", err
	}
	return p, nil
}

func xdgDirName(kind XDGKind) string {
	switch kind {
	case XDGConfig:
		return "config"
	case XDGData:
		return "data"
	case XDGCache:
		return "cache"
	case XDGState:
		return "state"
	default:
		return "unknown"
	}
}

func (s *Sandbox) Print(line string) { s.host.Print(line) }

func (s *Sandbox) StdoutWrite(p []byte) (int, error) { return s.host.StdoutWrite(p) }
func (s *Sandbox) StderrWrite(p []byte) (int, error) { return s.host.StderrWrite(p) }

var _ Runtime = (*Sandbox)(nil)
