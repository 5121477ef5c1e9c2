package blockstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/spf13/afero"

	"github.com/bitcoin-sv/blockfetch/internal/wire"
)

var (
	ErrWriteFailure = errors.New("failed to write block")
	ErrReadFailure  = errors.New("failed to read block")
	ErrInvalidName  = errors.New("invalid artifact name")
)

const (
	dirPerm  os.FileMode = 0o750
	filePerm os.FileMode = 0o640
)

// Artifact identifies a stored block.
type Artifact struct {
	Name     string
	Path     string
	Hash     chainhash.Hash
	PrevHash chainhash.Hash
	Size     int
}

// FileSink writes block payloads into files of one directory. A file only appears under
// its final name once it is completely written and synced.
type FileSink struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

type Option func(s *FileSink)

// WithFs replaces the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *FileSink) {
		s.fs = fs
	}
}

// NewFileSink creates dir if it does not exist.
func NewFileSink(logger *slog.Logger, dir string, opts ...Option) (*FileSink, error) {
	s := &FileSink{
		fs:     afero.NewOsFs(),
		dir:    dir,
		logger: logger.With(slog.String("module", "blockstore")),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return nil, errors.Join(ErrWriteFailure, fmt.Errorf("failed to create output directory %s: %w", dir, err))
	}

	return s, nil
}

func (s *FileSink) Dir() string {
	return s.dir
}

// Store writes the block message payload (header, transaction count, transactions) to
// the file name in the sink's directory, replacing an existing file.
func (s *FileSink) Store(block *wire.MsgBlock, name string) (Artifact, error) {
	if err := validateName(name); err != nil {
		return Artifact{}, errors.Join(ErrWriteFailure, err)
	}

	payload, err := wire.EncodePayload(block)
	if err != nil {
		return Artifact{}, errors.Join(ErrWriteFailure, err)
	}

	path := filepath.Join(s.dir, name)
	if err = s.writeAtomic(path, payload); err != nil {
		return Artifact{}, errors.Join(ErrWriteFailure, fmt.Errorf("%s: %w", path, err))
	}

	artifact := Artifact{
		Name:     name,
		Path:     path,
		Hash:     block.BlockHash(),
		PrevHash: block.Header.PrevBlock,
		Size:     len(payload),
	}

	s.logger.Debug("Stored block", slog.String("hash", artifact.Hash.String()), slog.String("path", path), slog.Int("size", artifact.Size))

	return artifact, nil
}

func (s *FileSink) writeAtomic(path string, payload []byte) (err error) {
	tmp, err := afero.TempFile(s.fs, s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}

		if err != nil {
			_ = s.fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		return err
	}

	if err = tmp.Sync(); err != nil {
		return err
	}

	closed = true
	if err = tmp.Close(); err != nil {
		return err
	}

	if err = s.fs.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}

	return s.fs.Rename(tmp.Name(), path)
}

// Load reads a stored block back.
func (s *FileSink) Load(name string) (*wire.MsgBlock, error) {
	if err := validateName(name); err != nil {
		return nil, errors.Join(ErrReadFailure, err)
	}

	path := filepath.Join(s.dir, name)

	payload, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, errors.Join(ErrReadFailure, err)
	}

	block, err := wire.NewBlockFromBytes(payload)
	if err != nil {
		return nil, errors.Join(ErrReadFailure, fmt.Errorf("%s: %w", path, err))
	}

	return block, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}
