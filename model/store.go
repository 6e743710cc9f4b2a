package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeu5/selfplay-rl/policies"
	"github.com/zeu5/selfplay-rl/util"
)

var ErrNotFound = errors.New("model not found")

// BlobStore reads and writes named blobs. Implementations decide the medium.
type BlobStore interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// Save exports agent and writes it under name.
func Save(ctx context.Context, store BlobStore, name string, agent *policies.QLearningAgent) error {
	bs, err := Encode(Export(agent))
	if err != nil {
		return err
	}
	if err := store.Write(ctx, name, bs); err != nil {
		return fmt.Errorf("saving model %s: %w", name, err)
	}
	return nil
}

// Load reads name and imports it into agent. The agent is untouched on error.
func Load(ctx context.Context, store BlobStore, name string, agent *policies.QLearningAgent) error {
	m, err := Read(ctx, store, name)
	if err != nil {
		return err
	}
	return m.Apply(agent)
}

// Read fetches and decodes the model stored under name.
func Read(ctx context.Context, store BlobStore, name string) (*Model, error) {
	bs, err := store.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", name, err)
	}
	return Decode(bs)
}

// FileStore keeps one JSON file per blob under a directory.
type FileStore struct {
	dir string
}

var _ BlobStore = &FileStore{}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(name string) string {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return filepath.Join(f.dir, filepath.Clean("/"+name))
}

func (f *FileStore) Read(_ context.Context, name string) ([]byte, error) {
	bs, err := os.ReadFile(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return bs, err
}

func (f *FileStore) Write(_ context.Context, name string, data []byte) error {
	return util.WriteFile(f.path(name), data)
}
