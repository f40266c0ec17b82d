// Package storefs stores rendered document artifacts on the local
// filesystem. Each artifact gets a JSON sidecar carrying the metadata the
// download endpoints serve (content type, filename, expiry), so a directory
// of artifacts survives process restarts without a database.
package storefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

const sidecarSuffix = ".meta.json"

// SignedURLInput describes a signed URL request.
type SignedURLInput struct {
	BaseURL   string
	Key       string
	ExpiresAt time.Time
}

// SignedURLSigner signs artifact download URLs.
type SignedURLSigner interface {
	SignURL(input SignedURLInput) (string, error)
}

// Store is a filesystem-backed docgen.ArtifactStore rooted at Root.
type Store struct {
	Root    string
	BaseURL string
	Signer  SignedURLSigner
	Now     func() time.Time
}

// NewStore creates a store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// sidecar is the on-disk metadata document written next to each artifact.
type sidecar struct {
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

func sidecarFromMeta(meta docgen.ArtifactMeta) sidecar {
	return sidecar{
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Filename:    meta.Filename,
		CreatedAt:   meta.CreatedAt,
		ExpiresAt:   meta.ExpiresAt,
	}
}

func (sc sidecar) toMeta() docgen.ArtifactMeta {
	return docgen.ArtifactMeta{
		ContentType: sc.ContentType,
		Size:        sc.Size,
		Filename:    sc.Filename,
		CreatedAt:   sc.CreatedAt,
		ExpiresAt:   sc.ExpiresAt,
	}
}

// Put writes the artifact and its sidecar atomically under Root.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta docgen.ArtifactMeta) (docgen.ArtifactRef, error) {
	_ = ctx
	target, err := s.diskPath(key)
	if err != nil {
		return docgen.ArtifactRef{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return docgen.ArtifactRef{}, err
	}

	var size int64
	err = atomicWrite(target, ".docgen-*", func(w io.Writer) error {
		n, copyErr := io.Copy(w, r)
		size = n
		return copyErr
	})
	if err != nil {
		return docgen.ArtifactRef{}, err
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(target))
	}
	if err := writeSidecar(target, sidecarFromMeta(meta)); err != nil {
		return docgen.ArtifactRef{}, err
	}
	return docgen.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open returns the artifact contents and the sidecar metadata, filling in
// size and timestamps from the file itself when the sidecar is missing.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, docgen.ArtifactMeta, error) {
	_ = ctx
	target, err := s.diskPath(key)
	if err != nil {
		return nil, docgen.ArtifactMeta{}, err
	}

	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docgen.ArtifactMeta{}, docgen.NewError(docgen.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, docgen.ArtifactMeta{}, err
	}

	meta := readSidecar(target).toMeta()
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(target))
	}
	if meta.Size == 0 {
		if info, statErr := file.Stat(); statErr == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	return file, meta, nil
}

// Delete removes the artifact and its sidecar. Missing files are not an
// error so deletes are idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	target, err := s.diskPath(key)
	if err != nil {
		return err
	}
	_ = os.Remove(target)
	_ = os.Remove(target + sidecarSuffix)
	return nil
}

// SignedURL delegates to the configured signer.
func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	_ = ctx
	if s == nil {
		return "", docgen.NewError(docgen.KindInternal, "store is nil", nil)
	}
	if s.Signer == nil || s.BaseURL == "" {
		return "", docgen.NewError(docgen.KindNotImpl, "signed URLs not configured", nil)
	}
	if ttl <= 0 {
		return "", docgen.NewError(docgen.KindValidation, "signed URL TTL is required", nil)
	}
	if key == "" {
		return "", docgen.NewError(docgen.KindValidation, "artifact key is required", nil)
	}
	return s.Signer.SignURL(SignedURLInput{
		BaseURL:   strings.TrimRight(s.BaseURL, "/"),
		Key:       key,
		ExpiresAt: s.now().Add(ttl),
	})
}

// diskPath validates the key and maps it inside Root. Keys are treated as
// slash paths; anything that cleans outside the root is rejected.
func (s *Store) diskPath(key string) (string, error) {
	if s == nil {
		return "", docgen.NewError(docgen.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return "", docgen.NewError(docgen.KindValidation, "store root is required", nil)
	}
	if key == "" {
		return "", docgen.NewError(docgen.KindValidation, "artifact key is required", nil)
	}

	rel := strings.TrimPrefix(path.Clean("/"+key), "/")
	if rel == "" || rel == "." {
		return "", docgen.NewError(docgen.KindValidation, "invalid artifact key", nil)
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", docgen.NewError(docgen.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// atomicWrite streams into a temp file in the target's directory and renames
// it into place, so readers never observe a partial artifact.
func atomicWrite(target, tmpPattern string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), tmpPattern)
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := fill(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func writeSidecar(target string, sc sidecar) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	return atomicWrite(target+sidecarSuffix, ".meta-*", func(w io.Writer) error {
		_, writeErr := w.Write(payload)
		return writeErr
	})
}

func readSidecar(target string) sidecar {
	data, err := os.ReadFile(target + sidecarSuffix)
	if err != nil {
		return sidecar{}
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return sidecar{}
	}
	return sc
}
