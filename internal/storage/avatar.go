// Package storage holds uploaded profile avatars on the local filesystem.
// Objects are keyed "<user id>/avatar-<version>.<ext>" and served read-only
// by the HTTP layer under the configured base URL.
package storage

import (
    "context"
    "errors"
    "fmt"
    "io"
    "os"
    "path"
    "path/filepath"
    "strings"

    "github.com/gabriel-vasile/mimetype"
    "github.com/google/uuid"

    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// DefaultMaxBytes is the avatar size ceiling (2 MB).  It is also the
// largest ceiling NewAvatarStore accepts.
const DefaultMaxBytes int64 = 2 << 20

var (
    ErrTooLarge = errors.New("file too large")
    ErrNotImage = errors.New("file is not an image")
)

// allowedTypes are the raster formats accepted as avatars.  Vector and
// scriptable formats such as SVG are refused since uploads are served from
// the API origin.
var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// AvatarStore writes avatars below Root.
type AvatarStore struct {
    Root     string
    BaseURL  string
    MaxBytes int64
}

func NewAvatarStore(root, baseURL string, maxBytes int64) *AvatarStore {
    if maxBytes <= 0 || maxBytes > DefaultMaxBytes {
        maxBytes = DefaultMaxBytes
    }
    return &AvatarStore{Root: root, BaseURL: strings.TrimSuffix(baseURL, "/"), MaxBytes: maxBytes}
}

// Put stores the image read from r as a new avatar object of the caller and
// returns its path, "<user id>/avatar-<version>.<ext>".  Earlier avatars are
// left in place: the caller removes them with Prune once the new URL is
// recorded, or drops the new object with Remove if that fails.  Content over
// MaxBytes or not of an allowed image type is rejected before anything is
// written.
func (s *AvatarStore) Put(ctx context.Context, caller policy.Caller, r io.Reader) (string, error) {
    data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
    if err != nil {
        return "", fmt.Errorf("read avatar: %w", err)
    }
    if int64(len(data)) > s.MaxBytes {
        return "", ErrTooLarge
    }
    mt := mimetype.Detect(data)
    if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
        return "", ErrNotImage
    }
    version := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
    object := path.Join(caller.UserID, "avatar-"+version+mt.Extension())
    if err := policy.WriteAvatar(caller, object); err != nil {
        return "", err
    }
    if err := ctx.Err(); err != nil {
        return "", err
    }
    full := s.fullPath(object)
    if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
        return "", err
    }
    tmp := full + ".tmp"
    if err := os.WriteFile(tmp, data, 0o644); err != nil {
        _ = os.Remove(tmp)
        return "", err
    }
    if err := os.Rename(tmp, full); err != nil {
        _ = os.Remove(tmp)
        return "", err
    }
    return object, nil
}

// Prune removes every avatar object of the caller except keep.
func (s *AvatarStore) Prune(_ context.Context, caller policy.Caller, keep string) error {
    if err := policy.WriteAvatar(caller, keep); err != nil {
        return err
    }
    return s.removeMatching(caller.UserID, path.Base(keep))
}

// Remove deletes one avatar object of the caller.  A missing object is not
// an error.
func (s *AvatarStore) Remove(_ context.Context, caller policy.Caller, object string) error {
    if err := policy.WriteAvatar(caller, object); err != nil {
        return err
    }
    if err := os.Remove(s.fullPath(object)); err != nil && !os.IsNotExist(err) {
        return err
    }
    return nil
}

// Delete removes all avatar objects of the caller.  Deleting a missing
// avatar is not an error.
func (s *AvatarStore) Delete(_ context.Context, caller policy.Caller) error {
    if err := policy.WriteAvatar(caller, path.Join(caller.UserID, "avatar")); err != nil {
        return err
    }
    return s.removeMatching(caller.UserID, "")
}

// PublicURL is the URL under which object is served.
func (s *AvatarStore) PublicURL(object string) string {
    return s.BaseURL + "/" + strings.TrimPrefix(object, "/")
}

func (s *AvatarStore) fullPath(object string) string {
    return filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+object)))
}

// removeMatching deletes the avatar files of userID other than keep.
func (s *AvatarStore) removeMatching(userID, keep string) error {
    matches, err := filepath.Glob(filepath.Join(s.Root, userID, "avatar*"))
    if err != nil {
        return err
    }
    for _, m := range matches {
        if keep != "" && filepath.Base(m) == keep {
            continue
        }
        if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
            return err
        }
    }
    return nil
}
