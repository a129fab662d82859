package handler

import (
    "bytes"
    "context"
    "errors"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-reservation/internal/policy"
    "github.com/iliyamo/hotel-reservation/internal/storage"
)

var (
    pngAvatar = []byte{
        0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
        0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
        0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
        0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
        0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
        0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
    }
    gifAvatar = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")
)

// flakyProfiles fails SetAvatar while failAvatar is set.
type flakyProfiles struct {
    memProfiles
    failAvatar bool
}

func (f *flakyProfiles) SetAvatar(ctx context.Context, caller policy.Caller, id string, url *string) error {
    if f.failAvatar {
        return errors.New("connection reset by peer")
    }
    return f.memProfiles.SetAvatar(ctx, caller, id, url)
}

type avatarFixture struct {
    root     string
    profiles *flakyProfiles
    e        *echo.Echo
}

func newAvatarFixture(t *testing.T, maxBytes int64) *avatarFixture {
    f := &avatarFixture{
        root:     t.TempDir(),
        profiles: &flakyProfiles{memProfiles: memProfiles{"user-1": {ID: "user-1", Name: "Ana", Email: "ana@example.com"}}},
    }
    h := NewProfileHandler(f.profiles, storage.NewAvatarStore(f.root, "/avatars", maxBytes), nil)
    f.e = echo.New()
    f.e.PUT("/v1/profile/avatar", h.UploadAvatar, as(customer))
    f.e.DELETE("/v1/profile/avatar", h.DeleteAvatar, as(customer))
    return f
}

func (f *avatarFixture) upload(t *testing.T, field string, content []byte) *httptest.ResponseRecorder {
    var buf bytes.Buffer
    mw := multipart.NewWriter(&buf)
    part, err := mw.CreateFormFile(field, "avatar.bin")
    require.NoError(t, err)
    _, err = part.Write(content)
    require.NoError(t, err)
    require.NoError(t, mw.Close())

    req := httptest.NewRequest(http.MethodPut, "/v1/profile/avatar", &buf)
    req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
    rec := httptest.NewRecorder()
    f.e.ServeHTTP(rec, req)
    return rec
}

func (f *avatarFixture) avatarURL() string {
    if u := f.profiles.memProfiles["user-1"].AvatarURL; u != nil {
        return *u
    }
    return ""
}

// fileFor maps a public avatar URL back to the file under root.
func (f *avatarFixture) fileFor(url string) string {
    return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(url, "/avatars/")))
}

func (f *avatarFixture) files(t *testing.T) []string {
    matches, err := filepath.Glob(filepath.Join(f.root, "user-1", "avatar*"))
    require.NoError(t, err)
    return matches
}

func TestUploadAvatarSetsURL(t *testing.T) {
    f := newAvatarFixture(t, 0)

    rec := f.upload(t, "file", pngAvatar)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    url := decode(t, rec)["avatar_url"].(string)
    assert.True(t, strings.HasPrefix(url, "/avatars/user-1/avatar-"))
    assert.True(t, strings.HasSuffix(url, ".png"))
    assert.Equal(t, url, f.avatarURL())
    assert.FileExists(t, f.fileFor(url))
}

func TestUploadAvatarReplacesPrevious(t *testing.T) {
    f := newAvatarFixture(t, 0)
    require.Equal(t, http.StatusOK, f.upload(t, "file", pngAvatar).Code)
    first := f.avatarURL()

    require.Equal(t, http.StatusOK, f.upload(t, "file", gifAvatar).Code)
    second := f.avatarURL()
    assert.NotEqual(t, first, second)
    assert.FileExists(t, f.fileFor(second))
    assert.NoFileExists(t, f.fileFor(first))
    assert.Len(t, f.files(t), 1)
}

func TestUploadAvatarProfileFailureKeepsPrevious(t *testing.T) {
    f := newAvatarFixture(t, 0)
    require.Equal(t, http.StatusOK, f.upload(t, "file", pngAvatar).Code)
    before := f.avatarURL()

    f.profiles.failAvatar = true
    rec := f.upload(t, "file", gifAvatar)
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.NotContains(t, rec.Body.String(), "connection reset")

    assert.Equal(t, before, f.avatarURL())
    assert.FileExists(t, f.fileFor(before))
    assert.Equal(t, []string{f.fileFor(before)}, f.files(t))
}

func TestUploadAvatarTooLarge(t *testing.T) {
    f := newAvatarFixture(t, 32)
    rec := f.upload(t, "file", pngAvatar)
    assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
    assert.Empty(t, f.files(t))
    assert.Empty(t, f.avatarURL())
}

func TestUploadAvatarRejections(t *testing.T) {
    f := newAvatarFixture(t, 0)

    rec := f.upload(t, "file", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
    assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

    rec = f.upload(t, "file", []byte("%PDF-1.4 not a picture"))
    assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

    rec = f.upload(t, "photo", gifAvatar)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "file", decode(t, rec)["field"])

    assert.Empty(t, f.files(t))
    assert.Empty(t, f.avatarURL())
}

func TestDeleteAvatar(t *testing.T) {
    f := newAvatarFixture(t, 0)
    require.Equal(t, http.StatusOK, f.upload(t, "file", pngAvatar).Code)

    rec := send(f.e, http.MethodDelete, "/v1/profile/avatar", "")
    assert.Equal(t, http.StatusNoContent, rec.Code)
    assert.Nil(t, f.profiles.memProfiles["user-1"].AvatarURL)
    assert.Empty(t, f.files(t))
}

func TestDeleteAvatarProfileFailureKeepsFile(t *testing.T) {
    f := newAvatarFixture(t, 0)
    require.Equal(t, http.StatusOK, f.upload(t, "file", pngAvatar).Code)
    url := f.avatarURL()

    f.profiles.failAvatar = true
    rec := send(f.e, http.MethodDelete, "/v1/profile/avatar", "")
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.Equal(t, url, f.avatarURL())
    _, err := os.Stat(f.fileFor(url))
    assert.NoError(t, err)
}

