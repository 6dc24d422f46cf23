// Package archive keeps a server-side copy of relayed screenshots and a
// JPEG thumbnail of each, off the relay path.
package archive

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/weiawesome/camlink/internal/config"
	pkglog "github.com/weiawesome/camlink/pkg/log"
	"github.com/weiawesome/camlink/pkg/storage"
)

const (
	keyPrefix   = "screenshots/"
	thumbSuffix = "_thumb.jpg"
)

// ErrUndecodable is returned for payloads that are not base64 or data URLs.
var ErrUndecodable = errors.New("screenshot payload is not base64 encoded")

// Screenshot is one relayed capture.
type Screenshot struct {
	RoomCode   string
	ClientID   string
	ImageData  string
	CapturedAt time.Time
}

// Entry describes an archived screenshot.
type Entry struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	ClientID     string    `json:"clientId"`
	Size         int64     `json:"size"`
	CapturedAt   time.Time `json:"capturedAt"`
}

// Sink receives screenshots and room closures from the relay. Calls must
// not block.
type Sink interface {
	Submit(ctx context.Context, shot Screenshot)
	RoomClosed(ctx context.Context, code string)
}

// Disabled is a Sink that keeps nothing.
var Disabled Sink = disabled{}

type disabled struct{}

func (disabled) Submit(context.Context, Screenshot) {}
func (disabled) RoomClosed(context.Context, string) {}

type job struct {
	shot  *Screenshot
	purge string
}

// Archiver stores screenshots through a storage backend from a single
// worker goroutine.
type Archiver struct {
	store        storage.Storage
	queue        chan job
	thumbWidth   int
	thumbHeight  int
	jpegQuality  int
	urlExpiry    time.Duration
	purgeOnClose bool
}

// New creates an Archiver from the archive config.
func New(store storage.Storage, cfg config.ArchiveConfig) *Archiver {
	a := &Archiver{
		store:        store,
		queue:        make(chan job, max(cfg.QueueSize, 1)),
		thumbWidth:   cfg.ThumbnailWidth,
		thumbHeight:  cfg.ThumbnailHeight,
		jpegQuality:  cfg.JPEGQuality,
		urlExpiry:    cfg.URLExpiry,
		purgeOnClose: cfg.PurgeOnClose,
	}
	if a.thumbWidth <= 0 {
		a.thumbWidth = 320
	}
	if a.thumbHeight <= 0 {
		a.thumbHeight = 240
	}
	if a.jpegQuality <= 0 || a.jpegQuality > 100 {
		a.jpegQuality = 80
	}
	if a.urlExpiry <= 0 {
		a.urlExpiry = 15 * time.Minute
	}
	return a
}

// Submit queues a screenshot. A full queue drops it.
func (a *Archiver) Submit(ctx context.Context, shot Screenshot) {
	select {
	case a.queue <- job{shot: &shot}:
	default:
		l := pkglog.Ctx(ctx)
		l.Warn().Str(pkglog.FieldRoomCode, shot.RoomCode).Msg("archive queue full, dropping screenshot")
	}
}

// RoomClosed queues removal of the room's screenshots when purge_on_close
// is set.
func (a *Archiver) RoomClosed(ctx context.Context, code string) {
	if !a.purgeOnClose {
		return
	}
	select {
	case a.queue <- job{purge: code}:
	default:
		l := pkglog.Ctx(ctx)
		l.Warn().Str(pkglog.FieldRoomCode, code).Msg("archive queue full, skipping purge")
	}
}

// Run processes queued jobs until ctx is done.
func (a *Archiver) Run(ctx context.Context) error {
	l := pkglog.L()
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-a.queue:
			if j.shot != nil {
				if _, err := a.Store(ctx, *j.shot); err != nil {
					l.Warn().Err(err).Str(pkglog.FieldRoomCode, j.shot.RoomCode).Msg("failed to archive screenshot")
				}
				continue
			}
			if err := a.Purge(ctx, j.purge); err != nil {
				l.Warn().Err(err).Str(pkglog.FieldRoomCode, j.purge).Msg("failed to purge screenshots")
			}
		}
	}
}

// Store writes the original image and, when it decodes, a thumbnail. It
// returns the key of the original.
func (a *Archiver) Store(ctx context.Context, shot Screenshot) (string, error) {
	l := pkglog.L()

	data, contentType, err := decodeImageData(shot.ImageData)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s%s/%s/%d", keyPrefix, shot.RoomCode, shot.ClientID, shot.CapturedAt.UnixMilli())
	key := base + "." + extensionFor(contentType)
	if err := a.store.Write(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("write original: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		l.Debug().Err(err).Str("key", key).Msg("screenshot not decodable, skipping thumbnail")
		return key, nil
	}

	thumb := imaging.Fit(img, a.thumbWidth, a.thumbHeight, imaging.Lanczos)
	var buf bytes.Buffer
	err = imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(a.jpegQuality))
	if err == nil {
		err = a.store.Write(ctx, base+thumbSuffix, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "image/jpeg")
	}
	if err != nil {
		// a decodable screenshot is listed only together with its thumbnail
		if derr := a.store.Delete(ctx, key); derr != nil {
			l.Warn().Err(derr).Str("key", key).Msg("failed to remove screenshot after thumbnail failure")
		}
		return "", fmt.Errorf("write thumbnail: %w", err)
	}

	l.Debug().Str("key", key).Int("bytes", len(data)).Msg("screenshot archived")
	return key, nil
}

// List returns the archived screenshots of a room, oldest first.
func (a *Archiver) List(ctx context.Context, code string) ([]Entry, error) {
	files, err := a.store.List(ctx, keyPrefix+code+"/")
	if err != nil {
		return nil, err
	}

	thumbs := make(map[string]bool)
	for _, f := range files {
		if strings.HasSuffix(f.Key, thumbSuffix) {
			thumbs[strings.TrimSuffix(f.Key, thumbSuffix)] = true
		}
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if strings.HasSuffix(f.Key, thumbSuffix) {
			continue
		}
		url, err := a.store.GetURL(ctx, f.Key, a.urlExpiry)
		if err != nil {
			return nil, err
		}

		e := Entry{
			Key:        f.Key,
			URL:        url,
			ClientID:   path.Base(path.Dir(f.Key)),
			Size:       f.Size,
			CapturedAt: capturedAt(f),
		}
		base := strings.TrimSuffix(f.Key, path.Ext(f.Key))
		if thumbs[base] {
			if e.ThumbnailURL, err = a.store.GetURL(ctx, base+thumbSuffix, a.urlExpiry); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CapturedAt.Equal(entries[j].CapturedAt) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].CapturedAt.Before(entries[j].CapturedAt)
	})
	return entries, nil
}

// Open returns the stored bytes of an archived screenshot or thumbnail.
func (a *Archiver) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !strings.HasPrefix(key, keyPrefix) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return a.store.Read(ctx, key)
}

// Purge deletes every screenshot of a room.
func (a *Archiver) Purge(ctx context.Context, code string) error {
	if code == "" {
		return nil
	}
	return a.store.DeletePrefix(ctx, keyPrefix+code+"/")
}

// decodeImageData accepts "data:<mime>;base64,<payload>" or bare base64.
func decodeImageData(s string) ([]byte, string, error) {
	contentType := ""
	payload := strings.TrimSpace(s)

	if strings.HasPrefix(payload, "data:") {
		meta, body, ok := strings.Cut(payload[len("data:"):], ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, "", ErrUndecodable
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = body
	}
	if payload == "" {
		return nil, "", ErrUndecodable
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, "", ErrUndecodable
		}
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}

// capturedAt reads the unix-millisecond file name, falling back to the
// modification time.
func capturedAt(f storage.FileInfo) time.Time {
	name := path.Base(f.Key)
	name = strings.TrimSuffix(name, path.Ext(name))
	if ms, err := strconv.ParseInt(name, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return f.LastModified
}
