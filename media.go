package contentsite

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

const jpegQuality = 80

// renditionWidths are the widths the media route resizes to. Other widths
// are rejected so the rendition cache stays bounded.
var renditionWidths = []int{320, 640, 768, 1024, 1280, 1920}

// renditionCache keeps resized media in memory, keyed by file, width and
// modification time so a replaced upload gets new renditions.
type renditionCache struct {
	mu    sync.RWMutex
	items map[renditionKey][]byte
	group singleflight.Group
}

type renditionKey struct {
	name  string
	width int
	mod   time.Time
}

func newRenditionCache() *renditionCache {
	return &renditionCache{items: make(map[renditionKey][]byte)}
}

func (rc *renditionCache) get(key renditionKey, build func() ([]byte, error)) ([]byte, error) {
	rc.mu.RLock()
	b, ok := rc.items[key]
	rc.mu.RUnlock()
	if ok {
		return b, nil
	}
	v, err, _ := rc.group.Do(fmt.Sprintf("%s@%d@%d", key.name, key.width, key.mod.UnixNano()), func() (any, error) {
		b, err := build()
		if err != nil {
			return nil, err
		}
		rc.mu.Lock()
		rc.items[key] = b
		rc.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// handleMedia serves uploaded media. With ?w= it serves a JPEG rendition no
// wider than w.
func (a *App) handleMedia(c echo.Context) error {
	name := c.Param("filename")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return echo.ErrNotFound
	}
	path := filepath.Join(a.Config.MediaDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return echo.ErrNotFound
	}
	raw := c.QueryParam("w")
	if raw == "" {
		return c.File(path)
	}
	width, err := strconv.Atoi(raw)
	if err != nil || !slices.Contains(renditionWidths, width) {
		return c.String(http.StatusBadRequest, "Unsupported width")
	}
	data, err := a.renditions.get(renditionKey{name: name, width: width, mod: info.ModTime()}, func() ([]byte, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", name, err)
		}
		return resizeJPEG(img, width)
	})
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

// resizeJPEG scales img down to maxWidth, keeping its aspect ratio, and
// encodes it as JPEG. Narrower images are only re-encoded.
func resizeJPEG(img image.Image, maxWidth int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxWidth {
		newH := max(h*maxWidth/w, 1)
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
