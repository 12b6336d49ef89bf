package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/disintegration/imaging"
)

// ThumbSize bounds both sides of a generated thumbnail.
const ThumbSize = 100

var ErrUnsupportedImage = errors.New("unsupported image format")

var imageFormats = map[imaging.Format]string{
	imaging.JPEG: "jpeg",
	imaging.PNG:  "png",
	imaging.GIF:  "gif",
}

// Thumbnail shrinks an image to fit within ThumbSize x ThumbSize, keeping its
// aspect ratio and format. Images already small enough are not enlarged.
// For "photos/me.jpg" the thumbnail is named "me-thumb.jpeg".
func Thumbnail(data []byte, name string) ([]byte, string, string, error) {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		format = imaging.JPEG
	}
	sub, ok := imageFormats[format]
	if !ok {
		return nil, "", "", fmt.Errorf("%s: %w", name, ErrUnsupportedImage)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", "", fmt.Errorf("decode %s: %w", name, err)
	}
	thumb := imaging.Fit(img, ThumbSize, ThumbSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format); err != nil {
		return nil, "", "", fmt.Errorf("encode thumbnail: %w", err)
	}

	base := path.Base(name)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return buf.Bytes(), base + "-thumb." + sub, "image/" + sub, nil
}

// SaveWithThumb stores an image upload and its thumbnail under prefix and
// returns both keys.
func SaveWithThumb(ctx context.Context, s Storage, prefix string, u Upload) (string, string, error) {
	thumbData, thumbName, thumbType, err := Thumbnail(u.Data, u.Filename)
	if err != nil {
		return "", "", err
	}
	imageKey, err := Save(ctx, s, prefix, u)
	if err != nil {
		return "", "", err
	}
	thumbKey, err := Save(ctx, s, prefix, Upload{Filename: thumbName, ContentType: thumbType, Data: thumbData})
	if err != nil {
		_ = DeleteAll(ctx, s, imageKey)
		return "", "", err
	}
	return imageKey, thumbKey, nil
}
