// Package imgmeta reads image metadata used to annotate conflicting files.
package imgmeta

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/sdejongh/copypix/pkg/storage"
)

// exifTimeLayout is the EXIF date/time format
const exifTimeLayout = "2006:01:02 15:04:05"

// Date tags in order of preference
var captureTags = []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}

// CaptureTime returns when the image at path was taken, from its EXIF
// data. ok is false when the file carries no usable date.
func CaptureTime(ctx context.Context, backend storage.Backend, path string) (t time.Time, ok bool, err error) {
	rc, err := backend.Open(ctx, path)
	if err != nil {
		return time.Time{}, false, err
	}
	defer rc.Close()

	rs, isSeeker := rc.(io.ReadSeeker)
	if !isSeeker {
		data, err := io.ReadAll(rc)
		if err != nil {
			return time.Time{}, false, err
		}
		rs = bytes.NewReader(data)
	}

	return captureTime(rs)
}

func captureTime(rs io.ReadSeeker) (t time.Time, ok bool, err error) {
	// The exif parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			t, ok, err = time.Time{}, false, fmt.Errorf("failed to parse exif: %v", r)
		}
	}()

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return time.Time{}, false, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	values := make(map[string]string, len(captureTags))
	for _, tag := range tags {
		if _, seen := values[tag.TagName]; seen {
			continue
		}
		if s, isString := tag.Value.(string); isString {
			values[tag.TagName] = s
		} else {
			values[tag.TagName] = tag.Formatted
		}
	}

	for _, name := range captureTags {
		if parsed, valid := ParseExifTime(values[name]); valid {
			return parsed, true, nil
		}
	}
	return time.Time{}, false, nil
}

// ParseExifTime parses an EXIF date/time string in local time
func ParseExifTime(s string) (time.Time, bool) {
	s = strings.Trim(strings.TrimSpace(s), "\"\x00")
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(exifTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func isNoExif(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
