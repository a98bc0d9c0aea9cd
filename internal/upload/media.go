package upload

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/goliatone/go-publisher/internal/transport"
)

const (
	imageEndpoint    = "/cgi-bin/media/uploadimg"
	materialEndpoint = "/cgi-bin/material/add_material"

	// MaxImageSize is the platform limit for article body images.
	MaxImageSize = 1 << 20
	// MaxMaterialSize is the platform limit for permanent image material.
	MaxMaterialSize = 10 << 20
)

// Payload is the data handed to an Uploader.
type Payload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Remote is what the platform returned for an upload.
type Remote struct {
	URL     string
	MediaID string
}

// Uploader performs one platform upload with an already valid credential.
// Validate runs before any network work and its failures are terminal.
type Uploader interface {
	Kind() string
	Validate(p Payload) error
	Upload(ctx context.Context, credential string, p Payload) (Remote, error)
}

// Caller is the transport surface uploaders need.
type Caller interface {
	Call(ctx context.Context, token string, req transport.Request, out any) error
}

// ImageUploader sends article body images to uploadimg. The platform only
// accepts JPEG and PNG up to 1MB there.
type ImageUploader struct {
	caller Caller
}

func NewImageUploader(caller Caller) *ImageUploader {
	return &ImageUploader{caller: caller}
}

func (u *ImageUploader) Kind() string { return "image" }

func (u *ImageUploader) Validate(p Payload) error {
	return checkPayload(p, MaxImageSize, "image/jpeg", "image/png")
}

func (u *ImageUploader) Upload(ctx context.Context, credential string, p Payload) (Remote, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := u.caller.Call(ctx, credential, transport.Request{
		Method:   http.MethodPost,
		Endpoint: imageEndpoint,
		File:     fileOf(p),
	}, &out)
	if err != nil {
		return Remote{}, err
	}
	if out.URL == "" {
		return Remote{}, fmt.Errorf("%s: response without url", imageEndpoint)
	}
	return Remote{URL: out.URL}, nil
}

// MaterialUploader stores permanent image material, used for covers.
type MaterialUploader struct {
	caller Caller
}

func NewMaterialUploader(caller Caller) *MaterialUploader {
	return &MaterialUploader{caller: caller}
}

func (u *MaterialUploader) Kind() string { return "material" }

func (u *MaterialUploader) Validate(p Payload) error {
	return checkPayload(p, MaxMaterialSize, "image/jpeg", "image/png", "image/gif", "image/bmp")
}

func (u *MaterialUploader) Upload(ctx context.Context, credential string, p Payload) (Remote, error) {
	var out struct {
		MediaID string `json:"media_id"`
		URL     string `json:"url"`
	}
	err := u.caller.Call(ctx, credential, transport.Request{
		Method:   http.MethodPost,
		Endpoint: materialEndpoint,
		Query:    url.Values{"type": {"image"}},
		File:     fileOf(p),
	}, &out)
	if err != nil {
		return Remote{}, err
	}
	if out.MediaID == "" {
		return Remote{}, fmt.Errorf("%s: response without media_id", materialEndpoint)
	}
	return Remote{URL: out.URL, MediaID: out.MediaID}, nil
}

func fileOf(p Payload) *transport.File {
	return &transport.File{
		Field:       "media",
		Name:        p.Name,
		ContentType: p.ContentType,
		Data:        p.Data,
	}
}

func checkPayload(p Payload, limit int, allowed ...string) error {
	if len(p.Data) == 0 {
		return invalidContent(p.Name, "empty payload")
	}
	if len(p.Data) > limit {
		return invalidContent(p.Name, fmt.Sprintf("%d bytes exceeds the %d byte limit", len(p.Data), limit))
	}
	for _, ct := range allowed {
		if p.ContentType == ct {
			return nil
		}
	}
	return invalidContent(p.Name, fmt.Sprintf("unsupported content type %q", p.ContentType))
}

// sniff detects the payload type from its bytes, ignoring the file extension.
func sniff(name string, data []byte) Payload {
	return Payload{
		Name:        filepath.Base(name),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
}
