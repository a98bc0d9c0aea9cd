package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	publisher "github.com/goliatone/go-publisher"
	"github.com/goliatone/go-publisher/cmd/wxpub/internal/bootstrap"
	"github.com/goliatone/go-publisher/internal/auth"
	"github.com/goliatone/go-publisher/internal/datacube"
	"github.com/goliatone/go-publisher/internal/transport"
	"github.com/goliatone/go-publisher/internal/upload"
)

type stubClient struct {
	uploads   []string
	options   []publisher.UploadOptions
	deleted   []string
	refreshed int
	cached    bool
	dc        *datacube.Client
}

func (s *stubClient) Upload(_ context.Context, path string, opts publisher.UploadOptions) (string, error) {
	s.uploads = append(s.uploads, path)
	s.options = append(s.options, opts)
	return "draft-1", nil
}

func (s *stubClient) UpdateDraft(_ context.Context, _ string, path string, opts publisher.UploadOptions) error {
	s.uploads = append(s.uploads, path)
	s.options = append(s.options, opts)
	return nil
}

func (s *stubClient) DeleteDraft(_ context.Context, mediaID string) error {
	s.deleted = append(s.deleted, mediaID)
	return nil
}

func (s *stubClient) UploadImages(_ context.Context, items []publisher.UploadItem) []publisher.Outcome {
	out := make([]publisher.Outcome, len(items))
	for i, item := range items {
		out[i] = publisher.Outcome{Reference: item.Reference, Entry: upload.Entry{URL: "https://mmbiz.example/" + item.Reference}}
	}
	return out
}

func (s *stubClient) GetDraft(_ context.Context, mediaID string) (*publisher.Draft, error) {
	if mediaID != "draft-1" {
		return nil, errors.New("not found")
	}
	return &publisher.Draft{MediaID: mediaID, Articles: []publisher.Article{{Title: "Hello", Author: "Ann", Digest: "intro"}}}, nil
}

func (s *stubClient) ListDrafts(_ context.Context, offset, count int) (publisher.DraftPage, error) {
	return publisher.DraftPage{
		Total: 3,
		Count: 1,
		Drafts: []publisher.Draft{
			{MediaID: "draft-1", Articles: []publisher.Article{{Title: "Hello"}}},
		},
	}, nil
}

func (s *stubClient) AvailableThemes() []string     { return []string{"default"} }
func (s *stubClient) AvailableCodeThemes() []string { return []string{"vscode"} }

func (s *stubClient) TokenInfo() (publisher.Credential, bool) {
	if !s.cached {
		return publisher.Credential{}, false
	}
	return publisher.Credential{Value: "cached-token-value", ExpiresAt: time.Now().Add(time.Hour)}, true
}

func (s *stubClient) RefreshToken(context.Context) (publisher.Credential, error) {
	s.refreshed++
	return publisher.Credential{Value: "fresh-token-value", ObtainedAt: time.Now(), ExpiresAt: time.Now().Add(2 * time.Hour)}, nil
}

func (s *stubClient) Datacube() *datacube.Client { return s.dc }

type cannedCaller struct {
	endpoints []string
	bodies    []any
	payload   string
}

func (c *cannedCaller) CallAuthorized(_ context.Context, _ auth.Source, req transport.Request, out any) error {
	c.endpoints = append(c.endpoints, req.Endpoint)
	c.bodies = append(c.bodies, req.Body)
	return json.Unmarshal([]byte(c.payload), out)
}

func useStub(t *testing.T, client *stubClient) {
	t.Helper()
	original := appBuilder
	t.Cleanup(func() { appBuilder = original })
	appBuilder = func(opts bootstrap.Options) (*bootstrap.App, error) {
		return bootstrap.Assemble(client, nil, opts.Reporter)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeMarkdown(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(path, []byte("# Hello\n"), 0o644))
	return path
}

func TestPublishCommandRunsHandler(t *testing.T) {
	client := &stubClient{}
	useStub(t, client)
	path := writeMarkdown(t)

	out, err := run(t, "publish", path, "--theme", "lapis", "--hide-cover", "--comments")
	require.NoError(t, err)

	require.Equal(t, []string{path}, client.uploads)
	opts := client.options[0]
	assert.Equal(t, "lapis", opts.Theme)
	assert.False(t, opts.ShowCover)
	assert.True(t, opts.EnableComments)
	assert.Contains(t, out, "draft-1")
}

func TestPublishCommandRejectsNonMarkdown(t *testing.T) {
	client := &stubClient{}
	useStub(t, client)

	_, err := run(t, "publish", "notes.txt")
	require.Error(t, err)
	assert.Empty(t, client.uploads)
}

func TestUpdateCommandJSONOutput(t *testing.T) {
	client := &stubClient{}
	useStub(t, client)
	path := writeMarkdown(t)

	out, err := run(t, "--json", "update", "draft-7", path)
	require.NoError(t, err)

	var view resultView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "draft-7", view.MediaID)
	assert.Equal(t, path, view.Path)
}

func TestDraftsCommands(t *testing.T) {
	client := &stubClient{}
	useStub(t, client)

	out, err := run(t, "drafts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "draft-1")
	assert.Contains(t, out, "1 of 3 drafts")

	out, err = run(t, "drafts", "get", "draft-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "author: Ann")

	_, err = run(t, "drafts", "delete", "draft-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft-1"}, client.deleted)
}

func TestImageCommandPrintsURLs(t *testing.T) {
	useStub(t, &stubClient{})

	out, err := run(t, "image", "a.png", "b.jpg")
	require.NoError(t, err)
	assert.Contains(t, out, "https://mmbiz.example/a.png")
	assert.Contains(t, out, "https://mmbiz.example/b.jpg")
}

func TestThemesCommandNeedsNoCredentials(t *testing.T) {
	original := appBuilder
	t.Cleanup(func() { appBuilder = original })
	appBuilder = func(bootstrap.Options) (*bootstrap.App, error) {
		return nil, errors.New("should not load")
	}

	out, err := run(t, "--json", "themes")
	require.NoError(t, err)

	var listing map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Contains(t, listing["themes"], "lapis")
	assert.Contains(t, listing["code_themes"], "github")
}

func TestTokenCommand(t *testing.T) {
	client := &stubClient{cached: true}
	useStub(t, client)

	out, err := run(t, "token")
	require.NoError(t, err)
	assert.Zero(t, client.refreshed)
	assert.Contains(t, out, "cach****alue")
	assert.NotContains(t, out, "cached-token-value")

	out, err = run(t, "token", "--refresh")
	require.NoError(t, err)
	assert.Equal(t, 1, client.refreshed)
	assert.Contains(t, out, "fres****alue")
}

func TestStatsCommand(t *testing.T) {
	caller := &cannedCaller{payload: `{"list":[{"ref_date":"2024-05-01","msgid":"100_1","detail":{"read_user":42}}]}`}
	useStub(t, &stubClient{dc: datacube.New(caller, nil)})

	out, err := run(t, "stats", "read", "--begin", "2024-05-01", "--end", "2024-05-02")
	require.NoError(t, err)
	assert.Contains(t, out, "100_1")
	assert.Contains(t, out, "42")
	require.Len(t, caller.bodies, 1)
	assert.Equal(t, datacube.Range{Begin: "2024-05-01", End: "2024-05-02"}, caller.bodies[0])
}

func TestStatsCommandValidatesRange(t *testing.T) {
	caller := &cannedCaller{payload: `{"list":[]}`}
	useStub(t, &stubClient{dc: datacube.New(caller, nil)})

	_, err := run(t, "stats", "read", "--begin", "2024-05-03", "--end", "2024-05-01")
	require.ErrorIs(t, err, datacube.ErrRangeInverted)
	assert.Empty(t, caller.endpoints)

	_, err = run(t, "stats", "clicks")
	require.Error(t, err)
}

func TestPreviewCommandWritesPage(t *testing.T) {
	original := appBuilder
	t.Cleanup(func() { appBuilder = original })
	appBuilder = func(bootstrap.Options) (*bootstrap.App, error) {
		return nil, errors.New("should not load")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(src, []byte("---\ntitle: Preview Me\n---\n# Heading\n\n![x](img/a.png)\n"), 0o644))
	dest := filepath.Join(dir, "post.html")

	out, err := run(t, "preview", src, "--theme", "lapis", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "theme lapis")
	assert.Contains(t, out, "1 local images")

	page, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Preview Me</title>")
	assert.Contains(t, string(page), "img/a.png")
}
