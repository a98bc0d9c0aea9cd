package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-publisher/internal/auth"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/transport"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	addEndpoint      = "/cgi-bin/draft/add"
	updateEndpoint   = "/cgi-bin/draft/update"
	getEndpoint      = "/cgi-bin/draft/get"
	deleteEndpoint   = "/cgi-bin/draft/delete"
	batchGetEndpoint = "/cgi-bin/draft/batchget"

	// MaxPageSize is the largest page the platform serves.
	MaxPageSize = 20
)

var (
	ErrNoArticles      = errors.New("drafts: at least one article is required")
	ErrMediaIDRequired = errors.New("drafts: media id is required")
	ErrTitleRequired   = errors.New("drafts: article title is required")
	ErrContentRequired = errors.New("drafts: article content is required")
	ErrThumbRequired   = errors.New("drafts: article thumb media id is required")
)

// Article is one news item inside a draft.
type Article struct {
	Title              string `json:"title"`
	Author             string `json:"author,omitempty"`
	Digest             string `json:"digest,omitempty"`
	Content            string `json:"content"`
	ContentSourceURL   string `json:"content_source_url,omitempty"`
	ThumbMediaID       string `json:"thumb_media_id"`
	ShowCoverPic       int    `json:"show_cover_pic"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
	URL                string `json:"url,omitempty"`
}

// Validate checks the fields the platform rejects when empty.
func (a Article) Validate() error {
	switch {
	case strings.TrimSpace(a.Title) == "":
		return ErrTitleRequired
	case strings.TrimSpace(a.Content) == "":
		return ErrContentRequired
	case strings.TrimSpace(a.ThumbMediaID) == "":
		return ErrThumbRequired
	}
	return nil
}

// Draft is a stored draft and its articles.
type Draft struct {
	MediaID    string
	Articles   []Article
	UpdateTime time.Time
}

// Page is one batchget result.
type Page struct {
	Total  int
	Count  int
	Drafts []Draft
}

// Caller is the transport surface the service needs.
type Caller interface {
	CallAuthorized(ctx context.Context, src auth.Source, req transport.Request, out any) error
}

// Service manages platform drafts.
type Service struct {
	caller      Caller
	credentials auth.Source
	logger      interfaces.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(caller Caller, credentials auth.Source, opts ...Option) *Service {
	s := &Service{caller: caller, credentials: credentials}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logging.Ensure(s.logger)
	return s
}

// Create stores a new draft and returns its media id.
func (s *Service) Create(ctx context.Context, articles []Article) (string, error) {
	if len(articles) == 0 {
		return "", ErrNoArticles
	}
	for i, article := range articles {
		if err := article.Validate(); err != nil {
			return "", fmt.Errorf("article %d: %w", i, err)
		}
	}

	var resp struct {
		MediaID string `json:"media_id"`
	}
	req := transport.Request{
		Endpoint: addEndpoint,
		Body:     map[string]any{"articles": articles},
	}
	if err := s.caller.CallAuthorized(ctx, s.credentials, req, &resp); err != nil {
		return "", err
	}
	if resp.MediaID == "" {
		return "", fmt.Errorf("drafts: create returned no media id")
	}
	s.logger.Info("drafts.created", "media_id", resp.MediaID, "articles", len(articles))
	return resp.MediaID, nil
}

// Update replaces the articles of an existing draft, one call per index.
func (s *Service) Update(ctx context.Context, mediaID string, articles []Article) error {
	if strings.TrimSpace(mediaID) == "" {
		return ErrMediaIDRequired
	}
	if len(articles) == 0 {
		return ErrNoArticles
	}
	for i, article := range articles {
		if err := article.Validate(); err != nil {
			return fmt.Errorf("article %d: %w", i, err)
		}
	}
	for i, article := range articles {
		req := transport.Request{
			Endpoint: updateEndpoint,
			Body: map[string]any{
				"media_id": mediaID,
				"index":    i,
				"articles": article,
			},
		}
		if err := s.caller.CallAuthorized(ctx, s.credentials, req, nil); err != nil {
			return err
		}
	}
	s.logger.Info("drafts.updated", "media_id", mediaID, "articles", len(articles))
	return nil
}

// Get fetches one draft.
func (s *Service) Get(ctx context.Context, mediaID string) (*Draft, error) {
	if strings.TrimSpace(mediaID) == "" {
		return nil, ErrMediaIDRequired
	}
	var resp struct {
		NewsItem   []Article `json:"news_item"`
		UpdateTime int64     `json:"update_time"`
	}
	req := transport.Request{
		Endpoint: getEndpoint,
		Body:     map[string]string{"media_id": mediaID},
	}
	if err := s.caller.CallAuthorized(ctx, s.credentials, req, &resp); err != nil {
		return nil, err
	}
	return &Draft{
		MediaID:    mediaID,
		Articles:   resp.NewsItem,
		UpdateTime: unixTime(resp.UpdateTime),
	}, nil
}

// Delete removes a draft.
func (s *Service) Delete(ctx context.Context, mediaID string) error {
	if strings.TrimSpace(mediaID) == "" {
		return ErrMediaIDRequired
	}
	req := transport.Request{
		Endpoint: deleteEndpoint,
		Body:     map[string]string{"media_id": mediaID},
	}
	if err := s.caller.CallAuthorized(ctx, s.credentials, req, nil); err != nil {
		return err
	}
	s.logger.Info("drafts.deleted", "media_id", mediaID)
	return nil
}

type batchResponse struct {
	TotalCount int `json:"total_count"`
	ItemCount  int `json:"item_count"`
	Item       []struct {
		MediaID string `json:"media_id"`
		Content struct {
			NewsItem []Article `json:"news_item"`
		} `json:"content"`
		UpdateTime int64 `json:"update_time"`
	} `json:"item"`
}

// List returns one page of drafts. Count is clamped to [1, MaxPageSize].
func (s *Service) List(ctx context.Context, offset, count int) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	count = min(max(count, 1), MaxPageSize)

	var resp batchResponse
	req := transport.Request{
		Endpoint: batchGetEndpoint,
		Body: map[string]int{
			"offset":     offset,
			"count":      count,
			"no_content": 0,
		},
	}
	if err := s.caller.CallAuthorized(ctx, s.credentials, req, &resp); err != nil {
		return Page{}, err
	}

	page := Page{Total: resp.TotalCount, Count: resp.ItemCount, Drafts: make([]Draft, 0, len(resp.Item))}
	for _, item := range resp.Item {
		page.Drafts = append(page.Drafts, Draft{
			MediaID:    item.MediaID,
			Articles:   item.Content.NewsItem,
			UpdateTime: unixTime(item.UpdateTime),
		})
	}
	return page, nil
}

// FindByTitle pages through drafts looking for one whose first article has
// the given title. The boolean is false when nothing matches.
func (s *Service) FindByTitle(ctx context.Context, title string) (Draft, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Draft{}, false, nil
	}
	for offset := 0; ; offset += MaxPageSize {
		page, err := s.List(ctx, offset, MaxPageSize)
		if err != nil {
			return Draft{}, false, err
		}
		for _, draft := range page.Drafts {
			if len(draft.Articles) > 0 && strings.TrimSpace(draft.Articles[0].Title) == title {
				return draft, true, nil
			}
		}
		if len(page.Drafts) == 0 || offset+len(page.Drafts) >= page.Total {
			return Draft{}, false, nil
		}
	}
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
