package extract

import (
	"context"
	"time"

	"github.com/deepfetch/deepfetch/internal/fetch"
	"github.com/deepfetch/deepfetch/internal/model"
)

// Service composes a page source with the extractor for the single-page
// extraction path. The source may be the static fetcher or the headless
// renderer; the extraction logic is shared either way.
type Service struct {
	source    fetch.Source
	extractor *Extractor
	rendered  bool
}

// NewService creates a Service. rendered must be true when the source
// produces browser-rendered HTML, so the text-block pass can compensate
// for framework-duplicated markup.
func NewService(source fetch.Source, extractor *Extractor, rendered bool) *Service {
	return &Service{source: source, extractor: extractor, rendered: rendered}
}

// ExtractPage fetches one URL and returns its caller-facing extraction
// result. JSON responses short-circuit markup extraction and are
// returned as a decoded payload.
func (s *Service) ExtractPage(ctx context.Context, pageURL string) (*model.PageExtract, error) {
	res, err := s.source.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if res.IsJSON() {
		return &model.PageExtract{
			Type:      "json",
			URL:       pageURL,
			JSON:      res.JSON,
			FetchedAt: time.Now().UTC(),
		}, nil
	}

	page, err := s.extractor.ExtractSingle(res.HTML, pageURL, s.rendered)
	if err != nil {
		return nil, err
	}

	return &model.PageExtract{
		Type:          "html",
		URL:           pageURL,
		Title:         page.Title,
		TextContent:   page.TextBlocks,
		Tables:        page.Tables,
		DownloadLinks: page.DownloadLinks,
		EmbeddedData:  page.EmbeddedData,
		FetchedAt:     time.Now().UTC(),
	}, nil
}
