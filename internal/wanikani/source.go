package wanikani

import (
	"context"
	"log/slog"
	"time"

	"github.com/kanjisync/kanjisync/internal/hydration"
	"github.com/kanjisync/kanjisync/internal/subject"
)

// TokenProvider supplies the current API token. It is read on every page so a
// token change takes effect without rebuilding the source.
type TokenProvider interface {
	GetHydrationAPIToken() string
}

// Source adapts Client to the hydration fetch contract. The page cursor is the
// API's next_url.
type Source struct {
	client *Client
	tokens TokenProvider
	logger *slog.Logger
}

func NewSource(client *Client, tokens TokenProvider, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{client: client, tokens: tokens, logger: logger}
}

// FetchSubjectsPage fetches and maps one page. Resources of an object type this
// build does not know are skipped with a warning.
func (s *Source) FetchSubjectsPage(ctx context.Context, since *time.Time, pageCursor string) (*hydration.Page, error) {
	token := s.tokens.GetHydrationAPIToken()
	if token == "" {
		return nil, ErrNoToken
	}

	coll, err := s.client.ListSubjects(ctx, token, since, pageCursor)
	if err != nil {
		return nil, err
	}

	records := make([]subject.Subject, 0, len(coll.Data))
	for _, resource := range coll.Data {
		mapped, err := ToSubject(resource)
		if err != nil {
			s.logger.Warn("skipping subject", "id", resource.ID, "object", resource.Object, "error", err)
			continue
		}
		records = append(records, mapped)
	}

	page := &hydration.Page{Records: records}
	total := coll.TotalCount
	page.TotalCount = &total
	if coll.Pages.NextURL != nil {
		page.NextPageCursor = *coll.Pages.NextURL
	}
	return page, nil
}
