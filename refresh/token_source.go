package refresh

import (
	"context"

	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/tokens"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*storeTokenSource)(nil)

type storeTokenSource struct {
	ctx       context.Context
	store     tokens.Store
	refresher *Refresher
}

// TokenSource yields the stored access token, falling back to a refresh when
// none is stored. The returned source is bound to ctx, as with
// oauth2.Config.TokenSource.
func TokenSource(ctx context.Context, store tokens.Store, refresher *Refresher) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: store, refresher: refresher}
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	if access, ok := s.store.Get(s.ctx, tokens.Access); ok {
		return Bearer(access), nil
	}
	access, err := s.refresher.Refresh(s.ctx)
	if errors.Is(err, errors.ErrRefreshSuperseded) {
		if current, ok := s.store.Get(s.ctx, tokens.Access); ok {
			return Bearer(current), nil
		}
	}
	if err != nil {
		return nil, err
	}
	return Bearer(access), nil
}

// Bearer wraps a raw access token for use with (*oauth2.Token).SetAuthHeader.
func Bearer(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
}
