package assistant

import (
	"context"
	"log/slog"

	"github.com/artisan-erp/artisan-erp/internal/stocks"
)

// Generateur produit un brouillon de devis. Implémenté par GeminiGenerateur.
type Generateur interface {
	Suggerer(ctx context.Context, req SuggestionRequest) (*Suggestion, error)
}

// Articles donne accès au catalogue de l'artisan pour les suggestions.
// Implémenté par stocks.Repository ; nil accepté.
type Articles interface {
	ListAll(ctx context.Context, artisanID int64) ([]stocks.Article, error)
}

// Service tente l'IA quand elle est configurée et retombe toujours sur les
// articles de l'artisan puis sur le catalogue interne : l'assistant ne
// renvoie jamais d'erreur au client pour un problème d'API externe.
type Service struct {
	logger   *slog.Logger
	gen      Generateur
	articles Articles
}

// NewService accepts a nil generator and a nil article source: suggestions
// then come from the built-in catalog only.
func NewService(logger *slog.Logger, gen Generateur, articles Articles) *Service {
	return &Service{logger: logger, gen: gen, articles: articles}
}

func (s *Service) Suggerer(ctx context.Context, artisanID int64, req SuggestionRequest) (*Suggestion, error) {
	if s.gen != nil {
		suggestion, err := s.gen.Suggerer(ctx, req)
		if err == nil {
			return suggestion, nil
		}
		s.logger.Warn("suggestion IA indisponible, repli sur le catalogue", slog.Any("error", err))
	}
	if s.articles != nil {
		list, err := s.articles.ListAll(ctx, artisanID)
		if err != nil {
			s.logger.Warn("catalogue articles illisible, repli sur les tarifs types", slog.Any("error", err))
		} else if suggestion := SuggererDepuisArticles(req, list); suggestion != nil {
			return suggestion, nil
		}
	}
	return SuggererDepuisCatalogue(req), nil
}
