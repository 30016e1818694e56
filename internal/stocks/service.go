package stocks

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrStockNonSuivi    = errors.New("stocks: article sans suivi de stock")
	ErrQuantiteNegative = errors.New("stocks: la quantité résultante serait négative")
)

// Notificateur signale le passage d'un article sous son seuil d'alerte.
// Implémenté par notifications.Service ; nil accepté.
type Notificateur interface {
	StockBas(ctx context.Context, artisanID, articleID int64, designation string, quantite, seuil float64)
}

type Service struct {
	repo   Repository
	notifs Notificateur
}

func NewService(repo Repository, notifs Notificateur) *Service {
	return &Service{repo: repo, notifs: notifs}
}

// alerteSeuil notifie uniquement au franchissement du seuil, pas à chaque
// sortie d'un article déjà en alerte.
func (s *Service) alerteSeuil(ctx context.Context, a *Article, avant, apres float64) {
	if s.notifs == nil || a.SeuilAlerte <= 0 {
		return
	}
	if avant > a.SeuilAlerte && apres <= a.SeuilAlerte {
		s.notifs.StockBas(ctx, a.ArtisanID, a.ID, a.Designation, apres, a.SeuilAlerte)
	}
}

func (s *Service) Get(ctx context.Context, artisanID, id int64) (*Article, error) {
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) List(ctx context.Context, artisanID int64, search string, limit, offset int) ([]Article, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.List(ctx, artisanID, search, limit, offset)
}

func (s *Service) ListEnAlerte(ctx context.Context, artisanID int64) ([]Article, error) {
	return s.repo.ListEnAlerte(ctx, artisanID)
}

func (s *Service) Create(ctx context.Context, artisanID int64, req CreateArticleRequest) (*Article, error) {
	a := Article{
		ArtisanID:     artisanID,
		Reference:     strings.ToUpper(strings.TrimSpace(req.Reference)),
		Designation:   strings.TrimSpace(req.Designation),
		Categorie:     strings.TrimSpace(req.Categorie),
		Metier:        strings.TrimSpace(req.Metier),
		Unite:         strings.TrimSpace(req.Unite),
		PrixAchat:     req.PrixAchat,
		PrixVente:     req.PrixVente,
		TauxTVA:       req.TauxTVA,
		FournisseurID: req.FournisseurID,
		SuiviStock:    req.SuiviStock,
		Quantite:      req.Quantite,
		SeuilAlerte:   req.SeuilAlerte,
	}
	if a.Unite == "" {
		a.Unite = "u"
	}
	if a.TauxTVA == 0 {
		a.TauxTVA = 20
	}
	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Update(ctx context.Context, artisanID, id int64, req UpdateArticleRequest) (*Article, error) {
	existing, err := s.repo.Get(ctx, artisanID, id)
	if err != nil {
		return nil, err
	}
	if req.Reference != nil {
		existing.Reference = strings.ToUpper(strings.TrimSpace(*req.Reference))
	}
	if req.Designation != nil {
		existing.Designation = strings.TrimSpace(*req.Designation)
	}
	if req.Categorie != nil {
		existing.Categorie = strings.TrimSpace(*req.Categorie)
	}
	if req.Metier != nil {
		existing.Metier = strings.TrimSpace(*req.Metier)
	}
	if req.Unite != nil {
		existing.Unite = strings.TrimSpace(*req.Unite)
	}
	if req.PrixAchat != nil {
		existing.PrixAchat = *req.PrixAchat
	}
	if req.PrixVente != nil {
		existing.PrixVente = *req.PrixVente
	}
	if req.TauxTVA != nil {
		existing.TauxTVA = *req.TauxTVA
	}
	if req.FournisseurID != nil {
		existing.FournisseurID = req.FournisseurID
	}
	if req.SuiviStock != nil {
		existing.SuiviStock = *req.SuiviStock
	}
	if req.SeuilAlerte != nil {
		existing.SeuilAlerte = *req.SeuilAlerte
	}
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, artisanID, id)
}

func (s *Service) Delete(ctx context.Context, artisanID, id int64) error {
	return s.repo.Delete(ctx, artisanID, id)
}

// Mouvementer applies a stock movement. An ENTREE adds, a SORTIE subtracts,
// an AJUSTEMENT replaces the current quantity. The resulting quantity is
// never allowed below zero.
func (s *Service) Mouvementer(ctx context.Context, artisanID, articleID int64, req MouvementRequest) (*Article, error) {
	article, err := s.repo.Get(ctx, artisanID, articleID)
	if err != nil {
		return nil, err
	}
	if !article.SuiviStock {
		return nil, ErrStockNonSuivi
	}

	var apres float64
	switch req.Type {
	case MouvementEntree:
		if req.Quantite <= 0 {
			return nil, ErrQuantiteNegative
		}
		apres, err = s.repo.AdjustQuantite(ctx, artisanID, articleID, req.Quantite)
	case MouvementSortie:
		if req.Quantite <= 0 || article.Quantite-req.Quantite < 0 {
			return nil, ErrQuantiteNegative
		}
		apres, err = s.repo.AdjustQuantite(ctx, artisanID, articleID, -req.Quantite)
	case MouvementAjustement:
		if req.Quantite < 0 {
			return nil, ErrQuantiteNegative
		}
		apres = req.Quantite
		err = s.repo.SetQuantite(ctx, artisanID, articleID, req.Quantite)
	default:
		return nil, errors.New("stocks: type de mouvement inconnu")
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordMouvement(ctx, Mouvement{
		ArtisanID:     artisanID,
		ArticleID:     articleID,
		Type:          req.Type,
		Quantite:      req.Quantite,
		QuantiteApres: apres,
		Motif:         req.Motif,
	}); err != nil {
		return nil, err
	}
	s.alerteSeuil(ctx, article, article.Quantite, apres)
	return s.repo.Get(ctx, artisanID, articleID)
}

// Consommer decrements stock for a tracked article, used when a work report
// declares materials. Untracked articles are ignored.
func (s *Service) Consommer(ctx context.Context, artisanID, articleID int64, quantite float64, motif string) error {
	article, err := s.repo.Get(ctx, artisanID, articleID)
	if err != nil {
		return err
	}
	if !article.SuiviStock || quantite <= 0 {
		return nil
	}
	apres, err := s.repo.AdjustQuantite(ctx, artisanID, articleID, -quantite)
	if err != nil {
		return err
	}
	s.alerteSeuil(ctx, article, article.Quantite, apres)
	return s.repo.RecordMouvement(ctx, Mouvement{
		ArtisanID:     artisanID,
		ArticleID:     articleID,
		Type:          MouvementSortie,
		Quantite:      quantite,
		QuantiteApres: apres,
		Motif:         &motif,
	})
}

func (s *Service) Mouvements(ctx context.Context, artisanID, articleID int64, limit int) ([]Mouvement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if _, err := s.repo.Get(ctx, artisanID, articleID); err != nil {
		return nil, err
	}
	return s.repo.ListMouvements(ctx, artisanID, articleID, limit)
}
