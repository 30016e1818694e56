package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const modeleParDefaut = "gemini-2.0-flash"

var ErrReponseIllisible = errors.New("assistant: réponse du modèle illisible")

// GeminiGenerateur interroge l'API Gemini pour transformer une description
// libre en lignes de devis.
type GeminiGenerateur struct {
	client *genai.Client
	modele string
}

func NewGeminiGenerateur(ctx context.Context, apiKey, modele string) (*GeminiGenerateur, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: client gemini: %w", err)
	}
	if modele == "" {
		modele = modeleParDefaut
	}
	return &GeminiGenerateur{client: client, modele: modele}, nil
}

const promptDevis = `Tu es l'assistant d'un artisan du bâtiment français (%s).
À partir de la description de travaux ci-dessous, propose un brouillon de devis.
Réponds UNIQUEMENT avec un objet JSON de la forme :
{"objet": "...", "lignes": [{"designation": "...", "quantite": 1, "unite": "u", "prix_unitaire": 0, "taux_tva": 10}]}
Les prix sont en euros HT, réalistes pour le marché français. La TVA est de
10 %% pour la rénovation de logements de plus de deux ans, 20 %% sinon.

Description : %s`

func (g *GeminiGenerateur) Suggerer(ctx context.Context, req SuggestionRequest) (*Suggestion, error) {
	metier := req.Metier
	if metier == "" {
		metier = "tous corps d'état"
	}
	prompt := fmt.Sprintf(promptDevis, metier, req.Description)

	resp, err := g.client.Models.GenerateContent(ctx, g.modele, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: génération: %w", err)
	}

	suggestion, err := parseReponse(resp.Text())
	if err != nil {
		return nil, err
	}
	suggestion.Source = "ia"
	return suggestion, nil
}

// parseReponse tolère les clôtures markdown que les modèles ajoutent parfois
// malgré la consigne JSON.
func parseReponse(texte string) (*Suggestion, error) {
	texte = strings.TrimSpace(texte)
	texte = strings.TrimPrefix(texte, "```json")
	texte = strings.TrimPrefix(texte, "```")
	texte = strings.TrimSuffix(texte, "```")
	texte = strings.TrimSpace(texte)

	var s Suggestion
	if err := json.Unmarshal([]byte(texte), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReponseIllisible, err)
	}
	if len(s.Lignes) == 0 {
		return nil, ErrReponseIllisible
	}
	for i := range s.Lignes {
		if s.Lignes[i].Quantite <= 0 {
			s.Lignes[i].Quantite = 1
		}
		if s.Lignes[i].Unite == "" {
			s.Lignes[i].Unite = "u"
		}
	}
	return &s, nil
}
