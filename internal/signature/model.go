package signature

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Etape est l'étape courante du parcours public de signature.
type Etape string

const (
	EtapeInfo      Etape = "info"
	EtapeSMS       Etape = "sms"
	EtapeSignature Etape = "signature"
	EtapeTerminee  Etape = "terminee"
)

// TTLToken is how long a signature link stays usable after the quote is sent.
const TTLToken = 72 * time.Hour

var (
	ErrLienInconnu        = errors.New("signature: lien inconnu")
	ErrLienExpire         = errors.New("signature: lien expiré")
	ErrDejaSigne          = errors.New("signature: devis déjà signé")
	ErrEtapeInvalide      = errors.New("signature: étape invalide")
	ErrTelephoneInvalide  = errors.New("signature: numéro de mobile français attendu")
	ErrCodeInvalide       = errors.New("signature: code incorrect")
	ErrTropDeTentatives   = errors.New("signature: trop de tentatives, demandez un nouveau code")
	ErrSignatureManquante = errors.New("signature: tracé de signature manquant")
)

// Token is one signature link bound to a quote.
type Token struct {
	Token      string     `json:"token"`
	ArtisanID  int64      `json:"-"`
	DevisID    int64      `json:"devis_id"`
	Etape      Etape      `json:"etape"`
	Signataire *string    `json:"signataire,omitempty"`
	Telephone  *string    `json:"-"`
	Email      *string    `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"-"`
}

// Preuve est ce que l'on conserve au moment de la signature : qui a signé,
// le tracé dessiné et l'adresse d'où il est parti.
type Preuve struct {
	Email string
	Image string
	IP    string
	Quand time.Time
}

// Expire reports whether the link outlived its validity window.
func (t Token) Expire(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type InfoRequest struct {
	Nom       string `json:"nom" validate:"required,max=150"`
	Telephone string `json:"telephone" validate:"required"`
}

type CodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type SignerRequest struct {
	// Signature est le tracé dessiné par le client, en data URL PNG.
	Signature string `json:"signature" validate:"required"`
	Email     string `json:"email" validate:"required,email,max=254"`
}

const prefixeImagePNG = "data:image/png;base64,"

// ValiderImageSignature refuse tout sauf un data URL PNG non vide.
func ValiderImageSignature(raw string) (string, error) {
	image := strings.TrimSpace(raw)
	if !strings.HasPrefix(image, prefixeImagePNG) || len(image) == len(prefixeImagePNG) {
		return "", ErrSignatureManquante
	}
	return image, nil
}

// mobiles français uniquement : le code part par SMS.
var telephoneRe = regexp.MustCompile(`^(?:\+33|0)[67]\d{8}$`)

// NormaliserTelephone strips the usual separators and validates a French
// mobile number, returning it in +33 form.
func NormaliserTelephone(raw string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", ".", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	if !telephoneRe.MatchString(cleaned) {
		return "", ErrTelephoneInvalide
	}
	if strings.HasPrefix(cleaned, "0") {
		cleaned = "+33" + cleaned[1:]
	}
	return cleaned, nil
}
