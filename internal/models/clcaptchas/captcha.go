package clcaptchas

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mojocn/base64Captcha"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/wasiahamad/Portfolio/internal/clredis"
)

var (
	ErrMissing   = errors.New("CAPTCHA manquant")
	ErrIncorrect = errors.New("CAPTCHA incorrect")
)

type Captchas struct {
	store      base64Captcha.Store
	driver     base64Captcha.Driver
	production bool
}

// New utilise Redis si un client est fourni, sinon le store mémoire
func New(redisClient *redis.Client, production bool) *Captchas {
	var store base64Captcha.Store
	if redisClient != nil {
		store = clredis.NewCaptchaStore(redisClient)
	} else {
		store = base64Captcha.NewMemoryStore(base64Captcha.GCLimitNumber, base64Captcha.Expiration)
	}

	driver := base64Captcha.NewDriverMath(
		80,  // hauteur
		240, // largeur
		6,   // nombre d'opérations à afficher
		base64Captcha.OptionShowHollowLine,
		nil,
		nil,
		nil,
	)

	return &Captchas{
		store:      store,
		driver:     driver,
		production: production,
	}
}

func (cap *Captchas) GenerateCaptcha() (gin.H, error) {
	captcha := base64Captcha.NewCaptcha(cap.driver, cap.store)

	id, b64s, answer, err := captcha.Generate()
	if err != nil {
		return nil, errors.New("erreur lors de la génération du CAPTCHA")
	}

	data := gin.H{
		"captcha_id": id,
		"image":      b64s,
	}

	if !cap.production {
		log.Debug().Str("captcha_id", id).Str("answer", answer).Msg("CAPTCHA généré")
		data["answer"] = answer
	}

	return data, nil
}

func (cap *Captchas) VerifyCaptcha(captchaID string, captchaAnswer string) error {
	captchaID = strings.TrimSpace(captchaID)
	captchaAnswer = strings.TrimSpace(captchaAnswer)

	if captchaID == "" || captchaAnswer == "" {
		return ErrMissing
	}

	if !cap.store.Verify(captchaID, captchaAnswer, true) {
		return ErrIncorrect
	}
	return nil
}

func (cap *Captchas) CaptchaHandler(c *gin.Context) {
	data, err := cap.GenerateCaptcha()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}
