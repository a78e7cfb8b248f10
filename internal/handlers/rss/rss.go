package handlers_rss

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wasiahamad/Portfolio/internal/models/clconfig"
	"github.com/wasiahamad/Portfolio/internal/models/clcontent"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
	"github.com/wasiahamad/Portfolio/internal/models/clrss"
	stripmd "github.com/writeas/go-strip-markdown"
)

const maxItems = 20

type RSSHandler struct {
	repo    *clcontent.Repository[clcontent.Blog]
	site    clconfig.SiteConfig
	version string
}

func NewRSSHandler(repo *clcontent.Repository[clcontent.Blog], site clconfig.SiteConfig, version string) *RSSHandler {
	return &RSSHandler{repo: repo, site: site, version: version}
}

// Feed génère le flux RSS des blogs publiés, filtré par catégorie si /rss.xml/:category
func (h *RSSHandler) Feed(c *gin.Context) {
	blogs, err := h.repo.List(c.Request.Context())
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Msg("Erreur récupération blogs")
		c.XML(http.StatusInternalServerError, gin.H{"error": "Erreur récupération blogs"})
		return
	}

	// la catégorie de l'url est comparée sous forme de slug
	category := clcontent.Slugify(c.Param("category"))
	filtered := blogs[:0]
	for _, b := range blogs {
		if !b.IsPublished() {
			continue
		}
		if category != "" && clcontent.Slugify(b.Category) != category {
			continue
		}
		filtered = append(filtered, b)
	}
	blogs = filtered
	if len(blogs) > maxItems {
		blogs = blogs[:maxItems]
	}

	baseURL := h.baseURL(c)
	now := time.Now()
	rss := clrss.RSS{
		Version: "2.0",
		Channel: clrss.Channel{
			Title:         h.site.Name,
			Link:          baseURL,
			Description:   stripmd.Strip(h.site.Description),
			Language:      h.site.Language,
			Copyright:     fmt.Sprintf("© %d %s", now.Year(), h.site.Name),
			Generator:     fmt.Sprintf("Portfolio v%s", h.version),
			LastBuildDate: now.Format(time.RFC1123Z),
			Items:         make([]clrss.RSSItem, 0, len(blogs)),
		},
	}

	for _, b := range blogs {
		link := fmt.Sprintf("%s/blog/%d", baseURL, b.ID)
		item := clrss.RSSItem{
			Title:       b.Title,
			Link:        link,
			Description: stripmd.Strip(b.Excerpt),
			Category:    b.Category,
			GUID:        link,
			PubDate:     b.CreatedAt.Format(time.RFC1123Z),
		}
		if img := b.FirstImage(); img != "" {
			item.Enclosure = &clrss.RSSEnclosure{URL: absolute(baseURL, img), Type: clrss.MimeType(img)}
		}
		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		c.XML(http.StatusInternalServerError, gin.H{"error": "Erreur génération RSS"})
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(xml.Header+string(output)))
}

// baseURL privilégie site.url, sinon l'hôte de la requête
func (h *RSSHandler) baseURL(c *gin.Context) string {
	if h.site.URL != "" {
		return strings.TrimRight(h.site.URL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

func absolute(baseURL, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return baseURL + "/" + strings.TrimLeft(link, "/")
}
