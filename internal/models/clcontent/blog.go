package clcontent

import (
	"html/template"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wasiahamad/Portfolio/internal/models/clmarkdown"
	"gorm.io/gorm"
)

const (
	DefaultCategory = "General"
	excerptLength   = 180
)

var (
	reImage      = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
	reImageStrip = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
)

type Blog struct {
	Model
	Title       string        `json:"title" gorm:"not null"`
	Excerpt     string        `json:"excerpt" gorm:"type:text"`
	Category    string        `json:"category" gorm:"size:100;index"`
	ReadTime    string        `json:"readTime"`
	Content     string        `json:"content" gorm:"type:text;not null"`
	ContentHTML template.HTML `json:"contentHtml" gorm:"-"`
	Image       string        `json:"image" gorm:"type:text"`
	Tags        string        `json:"-" gorm:"type:text"`
	TagsList    []string      `json:"tags" gorm:"-"`
	Published   *bool         `json:"published" gorm:"default:true;index"`
}

func (b *Blog) BeforeSave(tx *gorm.DB) error {
	b.Tags = joinList(b.TagsList)
	b.TagsList = splitList(b.Tags)
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		b.Category = DefaultCategory
	}
	return nil
}

func (b *Blog) AfterFind(tx *gorm.DB) error {
	b.TagsList = splitList(b.Tags)
	b.Normalize()
	return nil
}

// Normalize complète les champs dérivés : résumé, temps de lecture, catégorie, HTML
func (b *Blog) Normalize() {
	if b.TagsList == nil {
		b.TagsList = []string{}
	}
	if b.Excerpt == "" {
		b.Excerpt = ExtractExcerpt(CleanMarkdownForExcerpt(b.Content), excerptLength)
	}
	if b.Category == "" {
		b.Category = DefaultCategory
	}
	if b.ReadTime == "" {
		b.ReadTime = clmarkdown.ReadTime(b.Content)
	}
	if b.Published == nil {
		b.Published = BoolPtr(true)
	}
	b.ContentHTML = clmarkdown.ConvertMarkdownToHTML(b.Content)
}

func (b *Blog) IsPublished() bool {
	return b.Published == nil || *b.Published
}

// FirstImage retourne la première image du contenu si le champ image est vide
func (b *Blog) FirstImage() string {
	if b.Image != "" {
		return b.Image
	}
	if found, l := ExtractImages(b.Content, true, true); found {
		return l[0]
	}
	return ""
}

// BlogFilter correspond aux paramètres ?published=true&category=
type BlogFilter struct {
	PublishedOnly bool
	Category      string
}

func (f BlogFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.PublishedOnly {
		db = db.Where("published = ?", true)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	return db
}

func NewBlogRepository(db *gorm.DB) *Repository[Blog] {
	return NewRepository[Blog](db, "created_at desc, id desc")
}

func BoolPtr(v bool) *bool {
	return &v
}

func CleanMarkdownForExcerpt(content string) string {
	return reImageStrip.ReplaceAllString(content, "")
}

// ExtractExcerpt coupe le texte en fin de phrase ou sur un espace, "..." si coupé en milieu de phrase
func ExtractExcerpt(text string, maxLength int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	runes := []rune(text)

	cutPoint := maxLength
	for i := maxLength - 1; i >= maxLength-100 && i >= 0; i-- {
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			cutPoint = i + 1
			break
		}
	}

	if cutPoint == maxLength {
		for i := maxLength - 1; i >= maxLength-50 && i >= 0; i-- {
			if runes[i] == ' ' {
				cutPoint = i
				break
			}
		}
	}

	result := strings.TrimSpace(string(runes[:cutPoint]))

	lastChar := runes[cutPoint-1]
	if lastChar != '.' && lastChar != '!' && lastChar != '?' {
		result += "..."
	}

	return result
}

// ExtractImages extrait les images Markdown ![alt](url), l'url seule si fileOnly
func ExtractImages(markdown string, firstOnly bool, fileOnly bool) (bool, []string) {
	if markdown == "" {
		return false, nil
	}

	var l []string
	for _, match := range reImage.FindAllStringSubmatch(markdown, -1) {
		if len(match) < 2 {
			continue
		}
		if fileOnly {
			l = append(l, strings.Trim(strings.TrimSpace(match[1]), `"' `))
		} else {
			l = append(l, strings.TrimSpace(match[0]))
		}
		if firstOnly {
			break
		}
	}

	return len(l) > 0, l
}
