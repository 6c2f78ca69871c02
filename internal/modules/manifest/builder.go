// Package manifest renders and publishes the llms.txt site manifests
// that AI crawlers use to discover content.
package manifest

import (
	"fmt"
	"strings"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"gorm.io/gorm"
)

// Detail selects between the compact and the exhaustive manifest.
type Detail string

const (
	DetailBasic Detail = "basic"
	DetailFull  Detail = "full"
)

const (
	maxPages            = 10
	maxCategories       = 10
	maxPopular          = 10
	maxPostsPerCategory = 50
)

// Builder turns the current content inventory into manifest markdown.
type Builder struct {
	db     *gorm.DB
	cfgSvc *settings.Service
}

func NewBuilder(db *gorm.DB, cfgSvc *settings.Service) *Builder {
	return &Builder{db: db, cfgSvc: cfgSvc}
}

// Build renders the manifest. The basic detail lists pages, categories
// and popular posts; the full detail additionally enumerates every
// category's posts with excerpts.
func (b *Builder) Build(detail Detail) (string, error) {
	cfg, err := b.cfgSvc.Get()
	if err != nil {
		return "", err
	}

	var out strings.Builder
	b.writeHeader(&out, cfg)

	if err := b.writePages(&out, cfg); err != nil {
		return "", err
	}
	cats, err := b.writeCategories(&out, cfg, detail)
	if err != nil {
		return "", err
	}
	if err := b.writePopular(&out, cfg); err != nil {
		return "", err
	}

	if detail == DetailFull {
		if err := b.writeCategoryDetails(&out, cfg, cats); err != nil {
			return "", err
		}
	}

	return out.String(), nil
}

func (b *Builder) writeHeader(out *strings.Builder, cfg settings.Settings) {
	name := cfg.SiteName
	if name == "" {
		name = "Untitled Site"
	}
	fmt.Fprintf(out, "# %s\n\n", name)
	if cfg.SiteDescription != "" {
		fmt.Fprintf(out, "> %s\n\n", cfg.SiteDescription)
	}
	if cfg.SiteURL != "" {
		fmt.Fprintf(out, "%s\n\n", cfg.SiteURL)
	}
}

func (b *Builder) writePages(out *strings.Builder, cfg settings.Settings) error {
	var pages []models.PageModel
	err := b.db.Order("order_num DESC").Limit(maxPages).Find(&pages).Error
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return nil
	}

	out.WriteString("## Main Pages\n\n")
	for _, p := range pages {
		fmt.Fprintf(out, "- [%s](%s/pages/%s)\n", p.Title, cfg.SiteURL, p.Slug)
	}
	out.WriteString("\n")
	return nil
}

func (b *Builder) writeCategories(out *strings.Builder, cfg settings.Settings, detail Detail) ([]models.CategoryModel, error) {
	q := b.db.Order("name ASC")
	if detail == DetailBasic {
		q = q.Limit(maxCategories)
	}

	var cats []models.CategoryModel
	err := q.Find(&cats).Error
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return cats, nil
	}

	out.WriteString("## Categories\n\n")
	for _, c := range cats {
		fmt.Fprintf(out, "- [%s](%s/categories/%s)\n", c.Name, cfg.SiteURL, c.Slug)
	}
	out.WriteString("\n")
	return cats, nil
}

func (b *Builder) writePopular(out *strings.Builder, cfg settings.Settings) error {
	limit := cfg.TopN
	if limit > maxPopular {
		limit = maxPopular
	}

	var posts []models.PostModel
	err := b.db.Model(&models.PostModel{}).
		Joins("JOIN visits ON visits.post_id = posts.id").
		Where("posts.is_published = ?", true).
		Order("visits.ai_referrals DESC, visits.post_id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	out.WriteString("## Popular Content\n\n")
	for _, p := range posts {
		fmt.Fprintf(out, "- [%s](%s/posts/%s)\n", p.Title, cfg.SiteURL, p.Slug)
	}
	out.WriteString("\n")
	return nil
}

func (b *Builder) writeCategoryDetails(out *strings.Builder, cfg settings.Settings, cats []models.CategoryModel) error {
	for _, cat := range cats {
		var posts []models.PostModel
		err := b.db.Where("category_id = ? AND is_published = ?", cat.ID, true).
			Order("created_at DESC").
			Limit(maxPostsPerCategory).
			Find(&posts).Error
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			continue
		}

		fmt.Fprintf(out, "## %s\n\n", cat.Name)
		for i := range posts {
			p := &posts[i]
			line := fmt.Sprintf("- [%s](%s/posts/%s)", p.Title, cfg.SiteURL, p.Slug)
			if excerpt := shortExcerpt(p); excerpt != "" {
				line += ": " + excerpt
			}
			out.WriteString(line + "\n")
		}
		out.WriteString("\n")
	}
	return nil
}

func shortExcerpt(p *models.PostModel) string {
	text := strings.TrimSpace(p.Summary)
	if text == "" {
		text = strings.TrimSpace(p.Excerpt)
	}
	if text == "" {
		words := strings.Fields(p.Text)
		if len(words) > 30 {
			words = words[:30]
		}
		text = strings.Join(words, " ")
	}
	return strings.ReplaceAll(text, "\n", " ")
}
