// Package web serves the landing page and the server-rendered result panel.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/helpers"
	"github.com/palemoky/contentiq/internal/intake"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageTitle       = "ContentIQ - AI爬虫收益计算器"
	pageDescription = "计算您的内容被AI训练的潜在价值，为内容创作者提供收益估算和权益保护建议"

	// how often the analyzing page polls for completion
	refreshSeconds = 1
)

type feature struct {
	Title string
	Body  string
}

var features = []feature{
	{"📊 内容分析", "分析您网站的内容质量、独特性和AI训练价值"},
	{"💰 收益估算", "基于内容量和质量估算AI公司的潜在使用价值"},
	{"🔒 权益保护", "了解如何保护您的内容权益并获得合理补偿"},
}

var suggestions = []string{
	"考虑为您的内容添加版权声明",
	"了解robots.txt设置以控制爬虫访问",
	"关注AI公司的内容使用政策",
	"考虑加入内容创作者权益保护组织",
}

type pageData struct {
	Title          string
	Description    string
	URL            string
	Error          string
	Analysis       *database.Analysis
	RefreshSeconds int
	Features       []feature
	Suggestions    []string
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"count":   helpers.FormatCount,
		"cny":     helpers.FormatCNY,
		"percent": helpers.FormatPercent,
		"score":   helpers.FormatScore,
	}).ParseFS(templateFS, "templates/*.html")
}

// Handler renders pages for the analysis lifecycle
type Handler struct {
	svc *analysis.Service
	log *zap.Logger
}

// NewHandler creates a new page handler
func NewHandler(svc *analysis.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts the page routes and installs the templates on router.
// guards run before the form posts only; page views are never limited.
func (h *Handler) Register(router *gin.Engine, guards ...gin.HandlerFunc) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/", h.Index)
	router.GET("/analyses/:id", h.Show)
	router.POST("/analyses", chain(guards, h.Submit)...)
	router.POST("/analyses/:id/start", chain(guards, h.Start)...)
	return nil
}

func chain(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, guards...), h)
}

func (h *Handler) render(c *gin.Context, status int, data pageData) {
	data.Title = pageTitle
	data.Description = pageDescription
	data.Features = features
	data.Suggestions = suggestions
	if data.Analysis != nil && data.Analysis.State == database.StateAnalyzing {
		data.RefreshSeconds = refreshSeconds
	}
	c.HTML(status, "index.html", data)
}

// Index renders the empty landing page
func (h *Handler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, pageData{})
}

// Submit takes the landing form and shows the idle result panel
func (h *Handler) Submit(c *gin.Context) {
	raw := c.PostForm("url")

	a, err := h.svc.Create(c.Request.Context(), raw)
	switch {
	case errors.Is(err, intake.ErrEmptyURL):
		h.render(c, http.StatusBadRequest, pageData{Error: "请输入网站URL"})
		return
	case errors.Is(err, intake.ErrURLTooLong):
		h.render(c, http.StatusBadRequest, pageData{Error: "URL过长"})
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/analyses/"+a.ID)
}

// Show renders the result panel in its current state
func (h *Handler) Show(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, pageData{URL: a.URL, Analysis: a})
}

// Start triggers the analysis and goes back to its page
func (h *Handler) Start(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return
	}

	if _, err := h.svc.Start(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.fail(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/analyses/"+id)
}

func (h *Handler) load(c *gin.Context) (*database.Analysis, bool) {
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return nil, false
	}

	a, err := h.svc.Get(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		h.notFound(c)
		return nil, false
	}
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return a, true
}

func parseID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, pageData{Error: "分析不存在或已过期"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.log.Error("Page request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	h.render(c, http.StatusInternalServerError, pageData{Error: "服务暂时不可用，请稍后再试"})
}
