package icons

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo         *Repo
	ManifestPath string
}

func NewHandler(repo *Repo, manifestPath string) *Handler {
	return &Handler{Repo: repo, ManifestPath: manifestPath}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/icons", h.list)             // GET /icons
	rg.GET("/icons/:id", h.getByID)      // GET /icons/:id
	rg.GET("/categories", h.categories)  // GET /categories
	rg.GET("/manifest.json", h.manifest) // GET /manifest.json
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Style:    c.Query("style"),
		Size:     parseInt(c.Query("size"), 0),
		Limit:    parseInt(c.Query("limit"), 50),
		Offset:   parseInt(c.Query("offset"), 0),
	}
	q.Limit, q.Offset = pageBounds(q.Limit, q.Offset)

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) categories(c *gin.Context) {
	cats, err := h.Repo.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "categories failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cats})
}

// manifest serves the manifest file as written, after checking it parses so
// a bad file does not silently break the UI.
func (h *Handler) manifest(c *gin.Context) {
	b, err := os.ReadFile(h.ManifestPath)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "manifest unavailable"})
		return
	}
	if !json.Valid(b) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "manifest invalid JSON"})
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
