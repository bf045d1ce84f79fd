package main

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardscan/pkg/annotate"
	"cardscan/pkg/card"
	"cardscan/pkg/scan"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type server struct {
	cfg     Config
	store   fileStore
	scanner *scan.Service
	log     *zap.SugaredLogger
}

// uploadResponse is returned by POST /upload as JSON or rendered into
// results.html.
type uploadResponse struct {
	PersonName       string          `json:"person_name"`
	OrganizationName string          `json:"organization_name"`
	PhoneNumbers     []string        `json:"phone_numbers"`
	PhoneNumber      string          `json:"phone_number"`
	OriginalImage    string          `json:"original_image"`
	AnnotatedImage   string          `json:"annotated_image"`
	Fragments        []card.Fragment `json:"fragments"`
	DetectorError    string          `json:"detector_error,omitempty"`
}

func setupRoutes(r *gin.Engine, s *server) {
	r.SetHTMLTemplate(pageTemplates)
	r.GET("/", s.indexHandler)
	r.GET("/healthz", s.healthHandler)

	// Annotated results stay public so the results page can embed them;
	// their names carry a random UUID prefix.
	r.GET("/results/:filename", s.resultHandler)

	files := r.Group("")
	if s.cfg.authEnabled() {
		r.POST("/login", s.loginHandler)
		files.Use(s.jwtAuthMiddleware())
	}
	files.POST("/upload", s.uploadHandler)
	files.GET("/uploads/:filename", s.originalHandler)
}

func (s *server) indexHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "detector": s.scanner.DetectorName()})
}

// uploadHandler stores the card image, runs the pipeline and answers with the
// extracted fields.
func (s *server) uploadHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		msg := "No file part"
		if form := c.Request.MultipartForm; form != nil {
			if _, ok := form.Value["file"]; ok {
				msg = "No selected file"
			}
		}
		s.fail(c, http.StatusBadRequest, msg)
		return
	}
	if file.Filename == "" {
		s.fail(c, http.StatusBadRequest, "No selected file")
		return
	}
	if file.Size > s.cfg.MaxUploadBytes {
		s.fail(c, http.StatusBadRequest, fmt.Sprintf("file too large (max %dMB)", s.cfg.MaxUploadBytes>>20))
		return
	}

	name := s.store.newName(file.Filename)
	src := s.store.uploadPath(name)
	if err := c.SaveUploadedFile(file, src); err != nil {
		s.log.Errorf("save upload %s: %v", name, err)
		s.fail(c, http.StatusInternalServerError, "save failed")
		return
	}

	resultName := annotate.OutputName(name)
	res, err := s.scanner.Process(c.Request.Context(), src, s.store.resultPath(resultName))
	if err != nil {
		_ = os.Remove(src)
	}
	if errors.Is(err, scan.ErrUndecodableImage) {
		s.fail(c, http.StatusBadRequest, "file is not a supported image")
		return
	}
	if err != nil {
		s.log.Errorf("process %s: %v", name, err)
		s.fail(c, http.StatusInternalServerError, "processing failed")
		return
	}

	resp := uploadResponse{
		PersonName:       res.PersonName,
		OrganizationName: res.OrganizationName,
		PhoneNumbers:     res.PhoneNumbers,
		PhoneNumber:      res.PhoneString(),
		OriginalImage:    "/uploads/" + url.PathEscape(name),
		AnnotatedImage:   "/results/" + url.PathEscape(resultName),
		Fragments:        res.Fragments,
		DetectorError:    res.DetectorError,
	}
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		c.HTML(http.StatusOK, "results.html", resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) originalHandler(c *gin.Context) {
	s.serveStored(c, s.store.uploadPath)
}

func (s *server) resultHandler(c *gin.Context) {
	s.serveStored(c, s.store.resultPath)
}

func (s *server) serveStored(c *gin.Context, pathFor func(string) string) {
	name := c.Param("filename")
	if err := checkName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := pathFor(name)
	if fi, err := os.Stat(p); err != nil || fi.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.File(p)
}

// fail answers browsers with plain text and API clients with JSON.
func (s *server) fail(c *gin.Context, status int, msg string) {
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		c.String(status, msg)
		return
	}
	c.JSON(status, gin.H{"error": msg})
}
