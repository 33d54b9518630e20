package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myusername/fm-scout/internal/store"
	"github.com/myusername/fm-scout/pkg/importer"
	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/query"
	"github.com/myusername/fm-scout/pkg/roles"
	"github.com/myusername/fm-scout/pkg/scorer"
	"github.com/myusername/fm-scout/pkg/scraper"
)

// maxUploadBytes bounds a single uploaded export
const maxUploadBytes = 64 << 20

type importRequest struct {
	Path string `json:"path" binding:"required"`
	Save bool   `json:"save"`
}

type importResponse struct {
	models.ImportResult
	ImportID string `json:"import_id,omitempty"`
}

type scoreRequest struct {
	Players []models.PlayerRecord `json:"players"`
	Roles   []string              `json:"roles"`
	Preset  string                `json:"preset"`
	Query   *query.Group          `json:"query"`
	Where   string                `json:"where"`
	Any     bool                  `json:"any"`
}

// GET /api/roles[?duty=Support]
func (s *Server) getRoles(c *gin.Context) {
	if duty, ok := c.GetQuery("duty"); ok {
		c.JSON(http.StatusOK, s.catalogue.ByDuty(duty))
		return
	}
	c.JSON(http.StatusOK, s.catalogue.All())
}

// GET /api/roles/:code
func (s *Server) getRoleByCode(c *gin.Context) {
	role, ok := s.catalogue.ByCode(c.Param("code"))
	if !ok {
		sendError(c, http.StatusNotFound, "role not found")
		return
	}
	c.JSON(http.StatusOK, role)
}

// GET /api/presets returns presets with their codes resolved against the catalogue
func (s *Server) getPresets(c *gin.Context) {
	out := make([]roles.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, roles.Preset{Name: p.Name, Roles: s.catalogue.Resolve(p)})
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/import {"path": "...", "save": true}
func (s *Server) importFile(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	result := s.importer.ImportFile(c.Request.Context(), req.Path)
	format, _ := importer.DetectFormat(scraper.FilePath(req.Path))
	s.respondImport(c, req.Path, string(format), result, req.Save)
}

// POST /api/import/upload (multipart field "file", optional form field "save")
func (s *Server) importUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "missing upload field \"file\"")
		return
	}

	format, err := importer.DetectFormat(fh.Filename)
	if err != nil {
		s.respondImport(c, fh.Filename, "", models.FailedImportResult(err), false)
		return
	}

	f, err := fh.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	var result models.ImportResult
	players, err := s.importer.ImportContent(format, string(content))
	if err != nil {
		result = models.FailedImportResult(err)
	} else {
		result = models.NewImportResult(players)
	}
	s.respondImport(c, fh.Filename, string(format), result, c.PostForm("save") == "true")
}

func (s *Server) respondImport(c *gin.Context, source, format string, result models.ImportResult, save bool) {
	resp := importResponse{ImportResult: result}
	if result.Success && save {
		if s.store == nil {
			sendError(c, http.StatusServiceUnavailable, "import storage is not configured")
			return
		}
		id, err := s.store.SaveImport(c.Request.Context(), source, format, result.Players)
		if err != nil {
			s.log.WithError(err).Error("Failed to save import")
			sendError(c, http.StatusInternalServerError, "failed to save import")
			return
		}
		resp.ImportID = id
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/score {"players": [...], "roles": ["AFA", ...]} or {"preset": "Strikers"},
// optionally narrowed by "query" (a rule group) and/or "where" (compact rules)
func (s *Server) scoreSelected(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := buildFilter(req.Query, req.Where, req.Any)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	codes, ok := s.selectCodes(req.Roles, req.Preset)
	if !ok {
		sendError(c, http.StatusNotFound, "preset not found")
		return
	}

	scored := query.FilterRecords(scorer.ScoreSelected(req.Players, codes, s.catalogue), filter)
	s.recorder.ObserveRescore(len(scored))
	c.JSON(http.StatusOK, scored)
}

// GET /api/imports
func (s *Server) listImports(c *gin.Context) {
	if s.store == nil {
		sendError(c, http.StatusServiceUnavailable, "import storage is not configured")
		return
	}
	list, err := s.store.ListImports(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to list imports")
		sendError(c, http.StatusInternalServerError, "failed to list imports")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/imports/:id/players[?roles=A,B|preset=Name][&where=Fin>=15;Age<21[&any=true]]
// No selection scores every role.
func (s *Server) scoreImport(c *gin.Context) {
	if s.store == nil {
		sendError(c, http.StatusServiceUnavailable, "import storage is not configured")
		return
	}
	filter, err := buildFilter(nil, c.Query("where"), c.Query("any") == "true")
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	var requested []string
	if raw := c.Query("roles"); raw != "" {
		requested = strings.Split(raw, ",")
	}
	codes, ok := s.selectCodes(requested, c.Query("preset"))
	if !ok {
		sendError(c, http.StatusNotFound, "preset not found")
		return
	}
	if len(requested) == 0 && c.Query("preset") == "" {
		codes = s.catalogue.Codes()
	}

	records, err := s.store.LoadRecords(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		sendError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to load import")
		sendError(c, http.StatusInternalServerError, "failed to load import")
		return
	}

	scored := query.FilterRecords(scorer.ScoreSelected(records, codes, s.catalogue), filter)
	s.recorder.ObserveRescore(len(scored))
	c.JSON(http.StatusOK, scored)
}

// DELETE /api/imports/:id
func (s *Server) deleteImport(c *gin.Context) {
	if s.store == nil {
		sendError(c, http.StatusServiceUnavailable, "import storage is not configured")
		return
	}
	err := s.store.DeleteImport(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		sendError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to delete import")
		sendError(c, http.StatusInternalServerError, "failed to delete import")
		return
	}
	c.Status(http.StatusNoContent)
}

// selectCodes merges explicit codes with a named preset; false means the preset is unknown
func (s *Server) selectCodes(codes []string, preset string) ([]string, bool) {
	out := append([]string{}, codes...)
	if preset == "" {
		return out, true
	}
	p, ok := roles.FindPreset(s.presets, preset)
	if !ok {
		return nil, false
	}
	return append(out, s.catalogue.Resolve(p)...), true
}

// buildFilter validates a JSON rule group and parses compact rules; when both are given a
// record must satisfy both
func buildFilter(group *query.Group, where string, matchAny bool) (*query.Group, error) {
	if group != nil {
		if err := group.Validate(); err != nil {
			return nil, err
		}
	}
	parsed, err := query.Parse(where, query.ParseOp(matchAny))
	if err != nil {
		return nil, err
	}
	switch {
	case group == nil:
		return parsed, nil
	case parsed == nil:
		return group, nil
	default:
		return &query.Group{Op: query.And, Rules: []query.Node{{Group: group}, {Group: parsed}}}, nil
	}
}
