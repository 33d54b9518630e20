package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/myusername/fm-scout/internal/config"
	"github.com/myusername/fm-scout/internal/export"
	"github.com/myusername/fm-scout/internal/logger"
	"github.com/myusername/fm-scout/internal/metrics"
	"github.com/myusername/fm-scout/internal/server"
	"github.com/myusername/fm-scout/internal/store"
	"github.com/myusername/fm-scout/internal/utils"
	"github.com/myusername/fm-scout/pkg/importer"
	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/query"
	"github.com/myusername/fm-scout/pkg/roles"
	"github.com/myusername/fm-scout/pkg/scorer"
	"github.com/myusername/fm-scout/pkg/scraper"
)

// app holds everything a command needs. The catalogue is built once here and handed to
// every component.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	catalogue *roles.Catalogue
	presets   []roles.Preset
	out       io.Writer
}

func newApp(configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	var cat *roles.Catalogue
	if cfg.RolesPath != "" {
		cat, err = roles.LoadFile(cfg.RolesPath)
	} else {
		cat, err = roles.LoadEmbedded()
	}
	if err != nil {
		return nil, err
	}

	var presets []roles.Preset
	if cfg.PresetsPath != "" {
		presets, err = roles.LoadPresets(cfg.PresetsPath)
	} else {
		presets, err = roles.DefaultPresets()
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"roles":   cat.Len(),
		"presets": len(presets),
		"version": version,
	}).Debug("Loaded role catalogue")

	return &app{cfg: cfg, log: log, catalogue: cat, presets: presets, out: os.Stdout}, nil
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "roles":
		return a.cmdRoles(args)
	case "presets":
		return a.cmdPresets(args)
	case "import":
		return a.cmdImport(args)
	case "imports":
		return a.cmdImports(args)
	case "rescore":
		return a.cmdRescore(args)
	case "serve":
		return a.cmdServe(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) newImporter(rec importer.Recorder) *importer.Importer {
	opts := []importer.Option{
		importer.WithLogger(a.log),
		importer.WithMaxPlayers(a.cfg.MaxPlayers),
		importer.WithReader(scraper.NewSource(a.cfg.FetchTimeout, a.log)),
	}
	if rec != nil {
		opts = append(opts, importer.WithRecorder(rec))
	}
	return importer.New(a.catalogue, opts...)
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, a.cfg.DBPath)
}

// selectRoles resolves a comma-separated code list and/or a preset name to known codes
func (a *app) selectRoles(codeList, preset string) ([]string, error) {
	var codes []string
	for _, code := range strings.Split(codeList, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	if preset != "" {
		p, ok := roles.FindPreset(a.presets, preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		codes = append(codes, a.catalogue.Resolve(p)...)
	}
	return codes, nil
}

// whereFlags registers the player filter flags shared by import and rescore
func whereFlags(fs *flag.FlagSet) func() (*query.Group, error) {
	where := fs.String("where", "", "Only players matching these rules, e.g. \"Fin>=15;Value<=5M\"")
	matchAny := fs.Bool("any", false, "Keep players matching any -where rule instead of all")
	return func() (*query.Group, error) {
		return query.Parse(*where, query.ParseOp(*matchAny))
	}
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) cmdRoles(args []string) error {
	fs := flag.NewFlagSet("roles", flag.ContinueOnError)
	duty := fs.String("duty", "", "Only roles whose name contains this text, e.g. Support")
	code := fs.String("code", "", "Show a single role by code")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *code != "" {
		role, ok := a.catalogue.ByCode(*code)
		if !ok {
			return fmt.Errorf("unknown role code %q", *code)
		}
		return a.writeJSON(role)
	}

	list := a.catalogue.All()
	if *duty != "" {
		list = a.catalogue.ByDuty(*duty)
	}
	if *asJSON {
		return a.writeJSON(list)
	}
	utils.DisplayRoles(a.out, list)
	return nil
}

func (a *app) cmdPresets(args []string) error {
	fs := flag.NewFlagSet("presets", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, p := range a.presets {
		fmt.Fprintf(a.out, "%-20s %s\n", p.Name, strings.Join(a.catalogue.Resolve(p), ", "))
	}
	return nil
}

func (a *app) cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	roleList := fs.String("roles", "", "Comma-separated role codes to rank players by")
	preset := fs.String("preset", "", "Role preset to rank players by")
	top := fs.Int("top", 20, "Players shown per role (0 = all)")
	outFile := fs.String("out", "", "Export file (.csv, .json or .xlsx); relative paths go to EXPORT_DIR")
	save := fs.Bool("save", false, "Save the import for later re-scoring")
	asJSON := fs.Bool("json", false, "Print the full import result as JSON")
	filter := whereFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import needs exactly one file path or URL")
	}
	path := fs.Arg(0)

	group, err := filter()
	if err != nil {
		return err
	}

	codes, err := a.selectRoles(*roleList, *preset)
	if err != nil {
		return err
	}
	selected := a.catalogue.Select(codes)

	ctx := context.Background()
	result := a.newImporter(nil).ImportFile(ctx, path)
	if !result.Success {
		return errors.New(*result.Error)
	}

	if *save {
		st, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		format, _ := importer.DetectFormat(scraper.FilePath(path))
		id, err := st.SaveImport(ctx, path, string(format), result.Players)
		if err != nil {
			return err
		}
		logger.WithImport(a.log, id, path).Info("Saved import")
	}

	// the filter narrows what is shown and exported; a saved import keeps every player
	players := query.FilterPlayers(result.Players, group)
	if group != nil {
		a.log.WithFields(logrus.Fields{
			"matched": len(players),
			"total":   len(result.Players),
		}).Debug("Filtered players")
	}

	if *outFile != "" {
		target := *outFile
		if !filepath.IsAbs(target) {
			target = filepath.Join(a.cfg.ExportDir, target)
		}
		exportRoles := selected
		if len(exportRoles) == 0 {
			exportRoles = a.catalogue.All()
		}
		if err := export.WriteFile(target, players, exportRoles); err != nil {
			return err
		}
		a.log.WithField("file", target).Info("Exported players")
	}

	if *asJSON {
		return a.writeJSON(models.NewImportResult(players))
	}
	if len(selected) == 0 {
		utils.DisplayBestRoles(a.out, players)
		return nil
	}
	for _, role := range selected {
		utils.DisplayRoleRanking(a.out, players, role, *top)
	}
	return nil
}

func (a *app) cmdImports(args []string) error {
	fs := flag.NewFlagSet("imports", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.ListImports(ctx)
	if err != nil {
		return err
	}
	for _, imp := range list {
		fmt.Fprintf(a.out, "%s  %-4s  %6d players  %s  %s\n",
			imp.ID, imp.Format, imp.PlayerCount, imp.CreatedAt.Local().Format(time.DateTime), imp.Source)
	}
	return nil
}

func (a *app) cmdRescore(args []string) error {
	fs := flag.NewFlagSet("rescore", flag.ContinueOnError)
	id := fs.String("id", "", "Saved import ID")
	roleList := fs.String("roles", "", "Comma-separated role codes")
	preset := fs.String("preset", "", "Role preset")
	filter := whereFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("rescore needs -id")
	}
	group, err := filter()
	if err != nil {
		return err
	}

	codes, err := a.selectRoles(*roleList, *preset)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		codes = a.catalogue.Codes()
	}

	ctx := context.Background()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.LoadRecords(ctx, *id)
	if err != nil {
		return err
	}

	scored := scorer.ScoreSelected(records, codes, a.catalogue)
	return a.writeJSON(query.FilterRecords(scored, group))
}

func (a *app) cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.ServerAddr, "Listen address")
	noStore := fs.Bool("no-store", false, "Disable saved imports")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st server.ImportStore
	if !*noStore {
		s, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		st = s
	}

	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	rec := metrics.NewRecorder()
	srv := server.New(a.newImporter(rec), a.presets, st, rec, a.log)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", *addr).Info("Starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

var _ server.ImportStore = (*store.Store)(nil)
var _ importer.Recorder = (*metrics.Recorder)(nil)
