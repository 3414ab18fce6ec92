package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/middleware"
	"github.com/mmynk/spendboard/internal/models"
	"github.com/mmynk/spendboard/internal/prefs"
	"github.com/mmynk/spendboard/internal/storage"
)

// PreferenceService stores dashboard tiles and moves a user's imported
// data in and out as a preference blob.
type PreferenceService struct {
	store  storage.Store
	engine config.Engine
	codec  prefs.Codec
}

// NewPreferenceService creates a PreferenceService with the given storage backend.
func NewPreferenceService(store storage.Store, eng config.Engine) *PreferenceService {
	return &PreferenceService{
		store:  store,
		engine: eng,
		codec:  prefs.Codec{Location: eng.Loc(), Fallback: eng.Fallback()},
	}
}

// DefaultTiles is the dashboard shown before a user saves their own.
func DefaultTiles() []models.DashboardTile {
	return []models.DashboardTile{
		{ID: "last-week", Label: "Last 7 days", Size: "small", Kind: models.TileRange, RangeKey: "7d"},
		{ID: "last-month", Label: "Last month", Size: "medium", Kind: models.TileRange, RangeKey: "1m"},
		{ID: "this-month", Label: "This month", Size: "large", Kind: models.TileMonth},
	}
}

func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}

func (s *PreferenceService) load(ctx context.Context, userID string) (prefs.Preferences, error) {
	data, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return prefs.Preferences{}, err
	}
	return s.codec.Unmarshal(data)
}

// GetTiles returns the caller's tiles, or the defaults.
func (s *PreferenceService) GetTiles(ctx context.Context, req *connect.Request[GetTilesRequest]) (*connect.Response[GetTilesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.load(ctx, userID)
	if err != nil {
		slog.Error("GetTiles failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	tiles := p.Tiles
	if len(tiles) == 0 {
		tiles = DefaultTiles()
	}
	out := make([]Tile, len(tiles))
	for i, t := range tiles {
		out[i] = toTile(t)
	}
	return connect.NewResponse(&GetTilesResponse{Tiles: out}), nil
}

// SaveTiles replaces the caller's tiles. Every tile must name a configured
// range or a YYYY-MM month.
func (s *PreferenceService) SaveTiles(ctx context.Context, req *connect.Request[SaveTilesRequest]) (*connect.Response[SaveTilesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SaveTiles request received", "user_id", userID, "tiles", len(req.Msg.Tiles))

	tiles := make([]models.DashboardTile, len(req.Msg.Tiles))
	for i, in := range req.Msg.Tiles {
		t := fromTile(in)
		if err := t.Validate(); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		if _, ok := s.engine.Ranges[t.RangeKey]; t.Kind == models.TileRange && !ok {
			return nil, invalid(fmt.Sprintf("tile %s: unknown range %q", t.ID, t.RangeKey))
		}
		tiles[i] = t
	}

	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	p.Tiles = tiles
	if err := s.save(ctx, userID, p); err != nil {
		slog.Error("SaveTiles failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&SaveTilesResponse{Tiles: req.Msg.Tiles}), nil
}

func (s *PreferenceService) save(ctx context.Context, userID string, p prefs.Preferences) error {
	data, err := s.codec.Marshal(p)
	if err != nil {
		return err
	}
	return s.store.PutPreferences(ctx, userID, data)
}

// ExportPreferences bundles the caller's imported expenses, remembered
// files and tiles into one blob.
func (s *PreferenceService) ExportPreferences(ctx context.Context, req *connect.Request[ExportPreferencesRequest]) (*connect.Response[ExportPreferencesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	files, err := s.store.ListImportFiles(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{CreatedBy: userID})
	if err != nil {
		return nil, toConnectError(err)
	}

	p.CSVFiles = files
	p.ImportedExpenses = p.ImportedExpenses[:0]
	for _, e := range expenses {
		if e.ImportFileID != "" {
			p.ImportedExpenses = append(p.ImportedExpenses, e)
		}
	}

	data, err := s.codec.Marshal(p)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Preferences exported", "user_id", userID, "expenses", len(p.ImportedExpenses), "files", len(files))
	return connect.NewResponse(&ExportPreferencesResponse{Data: string(data)}), nil
}

// RestorePreferences loads a blob written by ExportPreferences. Records
// keep their IDs, so restoring twice is idempotent. References to groups
// or files that no longer exist are dropped, and records or files whose ID
// already belongs to another user are skipped.
func (s *PreferenceService) RestorePreferences(ctx context.Context, req *connect.Request[RestorePreferencesRequest]) (*connect.Response[RestorePreferencesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.codec.Unmarshal([]byte(req.Msg.Data))
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	files := make(map[string]bool, len(p.CSVFiles))
	for _, f := range p.CSVFiles {
		existing, err := s.store.GetImportFile(ctx, f.ID)
		if errors.Is(err, storage.ErrNotFound) {
			f.CreatedBy = userID
			err = s.store.CreateImportFile(ctx, &f)
		} else if err == nil && existing.CreatedBy != userID {
			slog.Warn("RestorePreferences skipped foreign file", "file_id", f.ID, "user_id", userID)
			continue
		}
		if err != nil {
			slog.Error("RestorePreferences failed on file", "file_id", f.ID, "error", err)
			return nil, toConnectError(err)
		}
		files[f.ID] = true
	}

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.ID] = true
	}

	expenses := make([]models.Expense, 0, len(p.ImportedExpenses))
	skipped := 0
	for _, e := range p.ImportedExpenses {
		existing, err := s.store.GetExpense(ctx, e.ID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Error("RestorePreferences failed on expense", "expense_id", e.ID, "error", err)
			return nil, toConnectError(err)
		}
		if err == nil && existing.CreatedBy != userID {
			skipped++
			continue
		}
		e.CreatedBy = userID
		if !known[e.GroupID] {
			e.GroupID = ""
		}
		if !files[e.ImportFileID] {
			e.ImportFileID = ""
		}
		expenses = append(expenses, e)
	}
	if err := s.store.SaveExpenses(ctx, expenses); err != nil {
		slog.Error("RestorePreferences failed on expenses", "error", err)
		return nil, toConnectError(err)
	}

	if err := s.save(ctx, userID, prefs.Preferences{Tiles: p.Tiles}); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Preferences restored", "user_id", userID, "expenses", len(expenses), "skipped", skipped, "files", len(files), "tiles", len(p.Tiles))
	return connect.NewResponse(&RestorePreferencesResponse{
		Expenses: len(expenses),
		Skipped:  skipped,
		Files:    len(files),
		Tiles:    len(p.Tiles),
	}), nil
}
