package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/spendboard/internal/currency"
	"github.com/mmynk/spendboard/internal/storage"
)

// ImportFileService manages remembered CSV imports.
type ImportFileService struct {
	store storage.Store
}

// NewImportFileService creates an ImportFileService with the given storage backend.
func NewImportFileService(store storage.Store) *ImportFileService {
	return &ImportFileService{store: store}
}

// ListFiles lists remembered imports, newest first.
func (s *ImportFileService) ListFiles(ctx context.Context, req *connect.Request[ListFilesRequest]) (*connect.Response[ListFilesResponse], error) {
	owner, err := ownerFilter(ctx, req.Msg.Mine)
	if err != nil {
		return nil, err
	}
	files, err := s.store.ListImportFiles(ctx, owner)
	if err != nil {
		slog.Error("ListFiles failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]ImportFile, len(files))
	for i, f := range files {
		out[i] = toImportFile(f)
	}
	return connect.NewResponse(&ListFilesResponse{Files: out}), nil
}

// UpdateFileCurrency changes an import's currency and re-tags its records.
func (s *ImportFileService) UpdateFileCurrency(ctx context.Context, req *connect.Request[UpdateFileCurrencyRequest]) (*connect.Response[UpdateFileCurrencyResponse], error) {
	slog.Info("UpdateFileCurrency request received", "file_id", req.Msg.FileID, "currency", req.Msg.Currency)

	code := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if !currency.Valid(code) {
		return nil, invalid("unknown currency " + req.Msg.Currency)
	}

	if err := s.store.UpdateImportFileCurrency(ctx, req.Msg.FileID, code); err != nil {
		slog.Error("UpdateFileCurrency failed", "file_id", req.Msg.FileID, "error", err)
		return nil, toConnectError(err)
	}
	file, err := s.store.GetImportFile(ctx, req.Msg.FileID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("File currency updated", "file_id", file.ID, "currency", code)
	return connect.NewResponse(&UpdateFileCurrencyResponse{File: toImportFile(*file)}), nil
}

// DeleteFile forgets an import. The records it produced stay.
func (s *ImportFileService) DeleteFile(ctx context.Context, req *connect.Request[DeleteFileRequest]) (*connect.Response[DeleteFileResponse], error) {
	slog.Info("DeleteFile request received", "file_id", req.Msg.FileID)

	if err := s.store.DeleteImportFile(ctx, req.Msg.FileID); err != nil {
		slog.Error("DeleteFile failed", "file_id", req.Msg.FileID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("File deleted", "file_id", req.Msg.FileID)
	return connect.NewResponse(&DeleteFileResponse{}), nil
}
