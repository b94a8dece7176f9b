package services

import (
	"context"
	"fmt"
	"os"

	"github.com/username/investfolio/backend/src/logger"
	"github.com/username/investfolio/backend/src/parsers"
	"github.com/username/investfolio/backend/src/processors"
	"github.com/username/investfolio/backend/src/security/validation"
)

// StatementService turns a statement file on disk into stored rows:
// validate, parse with the source's parser, then hand off to IngestService.
type StatementService struct {
	ingest   *IngestService
	resolver processors.DerivativeCodeResolver
	maxSize  int64
}

func NewStatementService(ingest *IngestService, resolver processors.DerivativeCodeResolver, maxSize int64) *StatementService {
	return &StatementService{ingest: ingest, resolver: resolver, maxSize: maxSize}
}

func (s *StatementService) ProcessFile(ctx context.Context, path, source string) (*Summary, error) {
	parser, err := parsers.GetParser(source, s.resolver)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	if err := validation.ValidateStatementSize(info.Size(), s.maxSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	if err := validation.ValidateFileContentByMagicBytes(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}

	stmt, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	logger.L.Info("Statement parsed",
		"file", path,
		"portfolio", stmt.Portfolio,
		"securities", len(stmt.Securities),
		"trades", len(stmt.Trades),
		"events", len(stmt.Events))

	sum, err := s.ingest.IngestStatement(ctx, stmt)
	if err != nil {
		return nil, err
	}
	sum.File = path
	return sum, nil
}
