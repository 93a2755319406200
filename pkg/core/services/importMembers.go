package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/exchange"
)

// ImportResult reports the outcome of a member import
type ImportResult struct {
	Added   []model.Member
	Skipped []exchange.Candidate
}

// MemberSheetClient reads member rows, header first, from a spreadsheet tab
type MemberSheetClient interface {
	ListMemberRows(spreadsheetID, tab string) ([][]string, error)
}

// ImportMembers adds the candidates that are not already members. A candidate
// is a duplicate when its name matches case-insensitively and it either has no
// email or the emails match too. Members added earlier in the same import count
// as existing. The document is written once, after all candidates are checked.
func ImportMembers(ctx context.Context, store DocumentStore, logger *zap.Logger, candidates []exchange.Candidate) (*ImportResult, error) {
	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, c := range candidates {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		email := strings.TrimSpace(c.Email)

		if isDuplicate(doc.Members, name, email) {
			logger.Debug("Skipping duplicate member", zap.String("name", name))
			result.Skipped = append(result.Skipped, c)
			continue
		}

		member := model.Member{
			ID:    doc.NewID(),
			Name:  name,
			Email: email,
			Phone: strings.TrimSpace(c.Phone),
		}
		doc.Members = append(doc.Members, member)
		result.Added = append(result.Added, member)
	}

	if len(result.Added) > 0 {
		if err := save(ctx, store, doc); err != nil {
			return nil, err
		}
	}

	logger.Info("Members imported",
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

func isDuplicate(members []model.Member, name, email string) bool {
	for _, m := range members {
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		if email == "" || strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

// ImportMembersFromSheet reads the member tab of a spreadsheet and imports it
// with the same rules as a CSV import
func ImportMembersFromSheet(ctx context.Context, store DocumentStore, sheets MemberSheetClient, logger *zap.Logger, spreadsheetID, tab string) (*ImportResult, error) {
	logger.Debug("Fetching member rows", zap.String("spreadsheet_id", spreadsheetID), zap.String("tab", tab))

	rows, err := sheets.ListMemberRows(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, &exchange.ImportFormatError{Reason: "sheet has no member rows"}
	}

	return ImportMembers(ctx, store, logger, exchange.MapMemberRows(rows))
}

// RestoreBackup replaces the whole document with the backup. The backup is
// decoded before anything is written, so an invalid file leaves the stored
// document untouched.
func RestoreBackup(ctx context.Context, store DocumentStore, logger *zap.Logger, data []byte) (*model.Document, error) {
	doc, err := exchange.DecodeBackup(data)
	if err != nil {
		return nil, err
	}

	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	logger.Info("Backup restored",
		zap.Int("members", len(doc.Members)),
		zap.Int("tasks", len(doc.Tasks)))
	return doc, nil
}
