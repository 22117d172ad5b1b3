package backup

import (
	"errors"
	"fmt"

	"github.com/bachnx23/trello-backup/config"
	"github.com/bachnx23/trello-backup/internal/models"
)

// ErrNoBoardsFound means the selection filters left nothing to back up.
var ErrNoBoardsFound = errors.New("no boards found")

// SelectBoards merges the personal board list with the per-organization
// lists and applies the configured filters, producing the final ordered list
// of boards to back up.
//
// Merge order: organization boards first (organizations in the order Trello
// returned them), personal boards after. Duplicates by board ID keep the
// last occurrence's metadata, so a board appearing both in an organization
// list and in the personal list survives with its personal-list metadata.
// The output keeps the first-insertion order of surviving IDs.
func SelectBoards(personal []models.RawBoard, orgBoards map[string][]models.RawBoard, orgs []models.Organization, cfg *config.Config) ([]models.BoardSummary, error) {
	orgNames := make(map[string]string, len(orgs))
	for _, org := range orgs {
		orgNames[org.ID] = org.DisplayName
	}

	var merged []models.RawBoard
	if cfg.BackupAllOrganizationBoards {
		for _, org := range orgs {
			merged = append(merged, orgBoards[org.ID]...)
		}
	}
	merged = append(merged, personal...)

	ignore := nameSet(cfg.IgnoreBoards)
	allow := nameSet(cfg.BoardsToDownload)

	index := make(map[string]int)
	var selected []models.BoardSummary
	for _, board := range merged {
		if !cfg.BackupClosedBoards && board.Closed {
			continue
		}
		if _, skip := ignore[board.Name]; skip {
			continue
		}
		if len(allow) > 0 {
			if _, ok := allow[board.Name]; !ok {
				continue
			}
		}

		summary := models.BoardSummary{
			ID:      board.ID,
			Name:    board.Name,
			OrgName: orgNames[board.IDOrganization],
			Closed:  board.Closed,
		}
		if i, dup := index[board.ID]; dup {
			selected[i] = summary
			continue
		}
		index[board.ID] = len(selected)
		selected = append(selected, summary)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w in your account - please review your configuration or start by adding a board to your account", ErrNoBoardsFound)
	}

	return selected, nil
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
