package backup

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bachnx23/trello-backup/config"
	"github.com/bachnx23/trello-backup/internal/models"
)

var (
	specialChars   = regexp.MustCompile("[?\\[\\]/\\\\=<>:;,'\"&$#*()|~`!{}]")
	whitespaceRuns = regexp.MustCompile(`[\s-]+`)
)

// SanitizeFileName strips characters that are illegal or awkward in
// filenames, collapses runs of whitespace and dashes into a single dash and
// trims periods, dashes and underscores from both ends. Idempotent.
func SanitizeFileName(name string) string {
	name = specialChars.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, "-")
	return strings.Trim(name, ".-_")
}

// BoardPaths is where one board's backup lands on disk.
type BoardPaths struct {
	JSONPath      string // the board document
	AttachmentDir string // sibling directory holding downloaded attachments
}

// PlanBoardPath computes the destination paths for a board. The datetime
// suffix, when configured, is formatted from now in the configured timezone,
// so each call may yield a different name.
func PlanBoardPath(cfg *config.Config, board models.BoardSummary, now time.Time) BoardPaths {
	base := filepath.Join(cfg.Path, "trello")
	if board.Closed {
		base += "-CLOSED"
	}
	if board.OrgName != "" {
		base += "-org-" + SanitizeFileName(board.OrgName)
	}
	base += "-board-" + SanitizeFileName(board.Name)
	if cfg.FilenameAppendDatetime != "" {
		base += "-" + now.In(cfg.Location).Format(cfg.FilenameAppendDatetime)
	}

	return BoardPaths{JSONPath: base + ".json", AttachmentDir: base}
}
