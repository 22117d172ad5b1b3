package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bachnx23/trello-backup/config"
	"github.com/bachnx23/trello-backup/database"
	"github.com/bachnx23/trello-backup/internal/models"
)

var (
	// ErrDirCreate means the destination directory could not be created.
	ErrDirCreate = errors.New("error creating backup dir")
	// ErrPermissionDenied means the destination directory exists but
	// rejects writes.
	ErrPermissionDenied = errors.New("no permission to write to backup dir")
	// ErrWrite means a board file could not be written.
	ErrWrite = errors.New("error writing backup file")
)

const manifestFile = ".backup.db"

// BoardFetcher is the slice of the Trello client the archiver needs.
type BoardFetcher interface {
	BoardExport(board models.BoardSummary) ([]byte, error)
	DownloadAttachment(url string) ([]byte, error)
}

// Archiver writes one JSON file per selected board into the destination
// directory, strictly sequentially, skipping boards whose file already
// exists so an interrupted run can simply be re-invoked.
type Archiver struct {
	cfg      *config.Config
	client   BoardFetcher
	manifest *database.Store
	now      func() time.Time
}

func NewArchiver(cfg *config.Config, client BoardFetcher) *Archiver {
	return &Archiver{cfg: cfg, client: client, now: time.Now}
}

// Run archives every board in order. The first board-level error aborts the
// run; only attachment downloads are allowed to fail without stopping it.
func (a *Archiver) Run(boards []models.BoardSummary) error {
	if err := a.prepareDestination(); err != nil {
		return err
	}

	if a.cfg.Manifest {
		store, err := database.Open(filepath.Join(a.cfg.Path, manifestFile))
		if err != nil {
			zap.L().Warn("Run manifest unavailable, continuing without it", zap.Error(err))
		} else {
			a.manifest = store
			defer store.Close()
		}
	}

	zap.L().Info("Boards to backup", zap.Int("count", len(boards)))

	for _, board := range boards {
		if err := a.archiveBoard(board); err != nil {
			return err
		}
	}

	zap.L().Info("Your Trello boards are now safely downloaded!")

	return nil
}

// prepareDestination creates the destination root when missing. When it
// already existed, a write probe enforces that this process may actually
// write there.
func (a *Archiver) prepareDestination() error {
	if _, err := os.Stat(a.cfg.Path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("%w %s: %v", ErrDirCreate, a.cfg.Path, err)
		}
		if err := os.MkdirAll(a.cfg.Path, 0o777); err != nil {
			return fmt.Errorf("%w - directory %s is not writeable: %v", ErrDirCreate, a.cfg.Path, err)
		}
		return nil
	}

	probe, err := os.CreateTemp(a.cfg.Path, ".trello-backup-probe-*")
	if err != nil {
		return fmt.Errorf("%w %s", ErrPermissionDenied, a.cfg.Path)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

func (a *Archiver) archiveBoard(board models.BoardSummary) error {
	paths := PlanBoardPath(a.cfg, board, a.now())

	if _, err := os.Stat(paths.JSONPath); err == nil {
		zap.L().Info("Backup already exists, skipping board",
			zap.String("board", board.Name),
			zap.String("file", paths.JSONPath))
		if a.manifest != nil {
			if err := a.manifest.TouchSeen(board, paths.JSONPath); err != nil {
				zap.L().Warn("Manifest update failed", zap.Error(err))
			}
		}
		return nil
	}

	zap.L().Info("Recording board",
		zap.String("board", board.Name),
		zap.String("organization", board.OrgName),
		zap.Bool("closed", board.Closed),
		zap.String("file", paths.JSONPath))

	body, err := a.client.BoardExport(board)
	if err != nil {
		return err
	}

	if err := os.WriteFile(paths.JSONPath, body, 0o644); err != nil {
		return fmt.Errorf("%w: an error occurred while writing to %s: %v", ErrWrite, paths.JSONPath, err)
	}

	attachmentCount := 0
	if a.cfg.BackupAttachments {
		attachmentCount = a.backupAttachments(board, body, paths)
	}

	if a.manifest != nil {
		if err := a.manifest.RecordBackup(board, paths.JSONPath, int64(len(body)), attachmentCount); err != nil {
			zap.L().Warn("Manifest update failed", zap.Error(err))
		}
	}

	return nil
}

// backupAttachments downloads every attachment referenced by the board's
// actions into the board's attachment directory. Failures here are logged
// and skipped: a missing attachment must not abort the whole run. Returns
// the number of attachments actually saved.
func (a *Archiver) backupAttachments(board models.BoardSummary, boardJSON []byte, paths BoardPaths) int {
	attachments, err := ExtractAttachments(boardJSON)
	if err != nil {
		zap.L().Warn("Could not extract attachments from board document",
			zap.String("board", board.Name), zap.Error(err))
		return 0
	}
	if len(attachments) == 0 {
		return 0
	}

	zap.L().Info("Attachments will now be downloaded and backed up",
		zap.String("board", board.Name),
		zap.Int("count", len(attachments)))

	if err := os.MkdirAll(paths.AttachmentDir, 0o777); err != nil {
		zap.L().Warn("Could not create attachment directory",
			zap.String("dir", paths.AttachmentDir), zap.Error(err))
		return 0
	}

	saved := 0
	for i, att := range attachments {
		target := filepath.Join(paths.AttachmentDir, SanitizeFileName(att.ID+"-"+att.Name))

		data, err := a.client.DownloadAttachment(att.URL)
		if err != nil {
			zap.L().Warn("Attachment download failed, continuing",
				zap.String("url", att.URL), zap.Error(err))
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			zap.L().Warn("Attachment write failed, continuing",
				zap.String("file", target), zap.Error(err))
			continue
		}

		saved++
		zap.L().Info("Attachment saved",
			zap.Int("n", i+1),
			zap.String("name", att.Name),
			zap.String("file", target))
	}

	return saved
}
