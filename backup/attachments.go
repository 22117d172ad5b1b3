package backup

import (
	"encoding/json"

	"github.com/bachnx23/trello-backup/internal/models"
)

// ExtractAttachments walks a board document's action list and collects the
// attachments referenced there. Attachments are de-duplicated by URL: a
// later action for the same URL overwrites the recorded ID and name, while
// the output keeps the first-occurrence order of URLs.
func ExtractAttachments(boardJSON []byte) ([]models.Attachment, error) {
	var doc models.BoardActions
	if err := json.Unmarshal(boardJSON, &doc); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var out []models.Attachment
	for _, action := range doc.Actions {
		att := action.Data.Attachment
		if att == nil || att.URL == "" {
			continue
		}
		if i, seen := index[att.URL]; seen {
			out[i] = *att
			continue
		}
		index[att.URL] = len(out)
		out = append(out, *att)
	}

	return out, nil
}
