package models

// Organization is the slice of a Trello organization object this tool needs
// to resolve board ownership.
type Organization struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// RawBoard mirrors a board object as returned by the board listing endpoints.
type RawBoard struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Closed         bool   `json:"closed"`
	IDOrganization string `json:"idOrganization"`
}

// BoardSummary is a board selected for backup, with its organization name
// already resolved.
type BoardSummary struct {
	ID      string
	Name    string
	OrgName string
	Closed  bool
}

// Attachment is a file referenced by a board action.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BoardActions decodes just enough of a full board export to reach the
// attachment metadata inside its action list. The export itself is persisted
// as raw bytes and never re-serialized through this type.
type BoardActions struct {
	Actions []struct {
		Data struct {
			Attachment *Attachment `json:"attachment"`
		} `json:"data"`
	} `json:"actions"`
}
