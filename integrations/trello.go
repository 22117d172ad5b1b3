package integrations

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/bachnx23/trello-backup/config"
	"github.com/bachnx23/trello-backup/internal/models"
)

const apiBaseURL = "https://api.trello.com/1"

var (
	// ErrNetworkFailure means the transport call itself failed.
	ErrNetworkFailure = errors.New("trello request failed")
	// ErrAPIAuth means Trello answered with an empty or undecodable body,
	// which in practice means the key/token pair is wrong.
	ErrAPIAuth = errors.New("unexpected trello response")
)

// boardExportParams asks the per-board endpoint for everything: actions,
// cards, lists, members and checklists, so the written file is a complete
// snapshot of the board.
var boardExportParams = map[string]string{
	"actions":                "all",
	"actions_limit":          "1000",
	"card_attachment_fields": "all",
	"cards":                  "all",
	"lists":                  "all",
	"members":                "all",
	"member_fields":          "all",
	"checklists":             "all",
	"fields":                 "all",
}

type TrelloClient struct {
	client *resty.Client
	key    string
	token  string
}

func NewTrelloClient(cfg *config.Config) *TrelloClient {
	client := resty.New().SetBaseURL(apiBaseURL)
	if cfg.Proxy != "" {
		client.SetProxy("http://" + cfg.Proxy)
	}
	if cfg.RequestTimeout > 0 {
		client.SetTimeout(cfg.RequestTimeout)
	}

	return &TrelloClient{
		client: client,
		key:    cfg.Key,
		token:  cfg.ApplicationToken,
	}
}

func (tc *TrelloClient) auth() map[string]string {
	return map[string]string{"key": tc.key, "token": tc.token}
}

// MemberBoards lists the boards owned by or shared with the authenticated
// user. An empty or undecodable response is treated as bad credentials.
func (tc *TrelloClient) MemberBoards() ([]models.RawBoard, error) {
	resp, err := tc.client.R().SetQueryParams(tc.auth()).Get("/members/me/boards")
	if err != nil {
		return nil, fmt.Errorf("%w: requesting boards - maybe try again later and/or check your internet connection: %v", ErrNetworkFailure, err)
	}

	var boards []models.RawBoard
	if err := json.Unmarshal(resp.Body(), &boards); err != nil || len(boards) == 0 {
		return nil, fmt.Errorf("%w: requesting your boards - maybe check your tokens are correct (status %s)", ErrAPIAuth, resp.Status())
	}

	return boards, nil
}

// MemberOrganizations lists the user's organizations. An empty list is fine:
// the user may simply belong to none.
func (tc *TrelloClient) MemberOrganizations() ([]models.Organization, error) {
	resp, err := tc.client.R().SetQueryParams(tc.auth()).Get("/members/me/organizations")
	if err != nil {
		return nil, fmt.Errorf("%w: requesting organizations: %v", ErrNetworkFailure, err)
	}

	var orgs []models.Organization
	if err := json.Unmarshal(resp.Body(), &orgs); err != nil {
		return nil, fmt.Errorf("%w: decoding organizations (status %s): %v", ErrAPIAuth, resp.Status(), err)
	}

	return orgs, nil
}

// OrganizationBoards lists the boards of one organization the user can read.
func (tc *TrelloClient) OrganizationBoards(org models.Organization) ([]models.RawBoard, error) {
	resp, err := tc.client.R().SetQueryParams(tc.auth()).Get("/organizations/" + org.ID + "/boards")
	if err != nil {
		return nil, fmt.Errorf("%w: requesting the organization %s boards: %v", ErrNetworkFailure, org.DisplayName, err)
	}

	var boards []models.RawBoard
	if err := json.Unmarshal(resp.Body(), &boards); err != nil || len(boards) == 0 {
		return nil, fmt.Errorf("%w: requesting the organization %s boards - maybe check your tokens are correct", ErrAPIAuth, org.DisplayName)
	}

	return boards, nil
}

// BoardExport fetches the full JSON document of one board. The returned
// bytes are exactly what Trello sent and are meant to be written to disk
// verbatim.
func (tc *TrelloClient) BoardExport(board models.BoardSummary) ([]byte, error) {
	resp, err := tc.client.R().
		SetQueryParams(boardExportParams).
		SetQueryParams(tc.auth()).
		Get("/boards/" + board.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading board %q (organization %q): %v", ErrNetworkFailure, board.Name, board.OrgName, err)
	}

	body := resp.Body()
	if len(body) == 0 || !json.Valid(body) {
		return nil, fmt.Errorf("%w: the board %q or organization %q could not be downloaded, response was: %s", ErrAPIAuth, board.Name, board.OrgName, resp.Status())
	}

	return body, nil
}

// DownloadAttachment fetches one attachment by its absolute URL. No
// key/token is sent: attachment URLs carry their own access.
func (tc *TrelloClient) DownloadAttachment(url string) ([]byte, error) {
	resp, err := tc.client.R().Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading attachment %s: %v", ErrNetworkFailure, url, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("downloading attachment %s: status %s", url, resp.Status())
	}

	return resp.Body(), nil
}
