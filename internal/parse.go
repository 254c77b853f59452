package internal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jamesprial/go-roblox-api-wrapper/pkg/types"
)

// Required keys per resource. A payload lacking any of them is treated as a
// missing resource rather than decoded into a zero value.
var (
	userKeys    = []string{"Id", "Username"}
	profileKeys = []string{"id"}
	gameKeys    = []string{"id", "name"}
	groupKeys   = []string{"id", "name"}
	dataKeys    = []string{"data"}
)

// MissingKeyError reports a required key absent from a JSON object.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required key %q", e.Key)
}

// ErrEmptyData is returned when a data envelope holds no elements.
var ErrEmptyData = errors.New("response data is empty")

// Parser handles parsing of Roblox API responses
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// decodeObject verifies that every required key is present in the JSON
// object, then decodes it into v.
func (p *Parser) decodeObject(data []byte, required []string, v any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse object: %w", err)
	}
	for _, key := range required {
		if _, ok := fields[key]; !ok {
			return &MissingKeyError{Key: key}
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse object: %w", err)
	}
	return nil
}

// ParseUser decodes a legacy api host user record.
func (p *Parser) ParseUser(data []byte) (*types.UserData, error) {
	var user types.UserData
	if err := p.decodeObject(data, userKeys, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ParseUsers decodes a bare JSON array of user records (the friends list).
func (p *Parser) ParseUsers(data []byte) ([]*types.UserData, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse user list: %w", err)
	}
	users := make([]*types.UserData, 0, len(raw))
	for i, item := range raw {
		user, err := p.ParseUser(item)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// ParseProfile decodes a users host profile record.
func (p *Parser) ParseProfile(data []byte) (*types.UserProfile, error) {
	var profile types.UserProfile
	if err := p.decodeObject(data, profileKeys, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ParseGame decodes the first universe of a /v1/games response.
func (p *Parser) ParseGame(data []byte) (*types.GameData, error) {
	items, err := p.rawData(data)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyData
	}

	var game types.GameData
	if err := p.decodeObject(items[0], gameKeys, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// ParseGroup decodes a /v1/groups/{id} record.
func (p *Parser) ParseGroup(data []byte) (*types.GroupData, error) {
	var group types.GroupData
	if err := p.decodeObject(data, groupKeys, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ParseGameSummaries decodes a data envelope of game list records.
func (p *Parser) ParseGameSummaries(data []byte) ([]types.GameSummary, error) {
	return parseData[types.GameSummary](p, data)
}

// ParseWallPosts decodes a data envelope of group wall posts.
func (p *Parser) ParseWallPosts(data []byte) ([]types.WallPost, error) {
	return parseData[types.WallPost](p, data)
}

// ParseGroupRoles decodes a data envelope of group/role pairs.
func (p *Parser) ParseGroupRoles(data []byte) ([]types.GroupRole, error) {
	return parseData[types.GroupRole](p, data)
}

// ParseSearchHits decodes a data envelope of user search results.
func (p *Parser) ParseSearchHits(data []byte) ([]types.UserSearchHit, error) {
	return parseData[types.UserSearchHit](p, data)
}

// ParseUsernameHistory returns past usernames in server order.
func (p *Parser) ParseUsernameHistory(data []byte) ([]string, error) {
	entries, err := parseData[struct {
		Name string `json:"name"`
	}](p, data)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names, nil
}

// rawData returns the elements of the "data" array of a response envelope.
func (p *Parser) rawData(data []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := p.decodeObject(data, dataKeys, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func parseData[T any](p *Parser, data []byte) ([]T, error) {
	items, err := p.rawData(data)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("failed to parse element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
