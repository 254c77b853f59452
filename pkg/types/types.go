package types

import (
	"fmt"
	"strconv"
	"strings"
)

// UserData is the account record served by the legacy api host
// (/users/{id} and /users/get-by-username). Field names follow that host's
// PascalCase keys.
type UserData struct {
	ID          int64   `json:"Id"`
	Username    string  `json:"Username"`
	AvatarURI   *string `json:"AvatarUri"`
	AvatarFinal *bool   `json:"AvatarFinal"`
	IsOnline    bool    `json:"IsOnline"`
}

// String renders the record the way the original wrapper printed users.
func (u UserData) String() string {
	return fmt.Sprintf("User(id=%d, username=%s, avatarURL=%s, avatarFinal=%s, is_online=%t)",
		u.ID, u.Username, optString(u.AvatarURI), optBool(u.AvatarFinal), u.IsOnline)
}

// UserProfile is the detail record from the users host (/v1/users/{id}).
type UserProfile struct {
	ID                     int64  `json:"id"`
	Name                   string `json:"name"`
	DisplayName            string `json:"displayName"`
	Description            string `json:"description"`
	Created                string `json:"created"`
	IsBanned               bool   `json:"isBanned"`
	ExternalAppDisplayName string `json:"externalAppDisplayName"`
	HasVerifiedBadge       bool   `json:"hasVerifiedBadge"`
}

// UserSearchHit is one entry of /v1/users/search.
type UserSearchHit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// CreatorRef identifies the owner of a game.
type CreatorRef struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	IsRNVAccount     bool   `json:"isRNVAccount"`
	HasVerifiedBadge bool   `json:"hasVerifiedBadge"`
}

// PlaceRef identifies a place inside a universe.
type PlaceRef struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// GameData is a universe as returned by /v1/games?universeIds=.
// It is an immutable snapshot; nothing refetches it.
type GameData struct {
	ID                        int64      `json:"id"`
	RootPlaceID               int64      `json:"rootPlaceId"`
	Name                      string     `json:"name"`
	Description               string     `json:"description"`
	SourceName                string     `json:"sourceName"`
	SourceDescription         string     `json:"sourceDescription"`
	Creator                   CreatorRef `json:"creator"`
	Price                     *int64     `json:"price"`
	AllowedGearGenres         []string   `json:"allowedGearGenres"`
	AllowedGearCategories     []string   `json:"allowedGearCategories"`
	IsGenreEnforced           bool       `json:"isGenreEnforced"`
	CopyingAllowed            bool       `json:"copyingAllowed"`
	Playing                   int64      `json:"playing"`
	Visits                    int64      `json:"visits"`
	MaxPlayers                int        `json:"maxPlayers"`
	Created                   string     `json:"created"`
	Updated                   string     `json:"updated"`
	StudioAccessToApisAllowed bool       `json:"studioAccessToApisAllowed"`
	CreateVipServersAllowed   bool       `json:"createVipServersAllowed"`
	UniverseAvatarType        string     `json:"universeAvatarType"`
	Genre                     string     `json:"genre"`
	IsAllGenre                bool       `json:"isAllGenre"`
	IsFavoritedByUser         bool       `json:"isFavoritedByUser"`
	FavoritedCount            int64      `json:"favoritedCount"`
}

func (g GameData) String() string {
	price := "None"
	if g.Price != nil {
		price = fmt.Sprintf("%d", *g.Price)
	}
	return fmt.Sprintf("Game(id=%d, name=%s, description=%s, sourceName=%s, sourceDescription=%s, "+
		"creator={id: %d, name: %s, type: %s}, price=%s, allowedGearGenres=[%s], allowedGearCategories=[%s], "+
		"isGenreEnforced=%t, copyingAllowed=%t, playing=%d, visits=%d, maxPlayers=%d, created=%s, updated=%s, "+
		"studioAccessToApisAllowed=%t, createVipServersAllowed=%t, universeAvatarType=%s, genre=%s, "+
		"isAllGenre=%t, isFavoritedByUser=%t, favoritedCount=%d)",
		g.ID, g.Name, g.Description, g.SourceName, g.SourceDescription,
		g.Creator.ID, g.Creator.Name, g.Creator.Type, price,
		strings.Join(g.AllowedGearGenres, ", "), strings.Join(g.AllowedGearCategories, ", "),
		g.IsGenreEnforced, g.CopyingAllowed, g.Playing, g.Visits, g.MaxPlayers, g.Created, g.Updated,
		g.StudioAccessToApisAllowed, g.CreateVipServersAllowed, g.UniverseAvatarType, g.Genre,
		g.IsAllGenre, g.IsFavoritedByUser, g.FavoritedCount)
}

// GameSummary is the shortened game record used in user and group game lists.
type GameSummary struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Creator     CreatorRef `json:"creator"`
	RootPlace   PlaceRef   `json:"rootPlace"`
	Created     string     `json:"created"`
	Updated     string     `json:"updated"`
	PlaceVisits int64      `json:"placeVisits"`
}

// GroupOwner is the owner block of a group.
type GroupOwner struct {
	UserID                     int64  `json:"userId"`
	Username                   string `json:"username"`
	DisplayName                string `json:"displayName"`
	BuildersClubMembershipType string `json:"buildersClubMembershipType"`
	HasVerifiedBadge           bool   `json:"hasVerifiedBadge"`
}

// Shout is a group's shout of the day.
type Shout struct {
	Body    string      `json:"body"`
	Poster  *GroupOwner `json:"poster"`
	Created string      `json:"created"`
	Updated string      `json:"updated"`
}

// GroupData is a group as returned by /v1/groups/{id}.
type GroupData struct {
	ID                 int64       `json:"id"`
	Name               string      `json:"name"`
	Description        string      `json:"description"`
	Owner              *GroupOwner `json:"owner"`
	Shout              *Shout      `json:"shout"`
	MemberCount        int64       `json:"memberCount"`
	IsBuildersClubOnly bool        `json:"isBuildersClubOnly"`
	PublicEntryAllowed bool        `json:"publicEntryAllowed"`
	HasVerifiedBadge   bool        `json:"hasVerifiedBadge"`
}

func (g GroupData) String() string {
	owner := "None"
	if g.Owner != nil {
		owner = fmt.Sprintf("{userId: %d, username: %s, displayName: %s}", g.Owner.UserID, g.Owner.Username, g.Owner.DisplayName)
	}
	shout := "None"
	if g.Shout != nil {
		shout = g.Shout.Body
	}
	return fmt.Sprintf("Group(id=%d, name=%s, description=%s, owner=%s, shout=%s, member=%d, builderClubOnly=%t, is_public=%t, badge=%t)",
		g.ID, g.Name, g.Description, owner, shout, g.MemberCount, g.IsBuildersClubOnly, g.PublicEntryAllowed, g.HasVerifiedBadge)
}

// WallPostPoster is the author block of a wall post.
type WallPostPoster struct {
	User *PosterUser `json:"user"`
	Role *Role       `json:"role"`
}

// PosterUser is the user half of a wall post author.
type PosterUser struct {
	UserID           int64  `json:"userId"`
	Username         string `json:"username"`
	DisplayName      string `json:"displayName"`
	HasVerifiedBadge bool   `json:"hasVerifiedBadge"`
}

// WallPost is one entry of a group wall.
type WallPost struct {
	ID      int64           `json:"id"`
	Poster  *WallPostPoster `json:"poster"`
	Body    string          `json:"body"`
	Created string          `json:"created"`
	Updated string          `json:"updated"`
}

// Role is a group role.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// GroupRef is the short group block inside role listings.
type GroupRef struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	MemberCount      int64  `json:"memberCount"`
	HasVerifiedBadge bool   `json:"hasVerifiedBadge"`
}

// GroupRole pairs a group with the role a user holds in it.
type GroupRole struct {
	Group GroupRef `json:"group"`
	Role  Role     `json:"role"`
}

// MessageRequest is the body of POST /v1/messages/send.
type MessageRequest struct {
	UserID                 int64  `json:"userId"`
	Subject                string `json:"subject"`
	Body                   string `json:"body"`
	RecipientID            int64  `json:"recipientId"`
	ReplyMessageID         *int64 `json:"replyMessageId"`
	IncludePreviousMessage bool   `json:"includePreviousMessage"`
}

// MessageResult is the response of POST /v1/messages/send.
type MessageResult struct {
	Success      bool   `json:"success"`
	ShortMessage string `json:"shortMessage"`
	Message      string `json:"message"`
}

// WallPostRequest is the body of POST /v2/groups/{id}/wall/posts. The captcha
// fields carry fixed placeholder values.
type WallPostRequest struct {
	Body            string `json:"body"`
	CaptchaID       string `json:"captchaId"`
	CaptchaToken    string `json:"captchaToken"`
	CaptchaProvider string `json:"captchaProvider"`
}

// WallPostResult is the post created by a wall post request.
type WallPostResult = WallPost

// SessionState tracks the login state machine of a client.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateLoggingIn
	StateReady
	StateFailed
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoggingIn:
		return "logging_in"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

func optString(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}

func optBool(b *bool) string {
	if b == nil {
		return "None"
	}
	return strconv.FormatBool(*b)
}

// Endpoints holds the base URL of every Roblox host the client talks to.
type Endpoints struct {
	API             string
	Games           string
	Users           string
	Groups          string
	PrivateMessages string
	Auth            string
	WWW             string
}
