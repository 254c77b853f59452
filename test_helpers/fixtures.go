package test_helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Fixture payloads shaped like real Roblox responses.
const (
	RobloxUserJSON = `{"Id":1,"Username":"Roblox","AvatarUri":null,"AvatarFinal":null,"IsOnline":false}`

	BotUserJSON = `{"Id":261,"Username":"ArticBot","AvatarUri":"https://t0.rbxcdn.com/avatar","AvatarFinal":true,"IsOnline":true}`

	RobloxProfileJSON = `{"description":"Welcome to the Roblox profile!","created":"2006-02-27T21:06:40.3Z","isBanned":false,` +
		`"externalAppDisplayName":null,"hasVerifiedBadge":true,"id":1,"name":"Roblox","displayName":"Roblox"}`

	GameJSON = `{"data":[{"id":13058,"rootPlaceId":1818,"name":"Classic: Crossroads","description":"The classic.",` +
		`"sourceName":"Classic: Crossroads","sourceDescription":"The classic.",` +
		`"creator":{"id":1,"name":"Roblox","type":"User","isRNVAccount":false,"hasVerifiedBadge":true},` +
		`"price":null,"allowedGearGenres":["All"],"allowedGearCategories":[],"isGenreEnforced":true,` +
		`"copyingAllowed":false,"playing":42,"visits":13000000,"maxPlayers":10,` +
		`"created":"2007-05-01T01:07:04.78Z","updated":"2023-01-12T20:56:36.143Z",` +
		`"studioAccessToApisAllowed":false,"createVipServersAllowed":false,"universeAvatarType":"MorphToR6",` +
		`"genre":"All","isAllGenre":true,"isFavoritedByUser":false,"favoritedCount":31}]}`

	GroupJSON = `{"id":1,"name":"RobloHunks","description":"",` +
		`"owner":{"buildersClubMembershipType":"None","hasVerifiedBadge":false,"userId":1179762,"username":"RobloTim","displayName":"RobloTim"},` +
		`"shout":null,"memberCount":42560,"isBuildersClubOnly":false,"publicEntryAllowed":true,"hasVerifiedBadge":false}`

	GamesListJSON = `{"previousPageCursor":null,"nextPageCursor":null,"data":[` +
		`{"id":13058,"name":"Classic: Crossroads","description":"The classic.","creator":{"id":1,"type":"User"},` +
		`"rootPlace":{"id":1818,"type":"Place"},"created":"2007-05-01T01:07:04.78Z","updated":"2023-01-12T20:56:36.143Z","placeVisits":13000000},` +
		`{"id":2,"name":"Second","description":"","creator":{"id":1,"type":"User"},` +
		`"rootPlace":{"id":3,"type":"Place"},"created":"2010-01-01T00:00:00Z","updated":"2011-01-01T00:00:00Z","placeVisits":5}]}`

	UsernameHistoryJSON = `{"previousPageCursor":null,"nextPageCursor":null,"data":[{"name":"OldName"},{"name":"OlderName"}]}`

	WallPostsJSON = `{"previousPageCursor":null,"nextPageCursor":null,"data":[` +
		`{"id":101,"poster":{"user":{"userId":2,"username":"John","displayName":"John","hasVerifiedBadge":false},"role":{"id":5,"name":"Member","rank":1}},` +
		`"body":"hello wall","created":"2023-01-01T00:00:00Z","updated":"2023-01-01T00:00:00Z"}]}`

	RolesJSON = `{"data":[{"group":{"id":1,"name":"RobloHunks","memberCount":42560,"hasVerifiedBadge":false},"role":{"id":5,"name":"Member","rank":1}}]}`
)

// ErrorJSON renders a Roblox error envelope.
func ErrorJSON(code int, message string) string {
	body, _ := json.Marshal(map[string]any{
		"errors": []map[string]any{{"code": code, "message": message}},
	})
	return string(body)
}

// UserJSON renders a legacy api host user record.
func UserJSON(id int64, username string) string {
	return fmt.Sprintf(`{"Id":%d,"Username":%q,"AvatarUri":null,"AvatarFinal":false,"IsOnline":false}`, id, username)
}

// SetupIdentity answers the username lookup performed when a client is built.
func (f *FakeRoblox) SetupIdentity(username, userJSON string) {
	f.SetJSON(http.MethodGet, PrefixAPI+"/users/get-by-username?username="+url.QueryEscape(username), http.StatusOK, userJSON)
}

// SetupUser answers GET /users/{id} on the api host.
func (f *FakeRoblox) SetupUser(id int64, userJSON string) {
	f.SetJSON(http.MethodGet, fmt.Sprintf("%s/users/%d", PrefixAPI, id), http.StatusOK, userJSON)
}

// SetupLogin configures the token fetch and the login form endpoint. The
// logout call always answers 403 with the token header, as Roblox does.
func (f *FakeRoblox) SetupLogin(csrfToken string, loginStatus int, loginBody string) {
	f.SetResponse(http.MethodPost, PrefixAuth+"/v2/logout", &MockResponse{
		Status:  http.StatusForbidden,
		Body:    ErrorJSON(0, "Token Validation Failed"),
		Headers: map[string]string{"Content-Type": "application/json", "X-CSRF-Token": csrfToken},
	})
	f.SetJSON(http.MethodPost, PrefixWWW+"/", loginStatus, loginBody)
}
