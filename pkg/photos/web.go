package photos

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"albumsync/pkg/config"
	"albumsync/pkg/errors"
)

const (
	// loginAttempts bounds the login retry loop. Exhausting it is fatal to
	// the process.
	loginAttempts = 5
	loginBackoff  = 5 * time.Second

	requestTimeout = 30 * time.Second

	// albumListLimit bounds a single album listing. DSM caps the page size
	// server-side anyway; one page is plenty for a personal library.
	albumListLimit = 5000
)

// WebClient implements Client against the DSM web API (entry.cgi).
type WebClient struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	creds      config.Credentials

	sid    string
	userID int
}

type apiError struct {
	API  string
	Code int
}

func (err apiError) Error() string {
	return fmt.Sprintf("%s returned error code %d", err.API, err.Code)
}

// Dial logs into DSM and resolves the authenticated user id. Login is
// retried with a fixed backoff; exhausting the budget returns a friendly
// error that aborts the run.
func Dial(creds config.Credentials, clock clockwork.Clock) (*WebClient, error) {
	client := &WebClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    fmt.Sprintf("http://%s:%d/webapi", creds.Host, creds.Port),
		clock:      clock,
		creds:      creds,
	}

	if err := client.login(); err != nil {
		return nil, err
	}
	if err := client.loadUserID(); err != nil {
		return nil, errors.WithContext(err, "resolve user id")
	}
	log.WithFields(log.Fields{
		"user": creds.Username,
		"host": creds.Host,
	}).Info("Logged in to Synology Photos")
	return client, nil
}

func (c *WebClient) login() error {
	params := url.Values{}
	params.Set("api", "SYNO.API.Auth")
	params.Set("method", "login")
	params.Set("version", "6")
	params.Set("account", c.creds.Username)
	params.Set("passwd", c.creds.Password)
	params.Set("format", "sid")
	if c.creds.OTPCode != "" {
		params.Set("otp_code", c.creds.OTPCode)
	}

	var lastErr error
	for attempt := 1; attempt <= loginAttempts; attempt++ {
		var result struct {
			SID string `json:"sid"`
		}
		lastErr = c.post("auth.cgi", params, &result)
		if lastErr == nil {
			c.sid = result.SID
			return nil
		}

		log.WithError(lastErr).WithField("attempt", attempt).
			Warn("Login attempt failed")
		if attempt < loginAttempts {
			c.clock.Sleep(loginBackoff)
		}
	}
	return errors.NewFriendlyError(
		"Unable to log in to %s:%d as %q after %d attempts.\n"+
			"Last error: %s", c.creds.Host, c.creds.Port, c.creds.Username,
		loginAttempts, lastErr)
}

func (c *WebClient) loadUserID() error {
	var result struct {
		ID int `json:"id"`
	}
	if err := c.call("SYNO.Foto.UserInfo", "me", 1, nil, &result); err != nil {
		return err
	}
	c.userID = result.ID
	return nil
}

// call invokes a Photos API method through entry.cgi and decodes the data
// envelope into out. out may be nil when the response payload is irrelevant.
func (c *WebClient) call(api, method string, version int, params url.Values, out interface{}) error {
	form := url.Values{}
	for key, values := range params {
		form[key] = values
	}
	form.Set("api", api)
	form.Set("method", method)
	form.Set("version", strconv.Itoa(version))
	form.Set("_sid", c.sid)
	if err := c.post("entry.cgi", form, out); err != nil {
		if _, ok := err.(apiError); ok {
			return err
		}
		return errors.WithContext(err, api)
	}
	return nil
}

func (c *WebClient) post(endpoint string, form url.Values, out interface{}) error {
	resp, err := c.httpClient.PostForm(c.baseURL+"/"+endpoint, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.WithContext(err, "decode response")
	}
	if !envelope.Success {
		return apiError{API: form.Get("api"), Code: envelope.Error.Code}
	}
	if out != nil && len(envelope.Data) != 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.WithContext(err, "decode data")
		}
	}
	return nil
}

// UserID implements Client.
func (c *WebClient) UserID() int {
	return c.userID
}

// ListAlbums implements Client.
func (c *WebClient) ListAlbums() ([]Album, error) {
	params := url.Values{}
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(albumListLimit))
	var result struct {
		List []Album `json:"list"`
	}
	if err := c.call("SYNO.Foto.Browse.Album", "list", 2, params, &result); err != nil {
		return nil, errors.RemoteServiceError{Op: "list albums", Cause: err}
	}
	return result.List, nil
}

// CreateAlbum implements Client.
func (c *WebClient) CreateAlbum(name string, condition Condition) (Album, error) {
	conditionJSON, err := json.Marshal(condition)
	if err != nil {
		return Album{}, errors.WithContext(err, "marshal condition")
	}

	params := url.Values{}
	params.Set("name", name)
	params.Set("condition", string(conditionJSON))
	var result struct {
		Album Album `json:"album"`
	}
	if err := c.call("SYNO.Foto.Browse.ConditionAlbum", "create", 2, params, &result); err != nil {
		return Album{}, errors.RemoteServiceError{Op: "create album", Name: name, Cause: err}
	}
	return result.Album, nil
}

// DeleteAlbum implements Client.
func (c *WebClient) DeleteAlbum(id int) error {
	params := url.Values{}
	params.Set("id", fmt.Sprintf("[%d]", id))
	if err := c.call("SYNO.Foto.Browse.Album", "delete", 2, params, nil); err != nil {
		return errors.RemoteServiceError{Op: "delete album", Name: strconv.Itoa(id), Cause: err}
	}
	return nil
}

// ShareAlbum implements Client. An empty target list leaves the album
// private without making a remote call.
func (c *WebClient) ShareAlbum(id int, targets []string, permission string, roles []string) error {
	if len(targets) == 0 {
		log.WithField("album", id).Debug("No share targets configured; leaving album private")
		return nil
	}

	members := make([]map[string]string, 0, len(targets))
	for _, target := range targets {
		member := map[string]string{
			"type": "user",
			"name": target,
		}
		if strings.HasPrefix(target, "@") {
			member["type"] = "group"
			member["name"] = strings.TrimPrefix(target, "@")
		}
		members = append(members, member)
	}
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return errors.WithContext(err, "marshal share targets")
	}

	normalizedRoles := NormalizeRoles(roles)
	rolesJSON, err := json.Marshal(normalizedRoles)
	if err != nil {
		return errors.WithContext(err, "marshal share roles")
	}

	params := url.Values{}
	params.Set("policy", "album")
	params.Set("album_id", strconv.Itoa(id))
	params.Set("enabled", "true")
	params.Set("users", string(membersJSON))
	params.Set("permission", NormalizeRole(permission))
	params.Set("roles", string(rolesJSON))
	if err := c.call("SYNO.Foto.Sharing.Passphrase", "set_shared", 1, params, nil); err != nil {
		return errors.RemoteServiceError{Op: "share album", Name: strconv.Itoa(id), Cause: err}
	}
	return nil
}

// ListFolders implements Client.
func (c *WebClient) ListFolders() ([]Folder, error) {
	var result struct {
		FolderFilter []Folder `json:"folder_filter"`
	}
	if err := c.call("SYNO.Foto.Search.Filter", "list", 2, nil, &result); err != nil {
		return nil, err
	}
	return result.FolderFilter, nil
}

// ListTeamFolders implements Client.
func (c *WebClient) ListTeamFolders(parentID int) ([]Folder, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(parentID))
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(albumListLimit))
	var result struct {
		List []Folder `json:"list"`
	}
	if err := c.call("SYNO.FotoTeam.Browse.Folder", "list", 2, params, &result); err != nil {
		return nil, errors.RemoteServiceError{Op: "list team folders", Cause: err}
	}
	return result.List, nil
}

// TriggerReindex implements Client.
func (c *WebClient) TriggerReindex() (bool, error) {
	params := url.Values{}
	params.Set("type", "basic")
	if err := c.call("SYNO.Foto.Index", "reindex", 1, params, nil); err != nil {
		return false, errors.RemoteServiceError{Op: "trigger reindex", Cause: err}
	}
	return true, nil
}
