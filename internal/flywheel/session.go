package flywheel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotAuthenticated means no usable Flywheel credential was found. The
// credential is owned by the Flywheel CLI; this tool never creates one.
var ErrNotAuthenticated = errors.New("no Flywheel session found: run `fw login <host>:<key>` or set FLYWHEEL_API_KEY")

// Credential is an API key bound to a Flywheel site, as issued by `fw login`.
type Credential struct {
	Host string
	Key  string
}

// cliSessionFile mirrors ~/.config/flywheel/user.json written by the CLI.
type cliSessionFile struct {
	Key string `json:"key"`
}

// ResolveCredential locates the ambient Flywheel credential. FLYWHEEL_API_KEY
// takes precedence; otherwise the CLI session file is read. Both carry a
// "host:key" pair in the format `fw login` accepts.
func ResolveCredential() (Credential, error) {
	if raw := strings.TrimSpace(os.Getenv("FLYWHEEL_API_KEY")); raw != "" {
		cred, err := parseAPIKey(raw)
		if err != nil {
			return Credential{}, fmt.Errorf("%w: FLYWHEEL_API_KEY is malformed", ErrNotAuthenticated)
		}
		return cred, nil
	}

	path, err := cliSessionPath()
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: no session file at %s", ErrNotAuthenticated, path)
	}

	var sess cliSessionFile
	if err := json.Unmarshal(data, &sess); err != nil {
		return Credential{}, fmt.Errorf("%w: session file %s is unreadable", ErrNotAuthenticated, path)
	}

	cred, err := parseAPIKey(strings.TrimSpace(sess.Key))
	if err != nil {
		return Credential{}, fmt.Errorf("%w: session file %s holds a malformed key", ErrNotAuthenticated, path)
	}
	return cred, nil
}

func cliSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "flywheel", "user.json"), nil
}

// parseAPIKey splits "host[:port]:key". The key is always the last segment;
// everything before it is the site address.
func parseAPIKey(raw string) (Credential, error) {
	idx := strings.LastIndex(raw, ":")
	if idx <= 0 || idx == len(raw)-1 {
		return Credential{}, errors.New("api key must look like host:key")
	}
	return Credential{Host: raw[:idx], Key: raw[idx+1:]}, nil
}

// BaseURL is the site's API root, e.g. https://upenn.flywheel.io.
func (c Credential) BaseURL() string {
	host := c.Host
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimSuffix(host, "/")
}
