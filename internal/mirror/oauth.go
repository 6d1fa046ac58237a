package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// defaultTokenFile is where oauth-init saves the token when
// GOOGLE_OAUTH_TOKEN_FILE is unset.
const defaultTokenFile = "token.json"

// OAuthClientFromEnv loads the OAuth client registered for the mirror from
// GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE, scoped to the
// spreadsheet API. Used by the worker and by oauth-init so both agree on the
// client and scope.
func OAuthClientFromEnv() (*oauth2.Config, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, nil
	}

	cfg, err := google.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	return cfg, nil
}

// TokenFile returns the path the saved OAuth token lives at.
func TokenFile() string {
	if f := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")); f != "" {
		return f
	}
	return defaultTokenFile
}

// oauthTokenSource builds a refreshing token source from the token saved by
// oauth-init. Returns ok=false when no OAuth client is configured, so the
// caller can fall back to service-account credentials.
func oauthTokenSource(ctx context.Context) (oauth2.TokenSource, bool, error) {
	cfg, err := OAuthClientFromEnv()
	if err != nil {
		return nil, false, err
	}
	if cfg == nil {
		return nil, false, nil
	}

	tokenFile := TokenFile()
	b, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, false, fmt.Errorf("read oauth token %s (run oauth-init first): %w", tokenFile, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, false, fmt.Errorf("parse oauth token %s: %w", tokenFile, err)
	}

	return cfg.TokenSource(ctx, &tok), true, nil
}
