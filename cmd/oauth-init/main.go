package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"kaskom/internal/mirror"
)

// oauth-init performs the one-time interactive OAuth flow for deployments
// that mirror the book to a sheet owned by a personal Google account instead
// of a service account. It saves the token where the worker's mirror loads
// it from (GOOGLE_OAUTH_TOKEN_FILE, default token.json).
func main() {
	_ = godotenv.Load()

	cfg, err := mirror.OAuthClientFromEnv()
	if err != nil {
		log.Fatalf("oauth client: %v", err)
	}
	if cfg == nil {
		log.Fatalf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}

	// The OAuth client must list http://localhost:<port>/callback among its
	// authorized redirect URIs.
	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	code, err := authorize(cfg, port)
	if err != nil {
		log.Fatalf("authorize: %v", err)
	}

	tok, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		log.Fatalf("token exchange: %v", err)
	}

	tokenFile := mirror.TokenFile()
	if err := saveToken(tokenFile, tok); err != nil {
		log.Fatalf("save token: %v", err)
	}
	fmt.Printf("Saved token to %s. The mirror will use it on the next run.\n", tokenFile)
}

// authorize serves the local redirect endpoint, prints the consent URL and
// waits for the browser to deliver the authorization code.
func authorize(cfg *oauth2.Config, port string) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			errCh <- errors.New("consent denied: " + errStr)
			return
		}
		fmt.Fprintln(w, "Authorized. You may close this window and return to the terminal.")
		codeCh <- r.URL.Query().Get("code")
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(5 * time.Minute):
		return "", errors.New("authorization timed out")
	case <-interrupt:
		return "", errors.New("interrupted")
	}
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
