// Command get_token walks through the Gmail OAuth2 consent flow once and
// prints the refresh token the extractor bot needs for fetching and replying.
//
// Usage:
//
//	GMAIL_CLIENT_ID=... GMAIL_CLIENT_SECRET=... go run tools/get_token.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

func main() {
	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")

	if clientID == "" || clientSecret == "" {
		log.Fatal("Please set GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET environment variables")
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{gmail.GmailReadonlyScope, gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://localhost:8080/callback",
	}

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser: %v\n", authURL)
	fmt.Println("\nAfter authorization, copy the 'code' parameter from the redirect URL.")

	var authCode string
	fmt.Print("\nEnter the authorization code: ")
	fmt.Scan(&authCode)

	tok, err := cfg.Exchange(context.Background(), authCode)
	if err != nil {
		log.Fatalf("Unable to retrieve token from web: %v", err)
	}

	fmt.Printf("\nRefresh Token: %s\n", tok.RefreshToken)
	fmt.Printf("Expiry: %v\n", tok.Expiry)

	fmt.Println("\nAdd the refresh token to your environment:")
	fmt.Printf("export GMAIL_REFRESH_TOKEN=%q\n", tok.RefreshToken)
}
