package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCredentialGuide writes step-by-step instructions for obtaining API keys
func ShowCredentialGuide(w io.Writer) {
	line := strings.Repeat("=", 72)

	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "TWITTER API CREDENTIALS")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "tweetcrawl calls the REST API v1.1 and needs credentials from a")
	fmt.Fprintln(w, "developer app. Either set of credentials works:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  User context (OAuth 1.0a): consumer key, consumer secret,")
	fmt.Fprintln(w, "                             access token, access token secret")
	fmt.Fprintln(w, "  App only:                  bearer token")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Sign in at https://developer.twitter.com and open the portal")
	fmt.Fprintln(w, "STEP 2: Create a project and an app, or select an existing app")
	fmt.Fprintln(w, "STEP 3: Open 'Keys and tokens'")
	fmt.Fprintln(w, "   - 'API Key and Secret' are the consumer key and secret")
	fmt.Fprintln(w, "   - 'Access Token and Secret' must be generated for your account")
	fmt.Fprintln(w, "   - 'Bearer Token' is enough for app-only access")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rate limits are 900 timeline and 180 search requests per 15 minutes")
	fmt.Fprintln(w, "in user context. tweetcrawl pauses for 15 minutes when a limit is near.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Credentials give access to your account. Never share them; tweetcrawl")
	fmt.Fprintln(w, "keeps them in the system keychain or an encrypted file.")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
}

// ShowQuickGuide writes a condensed version for experienced users
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "Developer portal -> your app -> Keys and tokens")
	fmt.Fprintln(w, "Need: API key + secret and access token + secret, or a bearer token")
	fmt.Fprintln(w, "Run 'tweetcrawl auth login --help-keys' for detailed instructions")
}
