package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"socialnexus/internal/domain/social"
	"socialnexus/internal/infrastructure/kvstore"
	"socialnexus/internal/shared/auth"
	"socialnexus/internal/shared/config"
)

const usage = `Social Nexus Admin CLI - Management commands for stored profile links

Usage:
  admin <command> [options]

Commands:
  list-links    Show stored links for one or more users
  set-link      Store a profile link for a user
  clear-link    Remove a stored profile link
  hash-dev-secret
                Print a DEV_LOGIN_PASSWORD_HASH value for a dev login secret

Examples:
  # Show links for a specific user
  admin list-links --user-id=42

  # Show links for multiple users
  admin list-links --user-id=42,43

  # Show every stored link
  admin list-links --all

  # Store a YouTube link
  admin set-link --user-id=42 --provider=youtube --link=https://youtube.com/@nexus

  # Remove an Instagram link
  admin clear-link --user-id=42 --provider=instagram

  # Generate the dev login hash for .env
  admin hash-dev-secret --secret=letmein
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "list-links":
		runListLinks(os.Args[2:])
	case "set-link":
		runSetLink(os.Args[2:])
	case "clear-link":
		runClearLink(os.Args[2:])
	case "hash-dev-secret":
		runHashDevSecret(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}
}

// openStore loads the store settings and opens the configured link backend.
func openStore(ctx context.Context) (kvstore.Store, func() error) {
	cfg, err := config.LoadStore()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, closeStore, err := kvstore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open link store: %v", err)
	}
	return store, closeStore
}

func parseTimeout(s string) time.Duration {
	timeout, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}
	return timeout
}

func runListLinks(args []string) {
	fs := flag.NewFlagSet("list-links", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to show (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Show every user with a stored link")
	timeoutStr := fs.String("timeout", "1m", "Timeout for the operation (e.g., 30s, 5m)")

	fs.Usage = func() {
		fmt.Println("Usage: admin list-links [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin list-links --user-id=42")
		fmt.Println("  admin list-links --user-id=42,43")
		fmt.Println("  admin list-links --all")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout(*timeoutStr))
	defer cancel()

	store, closeStore := openStore(ctx)
	defer closeStore()

	var userIDs []string
	if *allUsers {
		keys, err := store.Keys(ctx, "social_")
		if err != nil {
			log.Fatalf("Failed to list keys: %v", err)
		}
		userIDs = usersFromKeys(keys)
		log.Printf("Found %d users with stored links", len(userIDs))
	} else {
		userIDs = splitUserIDs(*userIDStr)
	}

	if len(userIDs) == 0 {
		log.Println("No users to show")
		return
	}

	links := social.NewLinkStore(store)
	for _, uid := range userIDs {
		printLinks(uid, links.LoadAll(ctx, uid))
	}
}

func runSetLink(args []string) {
	fs := flag.NewFlagSet("set-link", flag.ExitOnError)

	userID := fs.String("user-id", "", "User ID that owns the link")
	providerStr := fs.String("provider", "", "Provider (youtube or instagram)")
	rawLink := fs.String("link", "", "Absolute profile URL")
	timeoutStr := fs.String("timeout", "30s", "Timeout for the operation")

	fs.Usage = func() {
		fmt.Println("Usage: admin set-link [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	uid, provider := requireTarget(fs, *userID, *providerStr)

	link, err := social.ValidateLink(*rawLink)
	if err != nil {
		log.Fatalf("Invalid link: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout(*timeoutStr))
	defer cancel()

	store, closeStore := openStore(ctx)
	defer closeStore()

	if err := social.NewLinkStore(store).Save(ctx, uid, provider, link); err != nil {
		log.Fatalf("Failed to save link: %v", err)
	}
	log.Printf("Stored %s link for user %s", provider.DisplayName(), uid)
}

func runClearLink(args []string) {
	fs := flag.NewFlagSet("clear-link", flag.ExitOnError)

	userID := fs.String("user-id", "", "User ID that owns the link")
	providerStr := fs.String("provider", "", "Provider (youtube or instagram)")
	timeoutStr := fs.String("timeout", "30s", "Timeout for the operation")

	fs.Usage = func() {
		fmt.Println("Usage: admin clear-link [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	uid, provider := requireTarget(fs, *userID, *providerStr)

	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout(*timeoutStr))
	defer cancel()

	store, closeStore := openStore(ctx)
	defer closeStore()

	if err := social.NewLinkStore(store).Clear(ctx, uid, provider); err != nil {
		log.Fatalf("Failed to clear link: %v", err)
	}
	log.Printf("Cleared %s link for user %s", provider.DisplayName(), uid)
}

func runHashDevSecret(args []string) {
	fs := flag.NewFlagSet("hash-dev-secret", flag.ExitOnError)

	secret := fs.String("secret", "", "Shared dev login secret to hash")

	fs.Usage = func() {
		fmt.Println("Usage: admin hash-dev-secret --secret=<secret>")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	hash, err := auth.HashDevSecret(*secret)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	fmt.Printf("DEV_LOGIN_PASSWORD_HASH=%s\n", hash)
}

// requireTarget exits unless a user and provider were given. It returns the
// trimmed user ID.
func requireTarget(fs *flag.FlagSet, userID, providerStr string) (string, social.Provider) {
	uid, provider, err := parseTarget(userID, providerStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	return uid, provider
}

func parseTarget(userID, providerStr string) (string, social.Provider, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", "", fmt.Errorf("must specify --user-id")
	}
	provider, err := social.ParseProvider(providerStr)
	if err != nil {
		return "", "", err
	}
	return uid, provider, nil
}

func splitUserIDs(s string) []string {
	var ids []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// usersFromKeys returns the distinct user IDs found in link storage keys.
func usersFromKeys(keys []string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, k := range keys {
		uid, _, ok := social.ParseStorageKey(k)
		if !ok || seen[uid] {
			continue
		}
		seen[uid] = true
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids
}

func printLinks(userID string, links map[social.Provider]string) {
	fmt.Printf("\n=== User %s ===\n", userID)
	for _, p := range social.Providers() {
		link, ok := links[p]
		if !ok {
			link = "(not connected)"
		}
		fmt.Printf("  %-10s %s\n", p.DisplayName()+":", link)
	}
}
