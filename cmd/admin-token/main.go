package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/timetable-admin-api/internal/service"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
)

func main() {
	var (
		subject string
		ttl     time.Duration
		asJSON  bool
	)
	flag.StringVar(&subject, "subject", "", "Name of the administrator the token is issued to")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default AUTH_TOKEN_TTL)")
	flag.BoolVar(&asJSON, "json", false, "Print the token and expiry as JSON")
	flag.Parse()

	if subject == "" {
		fmt.Fprintln(os.Stderr, "admin-token: -subject is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	issued, err := service.NewAuthService(cfg.Auth, nil).IssueToken(subject, ttl)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	if asJSON {
		if err := json.NewEncoder(os.Stdout).Encode(issued); err != nil {
			log.Fatalf("failed to encode token: %v", err)
		}
		return
	}
	fmt.Println(issued.Token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", issued.ExpiresAt.Format(time.RFC3339))
}
