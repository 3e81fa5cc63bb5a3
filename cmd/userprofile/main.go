// Command userprofile fetches and prints user profiles from the user API.
//
//	userprofile 1 2 3
package main

import (
	"fmt"
	"log"
	"os"

	"catalog/internal/config"
	"catalog/internal/logger"
	"catalog/pkg/userprofile"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: userprofile <user-id> [user-id...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// Logs go to stderr so stdout carries only the rendered profiles.
	closer, err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Format: "text",
		Output: "stderr",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closer.Close()

	profile := userprofile.NewProfile(userprofile.NewClient(cfg.UserAPIURL, cfg.UserAPITimeout))
	failed := false
	for _, id := range os.Args[1:] {
		fmt.Println(userprofile.View{State: userprofile.Loading}.Render())
		view := profile.Show(id)
		fmt.Println(view.Render())
		if view.State == userprofile.Failed {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
