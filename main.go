package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Eys-55/StillPoint-sub000/internal/database"
	"github.com/Eys-55/StillPoint-sub000/internal/events"
	"github.com/Eys-55/StillPoint-sub000/internal/llm/client"
	"github.com/Eys-55/StillPoint-sub000/internal/logger"
	"github.com/Eys-55/StillPoint-sub000/internal/services"
	"github.com/Eys-55/StillPoint-sub000/internal/utils"
)

func main() {
	if err := utils.LoadEnv(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	log := logger.New("stillpoint.log", database.IsDevelopment())
	defer log.Sync()
	events.EnableLogEmitter(log)

	db, err := database.Init(database.Config{
		Path:     os.Getenv("STILLPOINT_DB_PATH"),
		LogLevel: gormlogger.Warn,
	})
	if err != nil {
		fmt.Println("Error opening database:", err)
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx := context.Background()

	keyringService := services.NewKeyringService()
	apiKey := keyringService.ResolveApiKey("gemini", "GEMINI_API_KEY")
	llmClient, err := client.NewGeminiClient(ctx, apiKey, log)
	if err != nil {
		fmt.Println("Error creating model client:", err)
		return
	}

	dbServices := services.NewDbServices(db, log)
	dbServices.ProfileContext.Startup(ctx)

	chatService := services.NewChatService(dbServices.Conversations, llmClient, dbServices.ProfileContext, log)
	chatService.Startup(ctx)

	userID := os.Getenv("STILLPOINT_USER_ID")
	if userID == "" {
		userID = "local"
	}

	mode := client.ModeLite
	if os.Getenv("STILLPOINT_THINKING") == "1" {
		mode = client.ModeThinking
	}
	temporary := len(os.Args) > 1 && os.Args[1] == "--temp"

	session, err := chatService.StartSession(ctx, userID, os.Getenv("STILLPOINT_CONVERSATION_ID"), temporary, mode)
	if err != nil {
		fmt.Println("Error starting session:", err)
		return
	}
	defer session.Close()

	fmt.Println("StillPoint. Type a message, /end to close with a summary, /key to manage API keys, /quit to leave.")
	if temporary {
		fmt.Println("Temporary chat: nothing will be saved.")
	}

	// Print streamed replies incrementally: each token event carries the
	// cumulative text, so print only the new suffix.
	var printed int
	events.SetCustomEmitter(func(ctx context.Context, name string, evt events.ChatEvent) {
		switch name {
		case events.ChatEventToken:
			if len(evt.Message) > printed {
				fmt.Print(evt.Message[printed:])
				printed = len(evt.Message)
			}
		case events.ChatEventDone, events.ChatEventError:
			if len(evt.Message) > printed {
				fmt.Print(evt.Message[printed:])
			}
			fmt.Println()
		}
	})

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit":
			return
		case "/end":
			title, summary, err := session.EndConversation(ctx)
			if err != nil {
				fmt.Println("Could not summarize:", err)
				continue
			}
			fmt.Printf("Saved as %q: %s\n", title, summary)
			return
		default:
			if strings.HasPrefix(line, "/key") {
				runKeyCommand(keyringService, line)
				continue
			}
			printed = 0
			if err := session.Submit(ctx, line); err != nil {
				if errors.Is(err, services.ErrSendInFlight) {
					fmt.Println("Still replying, hold on.")
					continue
				}
				fmt.Println("Send failed:", err)
			}
		}
	}
	log.Info("session closed", zap.String("userID", userID))
}

// runKeyCommand handles "/key set <provider> <key>", "/key delete <provider>"
// and "/key list".
func runKeyCommand(keys *services.KeyringService, line string) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		fmt.Println("Usage: /key set <provider> <key> | /key delete <provider> | /key list")
		return
	}
	switch fields[1] {
	case "set":
		if len(fields) != 4 {
			fmt.Println("Usage: /key set <provider> <key>")
			return
		}
		if err := keys.StoreApiKey(fields[2], []byte(fields[3])); err != nil {
			fmt.Println("Could not store key:", err)
			return
		}
		fmt.Println("Stored key for", fields[2])
	case "delete":
		if len(fields) != 3 {
			fmt.Println("Usage: /key delete <provider>")
			return
		}
		if err := keys.DeleteApiKey(fields[2]); err != nil {
			fmt.Println("Could not delete key:", err)
			return
		}
		fmt.Println("Deleted key for", fields[2])
	case "list":
		entries, err := keys.ListApiKeys()
		if err != nil {
			fmt.Println("Could not list keys:", err)
			return
		}
		if len(entries) == 0 {
			fmt.Println("No stored keys.")
			return
		}
		for _, entry := range entries {
			fmt.Println("-", entry["provider"])
		}
	default:
		fmt.Println("Usage: /key set <provider> <key> | /key delete <provider> | /key list")
	}
}
