// Command viewer inspects the message archive offline: it opens the
// BadgerDB mirror in read-only mode and renders one incident's traffic
// as a table, newest first.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"comms-hub/domain"
	"comms-hub/internal"
	"comms-hub/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=warn"`
}

func main() {
	incident := flag.String("incident", "", "incident ID to inspect (required)")
	limit := flag.Int("limit", 50, "maximum messages to display, 0 for all")
	flag.Parse()

	if *incident == "" {
		flag.Usage()
		os.Exit(2)
	}

	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in read-only mode
	// Note: BypassLockGuard allows opening while the pipeline holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer db.Close()

	archive := repositories.NewMessageArchive(db, internal.LoggerFromString(config.LogLevel))
	messages, err := archive.Messages(*incident, *limit)
	if err != nil {
		log.Fatalf("Failed to read archive: %v", err)
	}
	if len(messages) == 0 {
		color.Yellow.Printf("No archived messages for incident %s\n", *incident)
		return
	}

	color.Green.Printf("Incident %s: %d archived message(s), newest first\n", *incident, len(messages))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Sender", "Role", "Channel", "Read", "Message"})
	for _, m := range messages {
		table.Append([]string{
			m.CreatedAt.Format("15:04:05"),
			m.Sender,
			renderSenderType(m.SenderType),
			string(m.Channel),
			fmt.Sprintf("%t", m.Read),
			m.Body,
		})
	}
	table.Render()
}

func renderSenderType(senderType domain.SenderType) string {
	switch senderType {
	case domain.Responder:
		return color.Green.Render(string(senderType))
	case domain.Dispatcher:
		return color.Cyan.Render(string(senderType))
	default:
		return color.Yellow.Render(string(senderType))
	}
}
