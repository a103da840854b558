// Command parsemail extracts a reservation record from a mail body
// given on stdin or as a file argument and prints it as JSON.
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-yokoyama/reservemail/constants"
	"github.com/m-yokoyama/reservemail/internal/parser"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	var body []byte
	var err error
	switch len(os.Args) {
	case 1:
		body, err = io.ReadAll(os.Stdin)
	case 2:
		body, err = os.ReadFile(os.Args[1])
	default:
		logger.Error("usage", "cmd", "parsemail [file]")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("read input", "error", err)
		os.Exit(1)
	}
	if len(body) == 0 {
		logger.Error("empty input")
		os.Exit(1)
	}

	p := parser.New(logger, time.Now, constants.StatusNew)
	rec, vr := p.Parse(parser.RawDocument{
		Body:       string(body),
		ReceivedAt: time.Now().UTC(),
	})

	out := map[string]any{
		"record":     rec,
		"validation": vr,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
	if !vr.Passes {
		os.Exit(1)
	}
}
