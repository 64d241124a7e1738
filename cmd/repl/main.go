package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"ocean-query-service/internal/app"
	"ocean-query-service/internal/config"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/services"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const prompt = "\nAsk a question (or type 'exit'): "

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Logs go to stderr so answers stay readable.
	logger, err := obs.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, logger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()

	if err := loop(ctx, a.Service, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func loop(ctx context.Context, svc *services.QueryService, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "":
			continue
		case strings.EqualFold(text, "exit"):
			return nil
		}

		res, err := svc.Ask(ctx, text, 1)
		if err != nil {
			fmt.Fprintf(out, "Could not answer: %v\n", err)
			continue
		}
		for _, a := range res.Answers {
			fmt.Fprintln(out, a.Summary())
		}
	}
}
