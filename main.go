package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"ayu/internal/client"
	"ayu/internal/console"
	"ayu/internal/logging"
	"ayu/internal/params"
	"ayu/internal/transport"
)

func main() {
	gameURL := flag.String("url", "", "game URL, including the #game=... fragment")
	create := flag.Int("create", 0, "create a game of this size on the server at -url and print its links")
	debug := flag.Bool("debug", false, "enable debug logging")
	version := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("ayu %s (%s)\n", commit, buildDate)
		return
	}
	logging.Setup(os.Stderr, *debug)

	if err := mainInner(*gameURL, *create); err != nil {
		log.Fatal(err)
	}
}

func mainInner(gameURL string, create int) error {
	if gameURL == "" {
		return errors.New("-url is required")
	}
	store, page, err := params.FromURL(gameURL)
	if err != nil {
		return err
	}
	// long-poll requests are held open by the server, so no client timeout
	tc := transport.NewClient(page, &http.Client{}, "ayu/"+commit)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if create > 0 {
		return createGame(ctx, tc, page, create)
	}

	ui := console.New(os.Stdout)
	s, err := client.New(client.Config{
		Params:   store,
		Poller:   tc,
		Updater:  tc,
		Board:    ui,
		History:  ui,
		Clock:    ui,
		Notifier: ui,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(ctx) })
	go func() {
		// stdin cannot be interrupted, so the reader is not part of the group
		err := console.ReadCommands(os.Stdin, os.Stdout, &s.Cells, &s.Entries)
		if err != nil && !errors.Is(err, console.ErrQuit) {
			log.Printf("reading commands: %v", err)
		}
		cancel()
	}()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func createGame(ctx context.Context, tc *transport.Client, page *url.URL, size int) error {
	created, err := tc.Create(ctx, size)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	base := *page
	base.Fragment = ""
	base.RawFragment = ""
	links := params.GameLinks(base.String(), created)
	for i, name := range []string{"spectator", "white", "black", "both"} {
		fmt.Printf("%-9s %s\n", name, links[i])
	}
	return nil
}
