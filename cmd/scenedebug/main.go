package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scenedebug/internal/app"
	"scenedebug/internal/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		scenePath    = flag.String("scene", "", "scene file to load (defaults to the scenePath setting)")
		settingsPath = flag.String("settings", "scenedebug.yaml", "settings file (.yaml, .json or .xml)")
		addr         = flag.String("addr", "", "debug server address, \"off\" to disable")
		dump         = flag.String("dump", "", "print the tree under this path and exit (\".\" for the scene roots)")
		depth        = flag.Int("depth", 1, "levels to expand with -dump")
		eval         = flag.String("eval", "", "evaluate a Go expression against the scene and exit")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	settings, err := config.Open(*settingsPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load settings")
	}
	if *addr != "" {
		settings.Override(func(s *config.Settings) {
			s.HTTPAddr = *addr
			if *addr == "off" {
				s.HTTPAddr = ""
			}
		})
	}

	path := *scenePath
	if path == "" {
		path = settings.Get().ScenePath
	}
	var a *app.App
	if path == "" {
		a, err = app.New(settings, nil)
	} else {
		a, err = app.Load(settings, path)
	}
	if err != nil {
		log.WithError(err).Fatal("Failed to start")
	}
	a.AttachLogger(log.StandardLogger())

	switch {
	case *dump != "":
		p := *dump
		if p == "." {
			p = ""
		}
		if err := a.Dump(os.Stdout, p, *depth); err != nil {
			log.WithError(err).Fatal("Dump failed")
		}
		return
	case *eval != "":
		out, err := a.Script.Eval(*eval)
		if err != nil {
			log.WithError(err).Fatal("Eval failed")
		}
		fmt.Println(out)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := make(chan string)
	go readLines(ctx, input)

	if err := a.Run(ctx, input); err != nil {
		log.WithError(err).Fatal("Frame loop failed")
	}
}

// readLines feeds stdin to the frame loop one line at a time and closes
// input at EOF.
func readLines(ctx context.Context, input chan<- string) {
	defer close(input)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		select {
		case input <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.WithError(err).Warn("Stopped reading stdin")
	}
}
