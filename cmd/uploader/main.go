package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	applogger "github.com/fadilmartias/resume-scanner/internal/logger"
	"github.com/fadilmartias/resume-scanner/internal/upload"
	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

type options struct {
	server    string
	token     string
	chunkSize int
	analyze   bool
	timeout   time.Duration
	files     []string
}

func parseArgs(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("uploader", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
uploader - send resumes to the resume scanner over WebSocket.

Usage:
  uploader [options] FILE...

Options:
`)
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.server, "server", "ws://localhost:8000", "Server base URL.")
	fs.StringVar(&opts.token, "token", "", "Bearer token when the server requires authentication.")
	fs.IntVar(&opts.chunkSize, "chunk", 1024, "Bytes per binary frame.")
	fs.BoolVar(&opts.analyze, "analyze", false, "Analyse a single file without storing it (/resume-analyze).")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "How long to wait for the result.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.files = fs.Args()
	if len(opts.files) == 0 {
		fs.Usage()
		return nil, errors.New("at least one file is required")
	}
	if opts.analyze && len(opts.files) != 1 {
		return nil, errors.New("-analyze takes exactly one file")
	}
	return opts, nil
}

func endpoint(opts *options) (string, error) {
	u, err := url.Parse(strings.TrimRight(opts.server, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if opts.analyze {
		u.Path += "/resume-analyze"
	} else {
		u.Path += "/multi-upload"
	}
	if opts.token != "" {
		q := u.Query()
		q.Set("token", opts.token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func run(opts *options, stdout io.Writer) error {
	files := make([]upload.File, 0, len(opts.files))
	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, upload.File{Name: filepath.Base(path), Data: data})
	}

	target, err := endpoint(opts)
	if err != nil {
		return err
	}
	header := http.Header{}
	if opts.token != "" {
		header.Set("Authorization", "Bearer "+opts.token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, header)
	if err != nil {
		return fmt.Errorf("connect %s: %w", target, err)
	}
	defer conn.Close()
	slog.Debug("connected", "url", target, "files", len(files))

	if err := upload.Send(conn, files, opts.chunkSize, !opts.analyze); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	for _, f := range files {
		color.New(color.FgGreen).Fprintf(stdout, "sent %s (%d bytes)\n", f.Name, len(f.Data))
	}

	if err := conn.SetReadDeadline(time.Now().Add(opts.timeout)); err != nil {
		return err
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("waiting for result: %w", err)
	}
	reply := string(msg)
	if strings.HasPrefix(reply, "Unexpected error: ") || strings.HasPrefix(reply, "Error processing resume: ") {
		return errors.New(reply)
	}
	fmt.Fprintln(stdout, reply)
	return nil
}

func main() {
	slog.SetDefault(applogger.New(os.Stderr, "development", os.Getenv("LOG_LEVEL")))

	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(opts, os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
