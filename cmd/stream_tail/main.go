// Stream_tail follows the live event stream and prints every envelope to
// stdout. Useful for watching the pipeline end to end during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"admissions-back/pkg/stream"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/api/v1/stream", "stream endpoint")
		token  = flag.String("token", "", "access token, if the stream requires auth")
		events = flag.String("events", "", "comma-separated event types to subscribe to (empty = all)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := stream.New(stream.Config{
		URL:   *url,
		Token: *token,
	})

	if *events != "" {
		types := strings.Split(*events, ",")
		for i := range types {
			types[i] = strings.TrimSpace(types[i])
		}

		if err := client.Subscribe(types...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	go func() {
		for payload := range client.Events() {
			fmt.Println(string(payload))
		}
	}()

	if err := client.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
