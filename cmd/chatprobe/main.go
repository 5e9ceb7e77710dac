// Command chatprobe exercises a running server: it checks health, sends a
// few chat messages for one session and prints what comes back. With -nats
// it also tails the chat event stream until interrupted.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"roboto-sai-be/internal/dto"
	"roboto-sai-be/pkg/events"
	pktNats "roboto-sai-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	baseURL := flag.String("base", "http://localhost:8000/api", "API base URL")
	token := flag.String("token", "", "optional bearer token")
	session := flag.String("session", "", "session id (random when empty)")
	messages := flag.String("messages", "hello there|please list directory C:\\projects\\|why is the sky blue?", "pipe separated messages to send")
	natsURL := flag.String("nats", "", "NATS URL to tail chat events from")
	flag.Parse()

	if *session == "" {
		*session = "probe-" + uuid.NewString()[:8]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *natsURL != "" {
		sub, err := watch(ctx, *natsURL)
		if err != nil {
			color.Red("NATS watch unavailable: %v", err)
		} else {
			defer sub.Close()
		}
	}

	client := &http.Client{Timeout: 3 * time.Minute}

	color.Cyan("Probing %s (session %s)\n", *baseURL, *session)

	color.Yellow("\n[1] Health")
	status, body, err := call(ctx, client, http.MethodGet, *baseURL+"/health", *token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %d", status)
	prettyPrint(body)

	for i, msg := range strings.Split(*messages, "|") {
		msg = strings.TrimSpace(msg)
		if msg == "" {
			continue
		}
		color.Yellow("\n[%d] Chat: %q", i+2, msg)

		start := time.Now()
		status, body, err := call(ctx, client, http.MethodPost, *baseURL+"/chat", *token, dto.ChatRequest{
			Message:   msg,
			SessionId: *session,
		})
		if err != nil {
			color.Red("Failed: %v", err)
			continue
		}
		if status != http.StatusOK {
			color.Red("Status: %d", status)
			prettyPrint(body)
			continue
		}

		var res dto.ChatResponse
		if err := json.Unmarshal(body, &res); err != nil {
			color.Red("Bad response: %v", err)
			continue
		}
		color.Green("Mode: %s (%.2fs)", res.Mode, time.Since(start).Seconds())
		fmt.Printf("Reply: %s\n", res.Reply)
		for _, e := range res.Events {
			if e.Type == "tool_call" {
				color.Magenta("Tool call: %v", e.Data)
			}
		}
	}

	color.Yellow("\n[*] History")
	status, body, err = call(ctx, client, http.MethodGet, *baseURL+"/chat/history?session_id="+*session, *token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %d", status)
		prettyPrint(body)
	}

	if *natsURL != "" {
		color.Cyan("\nWatching chat events, Ctrl+C to stop")
		<-ctx.Done()
	}
}

func watch(ctx context.Context, url string) (*pktNats.Subscriber, error) {
	sub, err := pktNats.NewSubscriber(url)
	if err != nil {
		return nil, err
	}
	err = sub.Subscribe(ctx, pktNats.SubjectPrefix+".>", "", func(_ context.Context, event events.Event) error {
		color.Blue("[event] %s %s", event.Timestamp().Format(time.RFC3339), event.EventType())
		prettyPrint(event.Payload())
		return nil
	})
	if err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}

func call(ctx context.Context, client *http.Client, method, url, token string, body interface{}) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, err
}

// prettyPrint accepts raw JSON bytes or any value.
func prettyPrint(v interface{}) {
	if raw, ok := v.([]byte); ok {
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			fmt.Println(string(raw))
			return
		}
		v = decoded
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}
