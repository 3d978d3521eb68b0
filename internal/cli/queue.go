package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Matchmaking queue commands",
	}

	cmd.AddCommand(newQueueJoinCmd())
	cmd.AddCommand(newQueueLeaveCmd())
	cmd.AddCommand(newQueueStatusCmd())
	cmd.AddCommand(newQueueWatchCmd())

	return cmd
}

func newQueueJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "join <quick|ranked>",
		Short:     "Join a matchmaking queue",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"quick", "ranked"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"kind": args[0]}
			var result QueueEntry

			if err := client.Post("/api/v1/matchmaking/queue", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newQueueLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the matchmaking queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/matchmaking/queue"); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left the queue")
			return nil
		},
	}
}

func newQueueStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show matchmaking status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchStatus

			if err := client.Get("/api/v1/matchmaking/status", &result); err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newQueueWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Wait for the next match",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.Stream("/api/v1/matchmaking/events")
			if err != nil {
				return err
			}
			defer func() { _ = body.Close() }()

			match, err := waitForMatch(bufio.NewScanner(body))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(MatchStatus{State: "matched", Match: &match})
			return nil
		},
	}
}

// waitForMatch reads server-sent events until a match-found event arrives
func waitForMatch(scanner *bufio.Scanner) (Match, error) {
	var event string
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event == "match-found" {
				var match Match
				if err := json.Unmarshal([]byte(data.String()), &match); err != nil {
					return Match{}, fmt.Errorf("failed to parse match: %w", err)
				}
				return match, nil
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(line, "data: "))
		}
	}

	if err := scanner.Err(); err != nil {
		return Match{}, err
	}
	return Match{}, errors.New("event stream closed before a match was found")
}
