package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case LoginResult:
		o.printLoginResult(v)
	case QueueEntry:
		o.printQueueEntry(v)
	case MatchStatus:
		o.printMatchStatus(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
type Account struct {
	Username string `json:"username"`
	Region   string `json:"region"`
	MMR      int    `json:"mmr"`
}

// LoginResult combines the account and its new token
type LoginResult struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Account      Account   `json:"account"`
}

// QueueEntry response type
type QueueEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Match response type
type Match struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Players       []Account `json:"players"`
	MMRDifference int       `json:"mmr_difference"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchStatus response type
type MatchStatus struct {
	State    string      `json:"state"`
	Entry    *QueueEntry `json:"entry,omitempty"`
	Position int         `json:"position,omitempty"`
	Match    *Match      `json:"match,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAccount(a Account) {
	fmt.Fprintf(o.w, "Account: %s\n", a.Username)
	fmt.Fprintf(o.w, "Region: %s\n", a.Region)
	fmt.Fprintf(o.w, "MMR: %d\n", a.MMR)
}

func (o *Output) printLoginResult(l LoginResult) {
	o.printAccount(l.Account)
	fmt.Fprintf(o.w, "Token: %s\n", l.SessionToken)
	fmt.Fprintf(o.w, "Expires: %s\n", l.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printQueueEntry(e QueueEntry) {
	fmt.Fprintf(o.w, "Queued for %s match (entry %s)\n", e.Kind, e.ID)
}

func (o *Output) printMatchStatus(s MatchStatus) {
	fmt.Fprintf(o.w, "State: %s\n", s.State)

	if s.Entry != nil {
		fmt.Fprintf(o.w, "Queue: %s\n", s.Entry.Kind)
		fmt.Fprintf(o.w, "Waiting since: %s\n", s.Entry.EnqueuedAt.Format(time.RFC3339))
		if s.Position > 0 {
			fmt.Fprintf(o.w, "Position: %d\n", s.Position)
		}
	}

	if s.Match != nil {
		fmt.Fprintf(o.w, "Match: %s (%s)\n", s.Match.ID, s.Match.Kind)
		for _, p := range s.Match.Players {
			fmt.Fprintf(o.w, "  - %s [%s] mmr %d\n", p.Username, p.Region, p.MMR)
		}
		fmt.Fprintf(o.w, "MMR difference: %d\n", s.Match.MMRDifference)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
