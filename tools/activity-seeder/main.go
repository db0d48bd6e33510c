// activity-seeder generates synthetic admin and claim traffic against a
// running engine: clean event creations, occasional suspicious titles that
// trip the anomaly detector, and claim bursts that exercise the windows.
//
// Usage:
//
//	go run ./tools/activity-seeder -server http://localhost:8086 -scenario scenario.yaml
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"
)

// Scenario tunes the generated traffic mix.
type Scenario struct {
	Admins          int           `yaml:"admins"`
	Events          int           `yaml:"events"`
	ClaimsPerEvent  int           `yaml:"claims_per_event"`
	SuspiciousRatio float64       `yaml:"suspicious_ratio"`
	OverrideRatio   float64       `yaml:"override_ratio"`
	Delay           time.Duration `yaml:"delay"`
}

func defaultScenario() Scenario {
	return Scenario{
		Admins:          5,
		Events:          20,
		ClaimsPerEvent:  8,
		SuspiciousRatio: 0.2,
		OverrideRatio:   0.3,
		Delay:           50 * time.Millisecond,
	}
}

var suspiciousWords = []string{"bot", "auto", "script", "spam", "mass"}

func main() {
	server := flag.String("server", "http://localhost:8086", "engine base URL")
	scenarioPath := flag.String("scenario", "", "path to scenario yaml")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	scenario := defaultScenario()
	if *scenarioPath != "" {
		data, err := os.ReadFile(*scenarioPath)
		if err != nil {
			log.Fatalf("failed to read scenario: %v", err)
		}
		if err := yaml.Unmarshal(data, &scenario); err != nil {
			log.Fatalf("failed to parse scenario: %v", err)
		}
	}

	if *seed != 0 {
		gofakeit.Seed(*seed)
		rand.Seed(*seed)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	admins := make([]string, scenario.Admins)
	for i := range admins {
		admins[i] = gofakeit.Username()
	}

	var created, warned, frozen, claimed, joined int

	for i := 0; i < scenario.Events; i++ {
		admin := admins[rand.Intn(len(admins))]
		title := gofakeit.Sentence(3)
		if rand.Float64() < scenario.SuspiciousRatio {
			title = fmt.Sprintf("%s %s giveaway", suspiciousWords[rand.Intn(len(suspiciousWords))], gofakeit.Word())
		}

		status, eventID := createEvent(client, *server, admin, title, false)
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			warned++
			// Some admins ignore the warning and proceed anyway.
			if rand.Float64() < scenario.OverrideRatio {
				if s, _ := createEvent(client, *server, admin, title, true); s == http.StatusLocked {
					frozen++
				}
			}
		case http.StatusLocked, http.StatusForbidden:
			// Frozen or revoked earlier in the run; keep going.
		}

		if eventID != "" {
			for j := 0; j < scenario.ClaimsPerEvent; j++ {
				subject := gofakeit.Email()
				// Duplicate subjects exercise the alreadyJoined path.
				if j > 0 && rand.Float64() < 0.3 {
					subject = "repeat-" + admin + "@example.com"
				}
				if already := claim(client, *server, eventID, subject); already {
					joined++
				} else {
					claimed++
				}
			}
		}

		time.Sleep(scenario.Delay)
	}

	log.Printf("done: created=%d warned=%d frozen=%d claimed=%d alreadyJoined=%d",
		created, warned, frozen, claimed, joined)
}

func createEvent(client *http.Client, server, admin, title string, override bool) (int, string) {
	max := 1
	body, _ := json.Marshal(map[string]any{
		"title":                title,
		"host":                 gofakeit.DomainName(),
		"claimIntervalDays":    30,
		"maxClaimsPerInterval": max,
	})

	req, err := http.NewRequest(http.MethodPost, server+"/events", bytes.NewReader(body))
	if err != nil {
		return 0, ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Id", admin)
	req.Header.Set("User-Agent", gofakeit.UserAgent())
	if override {
		req.Header.Set("X-Admin-Security-Override", "continue")
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("create event failed: %v", err)
		return 0, ""
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated {
		return resp.StatusCode, ""
	}
	var event struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return resp.StatusCode, ""
	}
	return resp.StatusCode, event.ID
}

func claim(client *http.Client, server, eventID, subject string) bool {
	body, _ := json.Marshal(map[string]string{
		"eventId": eventID,
		"subject": subject,
	})

	resp, err := client.Post(server+"/events/claim", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("claim failed: %v", err)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck

	var out struct {
		AlreadyJoined bool `json:"alreadyJoined"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out.AlreadyJoined
}
