package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// simulate hammers the booking endpoint with concurrent workers that
// all fight over the same few days. The point is to show that a slot is
// never double booked: every collision must come back as a 409.
type counters struct {
	created   atomic.Int64
	conflicts atomic.Int64
	rejected  atomic.Int64
	errors    atomic.Int64
}

func main() {
	baseURL := flag.String("base-url", "http://127.0.0.1:8080", "API base URL")
	workers := flag.Int("workers", 20, "concurrent booking workers")
	duration := flag.Duration("duration", 30*time.Second, "how long to run")
	days := flag.Int("days", 3, "how many upcoming weekdays to fight over")
	flag.Parse()

	log.SetFlags(log.LstdFlags)
	log.Printf("simulate: %d workers for %s against %s", *workers, *duration, *baseURL)

	dates := upcomingWeekdays(*days)
	slots := slotGrid()

	var c counters
	deadline := time.Now().Add(*duration)

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			client := &http.Client{Timeout: 5 * time.Second}
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

			for time.Now().Before(deadline) {
				date := dates[rng.Intn(len(dates))]
				slot := slots[rng.Intn(len(slots))]
				book(client, *baseURL, date, slot, id, &c)
			}
		}(w)
	}
	wg.Wait()

	total := c.created.Load() + c.conflicts.Load() + c.rejected.Load() + c.errors.Load()
	fmt.Printf("\n--- simulation report ---\n")
	fmt.Printf("requests:   %d\n", total)
	fmt.Printf("created:    %d\n", c.created.Load())
	fmt.Printf("conflicts:  %d (409, slot already taken)\n", c.conflicts.Load())
	fmt.Printf("rejected:   %d (400, calendar policy)\n", c.rejected.Load())
	fmt.Printf("errors:     %d\n", c.errors.Load())

	maxPossible := int64(len(dates) * len(slots))
	if c.created.Load() > maxPossible {
		fmt.Printf("!! created %d exceeds slot capacity %d: double booking happened\n",
			c.created.Load(), maxPossible)
	} else {
		fmt.Printf("capacity:   %d slots, no double booking observed\n", maxPossible)
	}
}

func book(client *http.Client, baseURL, date, slot string, worker int, c *counters) {
	payload, _ := json.Marshal(map[string]string{
		"patient_name": fmt.Sprintf("Load Tester %d", worker),
		"reason":       "Consultation",
		"date":         date,
		"time":         slot,
	})

	resp, err := client.Post(baseURL+"/api/appointments", "application/json", bytes.NewReader(payload))
	if err != nil {
		c.errors.Add(1)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusCreated:
		c.created.Add(1)
	case http.StatusConflict:
		c.conflicts.Add(1)
	case http.StatusBadRequest:
		c.rejected.Add(1)
	default:
		c.errors.Add(1)
	}
}

// upcomingWeekdays returns the next n dates that are not Saturday or
// Sunday, starting tomorrow so the today cutoff never interferes.
func upcomingWeekdays(n int) []string {
	var out []string
	d := time.Now().AddDate(0, 0, 1)
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d.Format("2006-01-02"))
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func slotGrid() []string {
	var out []string
	for h := 8; h < 17; h++ {
		out = append(out, fmt.Sprintf("%02d:00:00", h), fmt.Sprintf("%02d:30:00", h))
	}
	return out
}
