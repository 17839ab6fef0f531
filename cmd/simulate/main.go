package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// simulate races N concurrent creation attempts at the same teacher, weekday
// and slot. Exactly one should succeed; everything else should come back as a
// conflict. Any other outcome means the conflict guard has a hole.
func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "api-server base URL")
	teacherID := flag.String("teacher-id", "", "teacher UUID to contend on (required)")
	weekday := flag.String("weekday", "Monday", "weekday to request")
	timeSlot := flag.String("time-slot", "9:00 AM - 10:00 AM", "slot label to request")
	workers := flag.Int("workers", 20, "number of concurrent booking attempts")
	flag.Parse()

	if *teacherID == "" {
		log.Fatal("-teacher-id is required")
	}

	gofakeit.Seed(time.Now().UnixNano())

	var created, conflicts, failures int64
	var wg sync.WaitGroup

	client := &http.Client{Timeout: 10 * time.Second}
	start := time.Now()

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			status, body, err := attemptBooking(client, *baseURL, *teacherID, *weekday, *timeSlot)
			switch {
			case err != nil:
				atomic.AddInt64(&failures, 1)
				log.Printf("request error: %v", err)
			case status == http.StatusCreated:
				atomic.AddInt64(&created, 1)
			case status == http.StatusConflict:
				atomic.AddInt64(&conflicts, 1)
			default:
				atomic.AddInt64(&failures, 1)
				log.Printf("unexpected status %d: %s", status, body)
			}
		}()
	}

	wg.Wait()

	fmt.Printf("workers=%d created=%d conflicts=%d failures=%d took=%s\n",
		*workers, created, conflicts, failures, time.Since(start))

	if created == 1 && conflicts == int64(*workers)-1 {
		fmt.Println("conflict exclusivity held: exactly one booking won the slot")
	} else {
		fmt.Println("WARNING: expected exactly one success and conflicts for the rest")
	}
}

func attemptBooking(client *http.Client, baseURL, teacherID, weekday, timeSlot string) (int, string, error) {
	payload := map[string]any{
		"teacher_id": teacherID,
		"weekday":    weekday,
		"time_slot":  timeSlot,
		"student": map[string]any{
			"name":  gofakeit.Name(),
			"email": gofakeit.Email(),
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}

	resp, err := client.Post(baseURL+"/appointments", "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}
