package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// Uploads a recording to the API. By default the file is queued for the
// AI worker; with -sync it goes through the synchronous endpoint instead.
func main() {
	apiURL := flag.String("api", envOr("API_URL", "http://localhost:8000"), "API base URL")
	file := flag.String("file", "", "path to the audio file (.wav)")
	sync := flag.Bool("sync", false, "use the synchronous /voice/analyze-voice endpoint")
	key := flag.String("key", "", "Idempotency-Key header for queued uploads")
	flag.Parse()

	if *file == "" {
		log.Fatal("❌ -file is required")
	}
	if _, err := os.Stat(*file); err != nil {
		log.Fatalf("❌ Cannot read %s: %v", *file, err)
	}

	endpoint := "/analyze_voice"
	if *sync {
		endpoint = "/voice/analyze-voice"
	}

	client := resty.New().
		SetBaseURL(*apiURL).
		SetTimeout(2 * time.Minute)

	req := client.R().SetFile("file", *file)
	if *key != "" && !*sync {
		req.SetHeader("Idempotency-Key", *key)
	}

	log.Printf("📤 Sending %s to %s%s\n", filepath.Base(*file), *apiURL, endpoint)
	resp, err := req.Post(endpoint)
	if err != nil {
		log.Fatalf("❌ Request failed: %v", err)
	}

	body := resp.String()
	if resp.IsError() {
		log.Fatalf("❌ %s: %s", resp.Status(), gjson.Get(body, "error").String())
	}

	if *sync {
		fmt.Printf("🗣️  Transcription: %s\n", gjson.Get(body, "transcription").String())
		fmt.Printf("📝 Feedback:\n%s\n", gjson.Get(body, "feedback").String())
		return
	}

	fmt.Printf("✅ Queued as %s (%s)\n", gjson.Get(body, "id").String(), gjson.Get(body, "status").String())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
