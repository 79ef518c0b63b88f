package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Service name (e.g., gateway): ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Name is required.")
		return
	}

	fmt.Print("Health endpoint URL (e.g., https://example.com/health): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Println("Invalid URL.")
		return
	}

	fmt.Print("Expected response body (must match exactly): ")
	expected, _ := reader.ReadString('\n')
	expected = strings.TrimSpace(expected)

	body, _ := json.Marshal(map[string]string{
		"name":              name,
		"url":               raw,
		"expected_response": expected,
	})
	resp, err := http.Post(api+"/api/services", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Added! Check GET /api/health/status.")
	} else {
		fmt.Println("API returned status:", resp.Status)
	}
}
