package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8000"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout, streaming endpoint below
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("Starting Journaling API smoke test\n")

	// 1. Health
	color.Yellow("\n1. Health check")
	resp, body, err := sendRequest("GET", "/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 2. Send a chat turn
	color.Yellow("\n2. Send chat message")
	sessionID := "smoke-test-session"
	chatReq := map[string]interface{}{
		"message":    "I had a long day at work but finished the big project.",
		"session_id": sessionID,
	}
	resp, body, err = sendRequest("POST", "/api/chat", chatReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var chatResp map[string]interface{}
	json.Unmarshal(body, &chatResp)
	prettyPrint(chatResp)

	// 3. Stream a follow-up turn
	color.Yellow("\n3. Stream chat message")
	streamReq := map[string]interface{}{
		"message":    "What did I say I finished today?",
		"session_id": sessionID,
	}
	jsonBody, _ := json.Marshal(streamReq)
	req, _ := http.NewRequest("POST", baseURL+"/api/chat/stream", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	streamResp, err := http.DefaultClient.Do(req)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	scanner := bufio.NewScanner(streamResp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			fmt.Println(line)
		}
	}
	streamResp.Body.Close()

	// 4. List journals
	color.Yellow("\n4. List journals")
	resp, body, err = sendRequest("GET", "/api/journals", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)
	prettyPrint(listResp)

	color.Cyan("\nSmoke test complete")
}
